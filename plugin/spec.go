package plugin

// ConfigValue is the tagged variant described in spec.md §9 "Dynamic
// config": a plugin's config is either a literal JSON-compatible map or a
// zero-argument producer of one, evaluated on every read so time-sensitive
// values (interpolation aside) can change between invocations.
type ConfigValue struct {
	literal  map[string]interface{}
	deferred func() (map[string]interface{}, error)
}

// Literal wraps a fixed config map.
func Literal(config map[string]interface{}) ConfigValue {
	return ConfigValue{literal: config}
}

// Deferred wraps a config-producing thunk, evaluated on every Resolve call.
func Deferred(fn func() (map[string]interface{}, error)) ConfigValue {
	return ConfigValue{deferred: fn}
}

// Resolve evaluates the config value, invoking the thunk if this is a
// Deferred variant.
func (c ConfigValue) Resolve() (map[string]interface{}, error) {
	if c.deferred != nil {
		return c.deferred()
	}
	return c.literal, nil
}

// Spec identifies an external tap or target program (spec.md §3).
type Spec struct {
	// InstallSpec is the installation locator, opaque to the core (e.g. a
	// pip requirement string or VCS URL).
	InstallSpec string
	// Executable is the on-PATH name; derived from InstallSpec if empty.
	Executable string
	// Config is either a literal config map or a deferred thunk of one.
	Config ConfigValue
}
