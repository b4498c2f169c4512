// Package interpolate implements the "{NAME}" template substitution used by
// plugin configs (spec.md §4.2). It recurses into nested maps and slices;
// non-string leaves pass through unchanged.
package interpolate

import (
	"regexp"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Value replaces every "{NAME}" occurrence in v with values[NAME], recursing
// into maps and slices. Values is left untouched if nil (no interpolation).
func Value(v interface{}, values map[string]string) interface{} {
	if values == nil {
		return v
	}

	switch t := v.(type) {
	case string:
		return substitute(t, values)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = Value(val, values)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = Value(val, values)
		}
		return out
	default:
		return v
	}
}

// Config interpolates every value of a string-keyed config map.
func Config(config map[string]interface{}, values map[string]string) map[string]interface{} {
	if values == nil || config == nil {
		return config
	}
	out := make(map[string]interface{}, len(config))
	for k, v := range config {
		out[k] = Value(v, values)
	}
	return out
}

func substitute(s string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		if val, ok := values[name]; ok {
			return val
		}
		return match
	})
}

// MissingPlaceholders returns the names referenced by "{NAME}" in v that are
// not present in values, recursing into maps/slices. Useful for validating a
// config before a run starts.
func MissingPlaceholders(v interface{}, values map[string]string) []string {
	var missing []string
	var walk func(interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case string:
			for _, m := range placeholder.FindAllStringSubmatch(t, -1) {
				if _, ok := values[m[1]]; !ok {
					missing = append(missing, m[1])
				}
			}
		case map[string]interface{}:
			for _, val := range t {
				walk(val)
			}
		case []interface{}:
			for _, val := range t {
				walk(val)
			}
		}
	}
	walk(v)
	return missing
}
