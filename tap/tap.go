// Package tap implements the source-side extractor half of the pipeline
// (spec.md §4.3): catalog discovery and caching, schema-override injection,
// and scoped process spawning with config/catalog/state temp files.
//
// Grounded on original_source/elx/tap.py's discover/catalog/process shape,
// adapted from Python context managers to an explicit Process handle with a
// Close method, and on the teacher's engine/exec.go for the piped-stdio
// process-spawn idiom.
package tap

import (
	"context"
	"encoding/json"
	"os/exec"
	"sync"

	"github.com/pkg/errors"

	"github.com/harness/elx/catalog"
	"github.com/harness/elx/internal/filesystem"
	"github.com/harness/elx/internal/jsonfile"
	"github.com/harness/elx/plugin"
	"github.com/harness/elx/plugin/installer"
)

// SchemaOverrides maps a stream's tap_stream_id to a map of property name to
// JSON Schema subdocument, merged into the discovered schema at catalog-build
// time (spec.md §4.3, §9 Open Question resolution).
type SchemaOverrides map[string]map[string]interface{}

// Tap extends Plugin with discovery, catalog caching, and process spawning.
type Tap struct {
	*plugin.Plugin

	// Selected, if non-nil, is applied to the discovered catalog once at
	// construction time (the tap's permanent stream selection). Process's
	// streams parameter applies a further, per-run selection on top of it.
	Selected []string
	// SchemaOverrides is merged into each named stream's schema on
	// discovery, with inclusion "available" metadata recorded per property.
	SchemaOverrides SchemaOverrides

	fs filesystem.FileSystem

	mu      sync.Mutex
	catalog *catalog.Catalog
}

// New constructs a Tap around spec.
func New(spec plugin.Spec, inst installer.Installer, selected []string, overrides SchemaOverrides) *Tap {
	return &Tap{
		Plugin:          plugin.New(spec, inst),
		Selected:        selected,
		SchemaOverrides: overrides,
		fs:              filesystem.New(),
	}
}

// Discover runs the tap in discovery mode against a materialized config and
// parses the resulting catalog document (spec.md §4.3).
func (t *Tap) Discover(ctx context.Context, values map[string]string) (catalog.Catalog, error) {
	config, err := t.Config(values)
	if err != nil {
		return catalog.Catalog{}, err
	}

	var result catalog.Catalog
	err = jsonfile.Scope(t.fs, "", "config", config, func(configPath string) error {
		raw, runErr := t.Plugin.Run(ctx, "--config", configPath, "--discover")
		if runErr != nil {
			return runErr
		}
		data, marshalErr := json.Marshal(raw)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "re-marshal discovered catalog")
		}
		return json.Unmarshal(data, &result)
	})
	return result, err
}

// Catalog returns the cached catalog, discovering and normalizing it on
// first use: schema overrides are merged in, then the construction-time
// Selected filter is applied.
func (t *Tap) Catalog(ctx context.Context, values map[string]string) (catalog.Catalog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.catalog != nil {
		return *t.catalog, nil
	}

	discovered, err := t.Discover(ctx, values)
	if err != nil {
		return catalog.Catalog{}, err
	}
	discovered.Normalize()
	t.applySchemaOverrides(&discovered)

	selected := discovered.Select(t.Selected)
	t.catalog = &selected
	return selected, nil
}

// applySchemaOverrides merges per-stream property subschemas into the
// discovered schema and records inclusion: "available" metadata for each
// overridden property.
func (t *Tap) applySchemaOverrides(c *catalog.Catalog) {
	for streamID, props := range t.SchemaOverrides {
		stream := c.FindStream(streamID)
		if stream == nil {
			continue
		}
		if stream.Schema == nil {
			stream.Schema = map[string]interface{}{}
		}
		properties, _ := stream.Schema["properties"].(map[string]interface{})
		if properties == nil {
			properties = map[string]interface{}{}
		}
		for name, subschema := range props {
			properties[name] = subschema
			stream.UpsertMetadata([]string{"properties", name}, map[string]interface{}{
				"inclusion": "available",
			})
		}
		stream.Schema["properties"] = properties
	}
}

// Process is a scoped tap child process: config, catalog, and state temp
// files are removed when Close is called.
type Process struct {
	Cmd     *exec.Cmd
	cleanup []func()
}

// Close tears down the three temp files backing this process. It does not
// kill or wait on the child; callers own that lifecycle via Cmd.
func (p *Process) Close() {
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		p.cleanup[i]()
	}
}

// Process spawns the tap executable against a filtered view of the cached
// catalog (select(streams) applied on top of the construction-time
// selection), with config, catalog, and state materialized to temp files
// (spec.md §4.3, §4.4). Both stdout and stderr are piped; the caller must
// call Start (or use StartAndProcess) and eventually Close.
func (t *Tap) Process(ctx context.Context, values map[string]string, state map[string]interface{}, streams []string) (*Process, error) {
	config, err := t.Config(values)
	if err != nil {
		return nil, err
	}

	cached, err := t.Catalog(ctx, values)
	if err != nil {
		return nil, err
	}
	filtered := cached.Select(streams)

	proc := &Process{}

	configPath, cleanupConfig, err := jsonfile.Create(t.fs, "", "config", config)
	if err != nil {
		return nil, err
	}
	proc.cleanup = append(proc.cleanup, cleanupConfig)

	catalogPath, cleanupCatalog, err := jsonfile.Create(t.fs, "", "catalog", filtered)
	if err != nil {
		proc.Close()
		return nil, err
	}
	proc.cleanup = append(proc.cleanup, cleanupCatalog)

	statePath, cleanupState, err := jsonfile.Create(t.fs, "", "state", state)
	if err != nil {
		proc.Close()
		return nil, err
	}
	proc.cleanup = append(proc.cleanup, cleanupState)

	if installErr := t.Plugin.EnsureInstalled(ctx); installErr != nil {
		proc.Close()
		return nil, installErr
	}

	proc.Cmd = exec.CommandContext(ctx, t.Executable(), //nolint:gosec
		"--config", configPath,
		"--catalog", catalogPath,
		"--state", statePath,
	)
	return proc, nil
}
