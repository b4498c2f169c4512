// Package plugin implements the base tap/target abstraction of spec.md §4.2:
// executable discovery, config materialization with interpolation, content-hash
// identity, and install-on-first-use.
//
// Grounded on original_source/elx/singer.py's Singer base class (hash_key,
// is_installed, install, run) and on the teacher's engine/exec process-spawn
// idiom for Run.
package plugin

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // content identity hash, not a security boundary; spec.md §8 requires a 32-hex digest
	"encoding/hex"
	"encoding/json"
	"os/exec"
	"sync"

	"github.com/pkg/errors"

	elxerrors "github.com/harness/elx/internal/errors"
	"github.com/harness/elx/plugin/installer"
	"github.com/harness/elx/plugin/interpolate"
)

// Plugin is the shared base of Tap and Target: an external Singer program
// identified by a Spec, with cached executable resolution and install
// gating.
//
// The runner back-reference spec.md §9 describes for interpolation is
// inverted here: rather than Plugin holding a weak pointer to its owning
// Runner, callers pass the interpolation values map into Config at read
// time. This avoids the ownership-cycle risk the design note warns about
// entirely, at the cost of one extra parameter.
type Plugin struct {
	Spec      Spec
	Installer installer.Installer

	mu         sync.Mutex
	executable string
	hashKey    string
	hashKeySet bool
}

// New constructs a Plugin around spec, using inst as the package-manager
// collaborator for install-on-first-use.
func New(spec Spec, inst installer.Installer) *Plugin {
	return &Plugin{Spec: spec, Installer: inst}
}

// Config resolves the stored config (invoking the thunk if deferred) and
// applies {NAME} interpolation using values. A nil values map performs no
// interpolation (spec.md §4.2).
func (p *Plugin) Config(values map[string]string) (map[string]interface{}, error) {
	raw, err := p.Spec.Config.Resolve()
	if err != nil {
		return nil, errors.Wrap(err, "resolve config")
	}
	return interpolate.Config(raw, values), nil
}

// Executable returns the explicitly provided executable name, or derives one
// from the install spec via the package-manager collaborator, caching the
// result.
func (p *Plugin) Executable() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Spec.Executable != "" {
		return p.Spec.Executable
	}
	if p.executable != "" {
		return p.executable
	}
	p.executable = p.Installer.DeriveName(p.Spec.InstallSpec)
	return p.executable
}

// HashKey is a 32-hex-character MD5 digest over the canonical JSON
// serialization of {executable, spec, config}, used as a deterministic code
// version by external orchestrators (spec.md §3, §8).
func (p *Plugin) HashKey() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hashKeySet {
		return p.hashKey, nil
	}

	config, err := p.Spec.Config.Resolve()
	if err != nil {
		return "", errors.Wrap(err, "resolve config for hash")
	}

	canonical, err := canonicalJSON(map[string]interface{}{
		"executable": p.Executable(),
		"spec":       p.Spec.InstallSpec,
		"config":     config,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal hash input")
	}

	sum := md5.Sum(canonical) //nolint:gosec
	p.hashKey = hex.EncodeToString(sum[:])
	p.hashKeySet = true
	return p.hashKey, nil
}

// IsInstalled queries the host PATH for the resolved executable.
func (p *Plugin) IsInstalled() bool {
	return p.Installer.IsOnPath(p.Executable())
}

// EnsureInstalled installs the plugin iff it is not already on PATH
// (install-on-first-use, spec.md §4.2).
func (p *Plugin) EnsureInstalled(ctx context.Context) error {
	if p.IsInstalled() {
		return nil
	}
	return p.Installer.Install(ctx, p.Spec.InstallSpec)
}

// Run spawns the executable synchronously with args, collecting stdout and
// stderr. On nonzero exit it returns a *errors.DecodeError carrying stderr;
// on zero exit it parses stdout as a single JSON document, returning the
// same error type if that parse fails.
func (p *Plugin) Run(ctx context.Context, args ...string) (map[string]interface{}, error) {
	if err := p.EnsureInstalled(ctx); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.Executable(), args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &elxerrors.DecodeError{Executable: p.Executable(), Stderr: stderr.String(), Err: err}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, &elxerrors.DecodeError{Executable: p.Executable(), Stderr: stderr.String(), Err: err}
	}
	return result, nil
}

// canonicalJSON marshals v with sorted map keys so the digest is stable
// regardless of map iteration order.
func canonicalJSON(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
