// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package installer defines the package-manager collaborator interface
// (spec.md §6) that Plugin delegates installation to, plus one concrete
// implementation. Concrete installation of tap/target binaries is
// deliberately out of the core's hard logic (spec.md §1 Non-goals); this
// package exists so the module has something real to run against, adapted
// from setup/setup.go's PATH-probing + os/exec-invoking shape (there: probing
// for git/docker; here: probing for a Singer executable and installing it
// with pip, mirroring original_source/elx/singer.py's pipx-based install()).
package installer

import (
	"context"
	"os/exec"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	elxerrors "github.com/harness/elx/internal/errors"
)

// Installer is the package-manager collaborator interface spec.md §6
// describes: install a plugin by its install spec, check whether an
// executable is already on PATH, and derive an executable name from a spec
// when the caller didn't provide one explicitly.
type Installer interface {
	Install(ctx context.Context, spec string) error
	IsOnPath(name string) bool
	DeriveName(spec string) string
}

// PathInstaller installs Python-packaged Singer taps/targets with pip,
// exactly as original_source/elx/singer.py's install() reaches for pipx.
type PathInstaller struct {
	// PipPath is the pip executable to invoke; defaults to "pip3".
	PipPath string
	// MaxRetries bounds the exponential-backoff retry loop around the
	// install subprocess; 0 means no retry.
	MaxRetries int
}

// NewPathInstaller returns a PathInstaller with the given retry budget.
func NewPathInstaller(maxRetries int) *PathInstaller {
	return &PathInstaller{PipPath: "pip3", MaxRetries: maxRetries}
}

func (p *PathInstaller) pipPath() string {
	if p.PipPath == "" {
		return "pip3"
	}
	return p.PipPath
}

// IsOnPath reports whether name resolves to an executable on PATH.
func (p *PathInstaller) IsOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// DeriveName guesses the executable name from an install spec such as a pip
// requirement string or a VCS URL ("git+https://github.com/org/tap-foo.git"
// derives "tap-foo").
func (p *PathInstaller) DeriveName(spec string) string {
	s := spec
	if idx := strings.Index(s, "#"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSuffix(s, ".git")
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	for _, sep := range []string{"==", ">=", "<=", "@"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			s = s[:idx]
		}
	}
	return s
}

// Install runs "pip install <spec>", retrying with exponential backoff up to
// MaxRetries times. On final failure it returns an *errors.InstallError
// carrying the subprocess's stderr.
func (p *PathInstaller) Install(ctx context.Context, spec string) error {
	var lastErr error
	var lastStderr string

	operation := func() error {
		cmd := exec.CommandContext(ctx, p.pipPath(), "install", spec) //nolint:gosec
		var stderr strings.Builder
		cmd.Stderr = &stderr

		logrus.WithField("spec", spec).Debugln("installing plugin")
		err := cmd.Run()
		lastErr = err
		lastStderr = stderr.String()
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxInt(p.MaxRetries, 0)))
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return &elxerrors.InstallError{Executable: spec, Stderr: lastStderr, Err: errors.Wrap(lastErr, "pip install failed")}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
