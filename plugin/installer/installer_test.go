package installer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elxerrors "github.com/harness/elx/internal/errors"
)

func TestDeriveNameFromPipRequirement(t *testing.T) {
	p := NewPathInstaller(0)
	assert.Equal(t, "tap-foo", p.DeriveName("tap-foo==1.2.3"))
}

func TestDeriveNameFromVCSURL(t *testing.T) {
	p := NewPathInstaller(0)
	assert.Equal(t, "tap-foo", p.DeriveName("git+https://github.com/org/tap-foo.git"))
}

func TestDeriveNameStripsEggFragment(t *testing.T) {
	p := NewPathInstaller(0)
	assert.Equal(t, "tap-foo", p.DeriveName("git+https://github.com/org/repo.git#egg=tap-foo"))
}

func TestIsOnPathFindsRealExecutable(t *testing.T) {
	p := NewPathInstaller(0)
	name := "ls"
	if runtime.GOOS == "windows" {
		name = "cmd"
	}
	assert.True(t, p.IsOnPath(name))
}

func TestIsOnPathMissesBogusExecutable(t *testing.T) {
	p := NewPathInstaller(0)
	assert.False(t, p.IsOnPath("definitely-not-a-real-executable-xyz"))
}

// fakePip writes a script standing in for pip3 so Install can be tested
// without a real network install, mirroring the runner package's real-
// subprocess test style.
func fakePip(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fakepip.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestInstallSucceedsOnFirstTry(t *testing.T) {
	p := &PathInstaller{PipPath: fakePip(t, "exit 0\n"), MaxRetries: 0}
	err := p.Install(context.Background(), "tap-foo")
	require.NoError(t, err)
}

func TestInstallReturnsInstallErrorWithStderr(t *testing.T) {
	p := &PathInstaller{PipPath: fakePip(t, "echo 'no such package' >&2\nexit 1\n"), MaxRetries: 0}
	err := p.Install(context.Background(), "tap-foo")
	require.Error(t, err)

	var installErr *elxerrors.InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "tap-foo", installErr.Executable)
	assert.Contains(t, installErr.Stderr, "no such package")
}
