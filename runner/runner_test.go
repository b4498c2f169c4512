package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elxerrors "github.com/harness/elx/internal/errors"
	"github.com/harness/elx/internal/filesystem"
	"github.com/harness/elx/plugin"
	"github.com/harness/elx/plugin/installer"
	"github.com/harness/elx/state"
	"github.com/harness/elx/state/backend/localfs"
	"github.com/harness/elx/tap"
	"github.com/harness/elx/target"
)

// writeScript writes an executable shell script to dir/name and returns its
// absolute path. Using real shell subprocesses as fake taps/targets mirrors
// the teacher's own subprocess test style (engine/exec/exec_test.go).
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func newRunner(t *testing.T, tapPath, targetPath, stateDir string) *Runner {
	t.Helper()
	inst := installer.NewPathInstaller(0)

	tp := tap.New(plugin.Spec{Executable: tapPath, Config: plugin.Literal(map[string]interface{}{})}, inst, nil, nil)
	tg := target.New(plugin.Spec{Executable: targetPath, Config: plugin.Literal(map[string]interface{}{})}, inst)
	store := state.New(localfs.New(stateDir, filesystem.New()))

	return New(tp, tg, store, nil, nil)
}

const discoverCatalog = `{"streams":[{"tap_stream_id":"animals","key_properties":["id"],"schema":{"properties":{"id":{"type":"integer"}}}}]}`

func TestRunSmokeEndToEnd(t *testing.T) {
	dir := t.TempDir()
	tapPath := writeScript(t, dir, "tap.sh", `
case "$*" in
  *--discover*) echo '`+discoverCatalog+`'; exit 0 ;;
esac
echo '{"type":"RECORD","stream":"animals","record":{"id":1}}'
echo '{"type":"RECORD","stream":"animals","record":{"id":2}}'
exit 0
`)
	targetPath := writeScript(t, dir, "target.sh", `
cat >/dev/null
echo '{"bookmarks":{"animals":"2024-01-01"}}'
exit 0
`)

	r := newRunner(t, tapPath, targetPath, filepath.Join(dir, "state"))
	err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"animals": 2}, r.RecordCounts())

	loaded, err := r.Store.Load(context.Background(), r.StateFileName())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"bookmarks": map[string]interface{}{"animals": "2024-01-01"}}, loaded)
}

func TestRunTapFails(t *testing.T) {
	dir := t.TempDir()
	tapPath := writeScript(t, dir, "tap.sh", `
case "$*" in
  *--discover*) echo '`+discoverCatalog+`'; exit 0 ;;
esac
echo '{"type":"RECORD","stream":"animals","record":{"id":1}}'
echo 'not json' >&2
exit 2
`)
	targetPath := writeScript(t, dir, "target.sh", `
cat >/dev/null
exit 0
`)

	r := newRunner(t, tapPath, targetPath, filepath.Join(dir, "state"))
	err := r.Run(context.Background(), nil)

	require.Error(t, err)
	var pipelineErr *elxerrors.PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.True(t, pipelineErr.TapFailed)
	assert.False(t, pipelineErr.TargetFailed)
}

func TestRunTargetFailsFirst(t *testing.T) {
	dir := t.TempDir()
	tapPath := writeScript(t, dir, "tap.sh", `
case "$*" in
  *--discover*) echo '`+discoverCatalog+`'; exit 0 ;;
esac
sleep 5
exit 0
`)
	targetPath := writeScript(t, dir, "target.sh", `
exit 7
`)

	r := newRunner(t, tapPath, targetPath, filepath.Join(dir, "state"))
	err := r.Run(context.Background(), nil)

	require.Error(t, err)
	var pipelineErr *elxerrors.PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.False(t, pipelineErr.TapFailed)
	assert.True(t, pipelineErr.TargetFailed)
}

func TestStateFileNameIsExecutablePair(t *testing.T) {
	dir := t.TempDir()
	tapPath := writeScript(t, dir, "tap-foo.sh", "exit 0\n")
	targetPath := writeScript(t, dir, "target-bar.sh", "exit 0\n")

	r := newRunner(t, tapPath, targetPath, filepath.Join(dir, "state"))
	assert.Equal(t, tapPath+"-"+targetPath+".json", r.StateFileName())
}
