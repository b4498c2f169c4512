package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elxstate "github.com/harness/elx/state"
)

func TestReadMissingReturnsErrNotFound(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, nil)

	_, err := b.Read(context.Background(), "missing.json")
	assert.ErrorIs(t, err, elxstate.ErrNotFound)
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, nil)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "state.json", []byte(`{"a":1}`)))

	data, err := b.Read(ctx, "state.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestWriteCreatesDirIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "path")
	b := New(dir, nil)

	require.NoError(t, b.Write(context.Background(), "state.json", []byte(`{}`)))

	_, err := os.Stat(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
}
