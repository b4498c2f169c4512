package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend is a trivial in-memory Backend fake used across state tests.
type memBackend struct {
	blobs map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{blobs: map[string][]byte{}}
}

func (m *memBackend) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *memBackend) Write(_ context.Context, name string, data []byte) error {
	m.blobs[name] = data
	return nil
}

func TestLoadMissingReturnsEmptyMap(t *testing.T) {
	store := New(newMemBackend())
	got, err := store.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveMergesNewKeys(t *testing.T) {
	store := New(newMemBackend())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "x", map[string]interface{}{"a": float64(1)}))
	require.NoError(t, store.Save(ctx, "x", map[string]interface{}{"b": float64(2)}))

	got, err := store.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": float64(2)}, got)
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	store := New(newMemBackend())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "x", map[string]interface{}{"a": float64(1)}))
	require.NoError(t, store.Save(ctx, "x", map[string]interface{}{"a": float64(2)}))

	got, err := store.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(2)}, got)
}

func TestStateMergeAcrossRuns(t *testing.T) {
	store := New(newMemBackend())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tap-target.json", map[string]interface{}{"a": float64(1)}))
	require.NoError(t, store.Save(ctx, "tap-target.json", map[string]interface{}{"b": float64(2)}))

	got, err := store.Load(ctx, "tap-target.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": float64(2)}, got)
}
