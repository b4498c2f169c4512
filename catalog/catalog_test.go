package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harness/elx/catalog"
)

func twoStreamCatalog() catalog.Catalog {
	return catalog.Catalog{
		Streams: []catalog.Stream{
			{
				TapStreamID:   "animals",
				KeyProperties: []string{"id"},
				Schema: map[string]interface{}{
					"properties": map[string]interface{}{
						"id":   map[string]interface{}{"type": "integer"},
						"name": map[string]interface{}{"type": "string"},
					},
				},
			},
			{
				TapStreamID:   "animals-two",
				KeyProperties: []string{"id"},
				Schema:        map[string]interface{}{},
			},
		},
	}
}

func TestSelectNilIsNoop(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Select(nil)
	assert.Equal(t, c, got)
}

func TestSelectMarksSelectedAndUnselected(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Select([]string{"animals"})

	animals := got.FindStream("animals")
	require.NotNil(t, animals)
	assert.True(t, animals.Selected())
	assert.Equal(t, true, animals.Schema["selected"])

	two := got.FindStream("animals-two")
	require.NotNil(t, two)
	assert.False(t, two.Selected())
	assert.Equal(t, false, two.Schema["selected"])
}

func TestSelectMatchesBySafeName(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Select([]string{"animals_two"})

	two := got.FindStream("animals-two")
	require.NotNil(t, two)
	assert.True(t, two.Selected())
}

func TestDeselectNilIsNoop(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Deselect(nil)
	assert.Equal(t, c, got)
}

func TestDeselectUnknownStreamIsNoop(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Deselect([]string{"does-not-exist"})
	assert.Equal(t, c, got)
}

func TestDeselectWholeStream(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Deselect([]string{"animals-two"})

	two := got.FindStream("animals-two")
	require.NotNil(t, two)
	assert.False(t, two.Selected())
	assert.Equal(t, false, two.Schema["selected"])
}

func TestDeselectPropertyLeavesStreamSelectionUntouched(t *testing.T) {
	c := twoStreamCatalog()
	got := c.Deselect([]string{"animals.id"})

	animals := got.FindStream("animals")
	require.NotNil(t, animals)

	// stream-level selection metadata is untouched: no empty-breadcrumb
	// record exists, so Selected() still reports true.
	assert.Nil(t, animals.MetadataFor([]string{}))
	assert.True(t, animals.Selected())
	assert.NotContains(t, animals.Schema, "selected")

	propMD := animals.MetadataFor([]string{"properties", "id"})
	require.NotNil(t, propMD)
	assert.Equal(t, false, propMD["selected"])
}

func TestSetReplicationKeys(t *testing.T) {
	c := twoStreamCatalog()
	got := c.SetReplicationKeys(map[string]string{"animals": "updated_at"})

	animals := got.FindStream("animals")
	require.NotNil(t, animals)
	assert.Equal(t, catalog.Incremental, animals.ReplicationMethod)
	assert.Equal(t, "updated_at", animals.ReplicationKey)

	streamMD := animals.MetadataFor([]string{})
	require.NotNil(t, streamMD)
	assert.Equal(t, []string{"updated_at"}, streamMD["valid-replication-keys"])

	propMD := animals.MetadataFor([]string{"properties", "updated_at"})
	require.NotNil(t, propMD)
	assert.Equal(t, "automatic", propMD["inclusion"])
}

func TestCloneDoesNotShareBackingStorage(t *testing.T) {
	c := twoStreamCatalog()
	clone := c.Clone()

	clone.Streams[0].KeyProperties[0] = "mutated"
	clone.Streams[0].Schema["properties"] = "mutated"

	assert.Equal(t, "id", c.Streams[0].KeyProperties[0])
	assert.NotEqual(t, "mutated", c.Streams[0].Schema["properties"])
}

func TestUpsertMetadataMergesExistingRecord(t *testing.T) {
	s := &catalog.Stream{TapStreamID: "x"}
	s.UpsertMetadata([]string{}, map[string]interface{}{"a": 1})
	s.UpsertMetadata([]string{}, map[string]interface{}{"b": 2})

	md := s.MetadataFor([]string{})
	require.NotNil(t, md)
	assert.Equal(t, 1, md["a"])
	assert.Equal(t, 2, md["b"])
	assert.Len(t, s.Metadata, 1)
}
