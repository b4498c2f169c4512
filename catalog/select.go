package catalog

import "strings"

// Select returns a clone of c with the empty-breadcrumb metadata "selected"
// field set on every stream to whether that stream's tap_stream_id or
// safe_name appears in streams, mirroring the same boolean into
// schema.selected. A nil streams leaves the clone's selection metadata
// untouched (spec.md §4.1, §8 "C.select(None) == C").
func (c *Catalog) Select(streams []string) Catalog {
	clone := c.Clone()
	if streams == nil {
		return clone
	}

	wanted := make(map[string]bool, len(streams))
	for _, s := range streams {
		wanted[s] = true
	}

	for i := range clone.Streams {
		stream := &clone.Streams[i]
		isSelected := wanted[stream.TapStreamID] || wanted[stream.SafeName()]

		stream.UpsertMetadata([]string{}, map[string]interface{}{
			"selected": isSelected,
		})
		setSchemaSelected(stream, isSelected)
	}

	return clone
}

// Deselect returns a clone of c with each pattern applied. A pattern is
// "stream_id" (deselect the whole stream) or "stream_id.prop[.subprop...]"
// (deselect just that property's breadcrumb). Patterns naming an unknown
// stream are skipped silently. A nil patterns list leaves the clone
// unchanged (spec.md §4.1, §8).
func (c *Catalog) Deselect(patterns []string) Catalog {
	clone := c.Clone()
	if patterns == nil {
		return clone
	}

	for _, pattern := range patterns {
		nodes := strings.Split(pattern, ".")
		stream := clone.FindStream(nodes[0])
		if stream == nil {
			continue
		}

		if len(nodes) == 1 {
			stream.UpsertMetadata([]string{}, map[string]interface{}{
				"selected": false,
			})
			setSchemaSelected(stream, false)
			continue
		}

		breadcrumb := append([]string{"properties"}, nodes[1:]...)
		stream.UpsertMetadata(breadcrumb, map[string]interface{}{
			"selected": false,
		})
	}

	return clone
}

// SetReplicationKeys returns a clone of c where, for each stream_id present
// in mapping, replication_method becomes INCREMENTAL, replication_key
// becomes the mapped key, the stream's valid-replication-keys metadata is
// set to [key], and the key property's metadata gets inclusion: "automatic"
// (spec.md §4.1).
func (c *Catalog) SetReplicationKeys(mapping map[string]string) Catalog {
	clone := c.Clone()

	for streamID, key := range mapping {
		stream := clone.FindStream(streamID)
		if stream == nil {
			continue
		}

		stream.ReplicationMethod = Incremental
		stream.ReplicationKey = key

		stream.UpsertMetadata([]string{}, map[string]interface{}{
			"valid-replication-keys": []string{key},
		})
		stream.UpsertMetadata([]string{"properties", key}, map[string]interface{}{
			"inclusion": "automatic",
		})
	}

	return clone
}

// setSchemaSelected mirrors the selection boolean into the stream's raw JSON
// Schema document, since some Singer consumers inspect schema.selected
// rather than the breadcrumb metadata (spec.md §4.1 rationale).
func setSchemaSelected(stream *Stream, selected bool) {
	if stream.Schema == nil {
		stream.Schema = map[string]interface{}{}
	}
	stream.Schema["selected"] = selected
}
