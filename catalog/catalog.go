// Package catalog models a Singer catalog: an ordered list of streams, each
// carrying a JSON Schema, replication settings, and a breadcrumb-addressed
// metadata list. It implements the selection algebra of spec.md §4.1.
//
// Grounded on original_source/elx/catalog.py, generalized from the simpler
// select/deselect pair found there to also mirror selection into
// schema.selected and to support set_replication_keys, per spec.md §4.1 and
// §9's "Open Question" resolution.
package catalog

import "strings"

// ReplicationMethod is one of the three Singer replication strategies.
type ReplicationMethod string

const (
	FullTable   ReplicationMethod = "FULL_TABLE"
	Incremental ReplicationMethod = "INCREMENTAL"
	LogBased    ReplicationMethod = "LOG_BASED"
)

// MetadataEntry addresses a node inside a stream (the stream itself, via an
// empty breadcrumb, or one of its properties) and carries an arbitrary
// key/value bag of metadata about that node.
type MetadataEntry struct {
	Breadcrumb []string               `json:"breadcrumb"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Stream is one table-like entity inside a catalog.
type Stream struct {
	TapStreamID        string                 `json:"tap_stream_id"`
	TableName          string                 `json:"table_name,omitempty"`
	ReplicationMethod  ReplicationMethod      `json:"replication_method,omitempty"`
	ReplicationKey     string                 `json:"replication_key,omitempty"`
	KeyProperties      []string               `json:"key_properties,omitempty"`
	Schema             map[string]interface{} `json:"schema"`
	IsView             bool                   `json:"is_view,omitempty"`
	Metadata           []MetadataEntry        `json:"metadata,omitempty"`
}

// Catalog is an ordered sequence of streams.
type Catalog struct {
	Streams []Stream `json:"streams"`
}

// SafeName is the tap_stream_id with hyphens replaced by underscores.
func (s *Stream) SafeName() string {
	return strings.ReplaceAll(s.TapStreamID, "-", "_")
}

// MetadataFor returns the metadata map recorded at breadcrumb, or nil if no
// record exists for it.
func (s *Stream) MetadataFor(breadcrumb []string) map[string]interface{} {
	for i := range s.Metadata {
		if breadcrumbEqual(s.Metadata[i].Breadcrumb, breadcrumb) {
			return s.Metadata[i].Metadata
		}
	}
	return nil
}

// UpsertMetadata merges fields into the metadata record at breadcrumb,
// creating it if absent. New keys in fields override existing ones.
func (s *Stream) UpsertMetadata(breadcrumb []string, fields map[string]interface{}) {
	for i := range s.Metadata {
		if breadcrumbEqual(s.Metadata[i].Breadcrumb, breadcrumb) {
			for k, v := range fields {
				s.Metadata[i].Metadata[k] = v
			}
			return
		}
	}

	merged := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		merged[k] = v
	}
	s.Metadata = append(s.Metadata, MetadataEntry{
		Breadcrumb: append([]string{}, breadcrumb...),
		Metadata:   merged,
	})
}

// Selected reports whether the stream is currently selected: true unless its
// empty-breadcrumb metadata exists and explicitly sets selected to a falsy
// value.
func (s *Stream) Selected() bool {
	md := s.MetadataFor([]string{})
	if md == nil {
		return true
	}
	selected, ok := md["selected"]
	if !ok {
		return true
	}
	truthy, ok := selected.(bool)
	return !ok || truthy
}

func breadcrumbEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Normalize fills in defaults that Singer taps are allowed to omit from a
// discovered catalog document: replication_method defaults to FULL_TABLE
// (spec.md §3).
func (c *Catalog) Normalize() {
	for i := range c.Streams {
		if c.Streams[i].ReplicationMethod == "" {
			c.Streams[i].ReplicationMethod = FullTable
		}
	}
}

// FindStream returns a pointer to the stream with the given tap_stream_id, or
// nil if no such stream exists. The pointer addresses the receiver's own
// backing array, so callers mutating the catalog should clone it first via
// Clone.
func (c *Catalog) FindStream(streamID string) *Stream {
	for i := range c.Streams {
		if c.Streams[i].TapStreamID == streamID {
			return &c.Streams[i]
		}
	}
	return nil
}

// Clone returns a deep copy that shares no mutable substructure with c, so
// selection operators never mutate their receiver (spec.md §4.1, Design Note
// "Deep-copy-on-write catalogs").
func (c *Catalog) Clone() Catalog {
	out := Catalog{Streams: make([]Stream, len(c.Streams))}
	for i, s := range c.Streams {
		out.Streams[i] = cloneStream(s)
	}
	return out
}

func cloneStream(s Stream) Stream {
	clone := s

	clone.KeyProperties = append([]string{}, s.KeyProperties...)
	clone.Schema = cloneJSONMap(s.Schema)

	clone.Metadata = make([]MetadataEntry, len(s.Metadata))
	for i, m := range s.Metadata {
		clone.Metadata[i] = MetadataEntry{
			Breadcrumb: append([]string{}, m.Breadcrumb...),
			Metadata:   cloneJSONMap(m.Metadata),
		}
	}

	return clone
}

func cloneJSONMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneJSONMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneJSONValue(e)
		}
		return out
	default:
		// strings, numbers, bools, nil are immutable value types in Go.
		return v
	}
}
