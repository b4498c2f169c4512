// Package state implements the named-file state load/save with
// merge-on-write described in spec.md §4.8, against a pluggable
// scheme-routed blob backend (§6).
//
// Grounded on original_source/elx/state.py's StateManager (load/save by
// name under a base_path), generalized from smart_open's single read/write
// call to an explicit Backend interface per blob scheme, each with its own
// real Go SDK rather than a single library covering every scheme.
package state

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	elxerrors "github.com/harness/elx/internal/errors"
)

// ErrNotFound is returned by a Backend's Read when the named blob does not
// exist.
var ErrNotFound = errors.New("state: blob not found")

// Backend reads and writes small JSON blobs by name under some root the
// implementation was constructed with (a bucket, a container, a directory).
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Store is the StateStore of spec.md §4.8.
type Store struct {
	Backend Backend
}

// New wraps backend in a Store.
func New(backend Backend) *Store {
	return &Store{Backend: backend}
}

// Load returns the parsed contents of name, or an empty map if it does not
// exist.
func (s *Store) Load(ctx context.Context, name string) (map[string]interface{}, error) {
	data, err := s.Backend.Read(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, &elxerrors.IoError{Op: "state load " + name, Err: err}
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &elxerrors.IoError{Op: "state unmarshal " + name, Err: err}
	}
	return out, nil
}

// Save shallow-merges patch over whatever is currently stored at name (new
// top-level keys win) and writes the result back (spec.md §4.8, §3
// RunnerState invariant).
func (s *Store) Save(ctx context.Context, name string, patch map[string]interface{}) error {
	existing, err := s.Load(ctx, name)
	if err != nil {
		return err
	}

	merged := make(map[string]interface{}, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return &elxerrors.IoError{Op: "state marshal " + name, Err: err}
	}
	if err := s.Backend.Write(ctx, name, data); err != nil {
		return &elxerrors.IoError{Op: "state save " + name, Err: err}
	}
	return nil
}
