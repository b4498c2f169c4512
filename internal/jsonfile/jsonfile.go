// Package jsonfile implements the scoped temp-JSON-file primitive described
// in spec.md §4.4: given a JSON-serializable value, write it to a freshly
// created file under the OS temp area, hand the caller the path, and delete
// it unconditionally once the caller is done.
//
// Grounded on the teacher's internal/filesystem abstraction (so tests can
// swap in a fake filesystem) and on original_source/elx/json_temp_file.py's
// contextmanager shape, adapted to Go's defer-based scoping.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/harness/elx/internal/filesystem"
)

// Scope writes v to a uniquely named JSON file under dir (os.TempDir() if
// dir is empty), calls fn with the file's path, and removes the file when fn
// returns — on success, on error, or on panic (the caller is expected to
// propagate panics; Scope only guarantees the unlink happens via defer).
func Scope(fs filesystem.FileSystem, dir, prefix string, v interface{}, fn func(path string) error) error {
	path, err := write(fs, dir, prefix, v)
	if err != nil {
		return err
	}
	defer fs.Remove(path) //nolint:errcheck

	return fn(path)
}

// Create writes v to a uniquely named JSON file under dir and returns its
// path plus a cleanup func that unlinks it. Unlike Scope, the file's
// lifetime is not bound to a single call frame: this is for callers such as
// a spawned child process whose input files must outlive the function that
// created them, up to the caller explicitly invoking cleanup.
func Create(fs filesystem.FileSystem, dir, prefix string, v interface{}) (path string, cleanup func(), err error) {
	path, err = write(fs, dir, prefix, v)
	if err != nil {
		return "", nil, err
	}
	return path, func() { fs.Remove(path) }, nil //nolint:errcheck
}

// write serializes v and creates the temp file, returning its path.
func write(fs filesystem.FileSystem, dir, prefix string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshal json temp file contents")
	}

	if dir == "" {
		dir = os.TempDir()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create temp dir")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generate temp file id")
	}

	name := fmt.Sprintf("%s-%s.json", prefix, id.String())
	path := filepath.Join(dir, name)

	f, err := fs.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", errors.Wrap(err, "write temp file")
	}

	return path, nil
}
