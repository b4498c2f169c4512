// Package localfs implements state.Backend against the local filesystem,
// the fallback scheme of spec.md §6 ("anything else — local filesystem").
//
// Grounded on the teacher's internal/filesystem.FileSystem abstraction so
// tests can substitute an in-memory filesystem.
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/harness/elx/internal/filesystem"
	"github.com/harness/elx/state"
)

// Backend is a state.Backend rooted at Dir on the local filesystem.
type Backend struct {
	Dir string
	fs  filesystem.FileSystem
}

// New returns a Backend rooted at dir, using fs for I/O. A nil fs uses the
// real OS filesystem.
func New(dir string, fs filesystem.FileSystem) *Backend {
	if fs == nil {
		fs = filesystem.New()
	}
	return &Backend{Dir: dir, fs: fs}
}

func (b *Backend) Read(_ context.Context, name string) ([]byte, error) {
	path := filepath.Join(b.Dir, name)
	var data []byte
	err := b.fs.ReadFile(path, func(r io.Reader) error {
		buf, readErr := io.ReadAll(r)
		data = buf
		return readErr
	})
	if os.IsNotExist(err) {
		return nil, state.ErrNotFound
	}
	return data, err
}

func (b *Backend) Write(_ context.Context, name string, data []byte) error {
	path := filepath.Join(b.Dir, name)
	if err := b.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := b.fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}
