// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package filesystem abstracts the small slice of file I/O this domain
// actually performs — creating and removing scoped temp files
// (internal/jsonfile), and reading/writing the local state backend
// (state/backend/localfs) — so tests can substitute a fake instead of
// touching disk.
package filesystem

import (
	"io"
	"os"
)

type FileSystem interface {
	Remove(name string) error
	ReadFile(filename string, op func(io.Reader) error) error
	MkdirAll(path string, perm os.FileMode) error
	Create(name string) (*os.File, error)
}

// osFS implements FileSystem using the local disk.
type osFS struct{}

func (*osFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (*osFS) Create(name string) (*os.File, error)         { return os.Create(name) }
func (*osFS) Remove(name string) error                     { return os.Remove(name) }

func (*osFS) ReadFile(filename string, op func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return op(f)
}

func New() FileSystem {
	return &osFS{}
}
