// Package azureblob implements state.Backend against Azure Blob Storage, the
// "azure://" scheme of spec.md §6, credentialed via the
// AZURE_STORAGE_CONNECTION_STRING environment variable (matching
// original_source/elx/state.py's transport_parameters for the azure scheme).
package azureblob

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/pkg/errors"

	elxstate "github.com/harness/elx/state"
)

// Client is the subset of *azblob.Client this package calls.
type Client interface {
	DownloadStream(ctx context.Context, container, blobName string, opts *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
	UploadBuffer(ctx context.Context, container, blobName string, buf []byte, opts *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// Backend is a state.Backend rooted at a container and blob-name prefix.
type Backend struct {
	Client    Client
	Container string
	Prefix    string
}

// New builds a Backend for "azure://container/prefix" by authenticating
// with the connection string in AZURE_STORAGE_CONNECTION_STRING.
func New(container, prefix string) (*Backend, error) {
	connStr := os.Getenv("AZURE_STORAGE_CONNECTION_STRING")
	if connStr == "" {
		return nil, errors.New("AZURE_STORAGE_CONNECTION_STRING is not set")
	}
	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create azure blob client")
	}
	return &Backend{Client: client, Container: container, Prefix: prefix}, nil
}

func (b *Backend) name(name string) string {
	if b.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(b.Prefix, "/") + "/" + name
}

func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	resp, err := b.Client.DownloadStream(ctx, b.Container, b.name(name), nil)
	if isBlobNotFound(err) {
		return nil, elxstate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.Client.UploadBuffer(ctx, b.Container, b.name(name), data, nil)
	return err
}

// isBlobNotFound reports whether err is the "blob does not exist" condition
// azblob surfaces as a generic *azcore ResponseError; string-matching the
// service error code is azblob's documented way to distinguish it without a
// type assertion on an unexported error type.
func isBlobNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BlobNotFound")
}
