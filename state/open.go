package state

import (
	"context"
	"strings"

	"github.com/harness/elx/internal/filesystem"
	"github.com/harness/elx/state/backend/azureblob"
	"github.com/harness/elx/state/backend/gcs"
	"github.com/harness/elx/state/backend/localfs"
	"github.com/harness/elx/state/backend/s3"
)

// OpenBackend dispatches on the scheme of basePath to one of the four
// backends spec.md §6 names: "s3://bucket/prefix", "azure://container/prefix",
// "gs://bucket/prefix", or — for anything else — a local directory.
func OpenBackend(ctx context.Context, basePath string) (Backend, error) {
	switch {
	case strings.HasPrefix(basePath, "s3://"):
		bucket, prefix := splitRoot(strings.TrimPrefix(basePath, "s3://"))
		return s3.New(ctx, bucket, prefix)
	case strings.HasPrefix(basePath, "azure://"):
		container, prefix := splitRoot(strings.TrimPrefix(basePath, "azure://"))
		return azureblob.New(container, prefix)
	case strings.HasPrefix(basePath, "gs://"):
		bucket, prefix := splitRoot(strings.TrimPrefix(basePath, "gs://"))
		return gcs.New(ctx, bucket, prefix)
	default:
		return localfs.New(basePath, filesystem.New()), nil
	}
}

// splitRoot splits "root/rest/of/path" into ("root", "rest/of/path").
func splitRoot(s string) (root, rest string) {
	idx := strings.Index(s, "/")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}
