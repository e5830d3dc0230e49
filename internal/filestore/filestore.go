// Package filestore reads document artifacts from local disk or S3-compatible
// object storage.
package filestore

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
)

// ErrNotFound indicates the artifact key does not exist.
var ErrNotFound = errors.New("artifact not found")

// Object is an opened artifact. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store opens artifacts by key.
type Store interface {
	Open(ctx context.Context, key string) (*Object, error)
	// URL returns a direct, time-limited URL for key, or "" when the backend
	// cannot hand out URLs and content must be streamed through the API.
	URL(ctx context.Context, key string) (string, error)
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
