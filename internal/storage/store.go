package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when no object exists at the path.
var ErrNotFound = errors.New("storage: object not found")

// ErrInvalidPath is returned for paths that are absolute or escape the store root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Store defines the interface for a file storage backend. Paths are
// slash-separated and relative to the store root.
type Store interface {
	Save(ctx context.Context, path, contentType string, reader io.Reader) (int64, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	// URL returns the public URL under which the object is served.
	URL(path string) string
}

// cleanPath validates p and returns it in canonical form.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned != p || cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func joinURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + p
}
