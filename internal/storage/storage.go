package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/spf13/afero"
)

var _ Store = (*AferoStore)(nil)

// AferoStore keeps objects on an afero filesystem. It backs the local
// uploads directory in production and an in-memory filesystem in tests.
type AferoStore struct {
	fs      afero.Fs
	baseURL string
}

// NewAferoStore creates a new AferoStore. Objects are served under baseURL.
func NewAferoStore(fs afero.Fs, baseURL string) *AferoStore {
	return &AferoStore{fs: fs, baseURL: baseURL}
}

// NewLocalStore stores objects below dir on the OS filesystem.
func NewLocalStore(dir, baseURL string) (*AferoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewAferoStore(afero.NewBasePathFs(osFs, dir), baseURL), nil
}

// Save writes the content of the reader to the given path.
func (s *AferoStore) Save(ctx context.Context, p, contentType string, reader io.Reader) (int64, error) {
	p, err := cleanPath(p)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return 0, err
	}
	return n, nil
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *AferoStore) Delete(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Get opens a file for reading.
func (s *AferoStore) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.OpenFile(p, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *AferoStore) URL(p string) string {
	return joinURL(s.baseURL, p)
}
