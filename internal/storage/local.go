package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores objects as files under a base directory. It backs
// the default deployment, where uploads are written synchronously to
// local disk and served back from the uploads path.
type LocalClient struct {
	dir string
}

// NewLocalClient constructs a local-disk backend rooted at dir.
func NewLocalClient(dir string) (*LocalClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("uploads directory is required")
	}
	return &LocalClient{dir: dir}, nil
}

// EnsureBucket creates the base directory if it is missing.
func (l *LocalClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes the object to a file under the base directory. Keys are
// flattened to their base name so a crafted key cannot escape the
// directory.
func (l *LocalClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Get opens the stored file.
func (l *LocalClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes the stored file.
func (l *LocalClient) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Bucket returns the base directory.
func (l *LocalClient) Bucket() string {
	return l.dir
}

// Dir returns the base directory, for mounting a static file server.
func (l *LocalClient) Dir() string {
	return l.dir
}

func (l *LocalClient) resolve(key string) (string, error) {
	base := filepath.Base(filepath.Clean(key))
	if base == "." || base == string(filepath.Separator) {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(l.dir, base), nil
}
