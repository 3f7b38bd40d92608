package pathkit

import (
	"context"
	"errors"
	"io"
)

// ErrReadOnly is returned when a write reaches a read-only filesystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// ReadOnlyFileSystem wraps a FileSystem and rejects every operation that
// would change it. Reads, listings and watches pass through.
//
//	archive := pathkit.NewReadOnly(gcsDriver)
//	mounts.Mount("/archive", archive)
type ReadOnlyFileSystem struct {
	fs             FileSystem
	allowCreateDir bool
}

// ReadOnlyOption configures a ReadOnlyFileSystem.
type ReadOnlyOption func(*ReadOnlyFileSystem)

// AllowCreateDir lets CreateDir through, for staging directories on an
// otherwise frozen tree.
func AllowCreateDir() ReadOnlyOption {
	return func(r *ReadOnlyFileSystem) {
		r.allowCreateDir = true
	}
}

// NewReadOnly creates a read-only view of fs.
func NewReadOnly(fs FileSystem, opts ...ReadOnlyOption) *ReadOnlyFileSystem {
	r := &ReadOnlyFileSystem{fs: fs}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unwrap returns the wrapped FileSystem.
func (r *ReadOnlyFileSystem) Unwrap() FileSystem {
	return r.fs
}

func (r *ReadOnlyFileSystem) denied(op, path string) error {
	logEntry().WithField("op", op).WithField("path", path).Debug("write rejected by read-only filesystem")
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// ============================================================================
// Read Operations (pass through)
// ============================================================================

func (r *ReadOnlyFileSystem) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.fs.Read(ctx, path)
}

func (r *ReadOnlyFileSystem) ReadAll(ctx context.Context, path string) ([]byte, error) {
	return r.fs.ReadAll(ctx, path)
}

func (r *ReadOnlyFileSystem) FileExists(ctx context.Context, path string) (bool, error) {
	return r.fs.FileExists(ctx, path)
}

func (r *ReadOnlyFileSystem) DirExists(ctx context.Context, path string) (bool, error) {
	return r.fs.DirExists(ctx, path)
}

func (r *ReadOnlyFileSystem) Stat(ctx context.Context, path string) (*FileInfo, error) {
	return r.fs.Stat(ctx, path)
}

func (r *ReadOnlyFileSystem) ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error) {
	return r.fs.ListContents(ctx, path, recursive)
}

// Watch passes through when the wrapped filesystem can watch.
func (r *ReadOnlyFileSystem) Watch(ctx context.Context, pattern string) (ChangeToken, error) {
	watcher, ok := r.fs.(CanWatch)
	if !ok {
		return nil, &PathError{Op: "watch", Path: pattern, Err: ErrNotSupported}
	}
	return watcher.Watch(ctx, pattern)
}

// ============================================================================
// Write Operations (rejected)
// ============================================================================

func (r *ReadOnlyFileSystem) Write(ctx context.Context, path string, content io.Reader, options ...Option) error {
	return r.denied("write", path)
}

func (r *ReadOnlyFileSystem) Delete(ctx context.Context, path string) error {
	return r.denied("delete", path)
}

func (r *ReadOnlyFileSystem) CreateDir(ctx context.Context, path string) error {
	if r.allowCreateDir {
		return r.fs.CreateDir(ctx, path)
	}
	return r.denied("createdir", path)
}

func (r *ReadOnlyFileSystem) DeleteDir(ctx context.Context, path string) error {
	return r.denied("deletedir", path)
}

// IsReadOnly reports whether err was caused by a write to a read-only
// filesystem.
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

var (
	_ FileSystem = (*ReadOnlyFileSystem)(nil)
	_ CanWatch   = (*ReadOnlyFileSystem)(nil)
)
