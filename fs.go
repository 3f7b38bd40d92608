package pathkit

import (
	"context"
	"io"
	"time"
)

// FileInfo represents file/directory metadata reported by a collaborator.
// Path is relative to the collaborator's root and uses "/".
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	ContentType string
	// Hash is an xxhash64 of the content when the backend computes one.
	Hash uint64
}

// ============================================================================
// Collaborator Interfaces
// ============================================================================
// Collaborators perform all I/O. They receive native path strings produced by
// Path.Native and never see Path values.

// FileReader provides read-only filesystem access.
type FileReader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	FileExists(ctx context.Context, path string) (bool, error)
	DirExists(ctx context.Context, path string) (bool, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// FileWriter provides write filesystem operations.
type FileWriter interface {
	// Write writes content from reader to path, creating parent
	// directories.
	Write(ctx context.Context, path string, r io.Reader, opts ...Option) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error

	// CreateDir creates a directory (and parents if needed).
	CreateDir(ctx context.Context, path string) error

	// DeleteDir removes a directory and all contents.
	DeleteDir(ctx context.Context, path string) error
}

// FileSystem provides full read-write filesystem access.
type FileSystem interface {
	FileReader
	FileWriter
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// CanCopy indicates the filesystem supports native copy operations.
type CanCopy interface {
	Copy(ctx context.Context, src, dst string) error
}

// CanMove indicates the filesystem supports native move/rename operations.
type CanMove interface {
	Move(ctx context.Context, src, dst string) error
}

// ChangeToken signals that something matching a watch pattern changed.
// Once HasChanged returns true it stays true.
type ChangeToken interface {
	HasChanged() bool

	// ActiveChangeCallbacks reports whether callbacks fire on their own.
	// When false, poll HasChanged instead.
	ActiveChangeCallbacks() bool

	RegisterChangeCallback(callback func()) (unregister func())
}

// CanWatch indicates the filesystem supports change notifications for glob
// patterns such as "**/*.json".
type CanWatch interface {
	Watch(ctx context.Context, pattern string) (ChangeToken, error)
}
