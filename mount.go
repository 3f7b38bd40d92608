package pathkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrMountNotFound is returned when no mount point matches the path
	ErrMountNotFound = errors.New("no mount point found for path")
	// ErrMountExists is returned when trying to mount at an existing path
	ErrMountExists = errors.New("mount point already exists")
	// ErrInvalidMountPath is returned when the mount path is not rooted
	ErrInvalidMountPath = errors.New("invalid mount path")
	// ErrEmptyMountPath is returned when the mount path is empty
	ErrEmptyMountPath = errors.New("mount path cannot be empty")
	// ErrNilDriver is returned when trying to mount a nil driver
	ErrNilDriver = errors.New("driver cannot be nil")
)

// mountParser reads the virtual namespace, which always uses "/".
var mountParser = NewParser(WithPlatform(Posix), KeepTrailingDots())

// MountManager exposes several filesystems under one virtual tree. Paths
// given to it are resolved against the longest matching mount point and
// the remainder is handed to that mount.
type MountManager struct {
	mu     sync.RWMutex
	mounts map[string]FileSystem
	// mount points, longest first
	sortedPaths []Path
}

// NewMountManager creates a new mount manager instance.
func NewMountManager() *MountManager {
	return &MountManager{
		mounts: make(map[string]FileSystem),
	}
}

// Mount attaches a filesystem at the specified virtual path.
//
//	mounts.Mount("/local", localDriver)
//	mounts.Mount("/cloud", gcsDriver)
//	mounts.Mount("/cloud/archive", archiveDriver) // nested mounts supported
func (m *MountManager) Mount(mountPath string, fs FileSystem) error {
	if fs == nil {
		return ErrNilDriver
	}
	mp, err := mountPoint(mountPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mp.String()]; exists {
		return fmt.Errorf("%w: %s", ErrMountExists, mp)
	}
	m.mounts[mp.String()] = fs
	m.updateSortedPaths()
	logEntry().WithField("mount", mp.String()).Debug("mounted filesystem")
	return nil
}

// Unmount removes the filesystem at the specified path.
func (m *MountManager) Unmount(mountPath string) error {
	mp, err := mountPoint(mountPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mp.String()]; !exists {
		return fmt.Errorf("%w: %s", ErrMountNotFound, mp)
	}
	delete(m.mounts, mp.String())
	m.updateSortedPaths()
	return nil
}

// MountPaths returns all mount points, longest first. Each ends in "/".
func (m *MountManager) MountPaths() []Path {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.sortedPaths)
}

// GetMount returns the filesystem mounted at the exact path.
func (m *MountManager) GetMount(mountPath string) (FileSystem, error) {
	mp, err := mountPoint(mountPath)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fs, exists := m.mounts[mp.String()]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMountNotFound, mp)
	}
	return fs, nil
}

// mountPoint turns s into a cleaned, rooted directory path.
func mountPoint(s string) (Path, error) {
	if s == "" {
		return Path{}, ErrEmptyMountPath
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	p, err := mountParser.Path(s)
	if err != nil {
		return Path{}, fmt.Errorf("%w: %w", ErrInvalidMountPath, err)
	}
	if p, err = p.Clean(); err != nil {
		return Path{}, fmt.Errorf("%w: %w", ErrInvalidMountPath, err)
	}
	if !p.IsDir() {
		return p.JoinString("")
	}
	return p, nil
}

// resolve finds the mount serving absPath and the remainder of absPath
// below that mount.
func (m *MountManager) resolve(absPath string) (FileSystem, Path, string, error) {
	target, err := mountPoint(absPath)
	if err != nil {
		return nil, Path{}, "", err
	}
	// mountPoint added a trailing "/" to file paths; keep the caller's form
	// for the remainder.
	file := strings.TrimSuffix(target.String(), "/")
	if strings.HasSuffix(absPath, "/") {
		file = target.String()
	}
	fp, err := mountParser.Path(file)
	if err != nil {
		return nil, Path{}, "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mp := range m.sortedPaths {
		if target.Equal(mp) {
			return m.mounts[mp.String()], mp, "", nil
		}
		rel, err := fp.Subtract(mp)
		if err != nil {
			continue
		}
		return m.mounts[mp.String()], mp, rel.String(), nil
	}
	return nil, Path{}, "", fmt.Errorf("%w: %s", ErrMountNotFound, absPath)
}

// updateSortedPaths must be called with the lock held.
func (m *MountManager) updateSortedPaths() {
	paths := make([]Path, 0, len(m.mounts))
	for s := range m.mounts {
		mp, err := mountParser.Path(s)
		if err != nil {
			continue
		}
		paths = append(paths, mp)
	}
	slices.SortFunc(paths, func(a, b Path) int {
		if d := b.Len() - a.Len(); d != 0 {
			return d
		}
		return strings.Compare(a.String(), b.String())
	})
	m.sortedPaths = paths
}

// ============================================================================
// FileSystem Interface Implementation
// ============================================================================

// Write writes content to the path, routing to the appropriate mount.
func (m *MountManager) Write(ctx context.Context, filePath string, content io.Reader, options ...Option) error {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return err
	}
	return fs.Write(ctx, rel, content, options...)
}

// Read reads content from the path, routing to the appropriate mount.
func (m *MountManager) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return fs.Read(ctx, rel)
}

// ReadAll reads all content from the path and returns it as a byte slice.
func (m *MountManager) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return fs.ReadAll(ctx, rel)
}

// Delete deletes the file at the path, routing to the appropriate mount.
func (m *MountManager) Delete(ctx context.Context, filePath string) error {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return err
	}
	return fs.Delete(ctx, rel)
}

// FileExists checks if a file exists at the path.
func (m *MountManager) FileExists(ctx context.Context, filePath string) (bool, error) {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return false, err
	}
	return fs.FileExists(ctx, rel)
}

// DirExists checks if a directory exists at the path. Directories that
// only hold mount points exist too.
func (m *MountManager) DirExists(ctx context.Context, dirPath string) (bool, error) {
	fs, _, rel, err := m.resolve(dirPath)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			dirs, _ := m.listMountPointDirs(dirPath)
			return len(dirs) > 0, nil
		}
		return false, err
	}
	return fs.DirExists(ctx, rel)
}

// Stat returns information about a file. The reported Path includes the
// mount point.
func (m *MountManager) Stat(ctx context.Context, filePath string) (*FileInfo, error) {
	fs, mp, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, err
	}
	info, err := fs.Stat(ctx, rel)
	if err != nil {
		return nil, err
	}
	if info != nil {
		info.Path = underMount(mp, info.Path)
	}
	return info, nil
}

// ListContents lists files under the given prefix. A prefix above every
// mount lists the mount points as directories.
func (m *MountManager) ListContents(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	fs, mp, rel, err := m.resolve(prefix)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return m.listMountPointDirs(prefix)
		}
		return nil, err
	}

	files, err := fs.ListContents(ctx, rel, recursive)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Path = underMount(mp, files[i].Path)
	}
	return files, nil
}

// CreateDir creates a directory at the path.
func (m *MountManager) CreateDir(ctx context.Context, dirPath string) error {
	fs, _, rel, err := m.resolve(dirPath)
	if err != nil {
		return err
	}
	return fs.CreateDir(ctx, rel)
}

// DeleteDir deletes a directory at the path.
func (m *MountManager) DeleteDir(ctx context.Context, dirPath string) error {
	fs, _, rel, err := m.resolve(dirPath)
	if err != nil {
		return err
	}
	return fs.DeleteDir(ctx, rel)
}

// ============================================================================
// Cross-Mount Operations
// ============================================================================

// Copy copies a file from source to destination. Within one mount a native
// copy is used when available, across mounts the content is streamed.
func (m *MountManager) Copy(ctx context.Context, srcPath, dstPath string) error {
	srcFS, _, srcRel, err := m.resolve(srcPath)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	dstFS, _, dstRel, err := m.resolve(dstPath)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	if srcFS == dstFS {
		if copier, ok := srcFS.(CanCopy); ok {
			return copier.Copy(ctx, srcRel, dstRel)
		}
	}

	reader, err := srcFS.Read(ctx, srcRel)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	defer reader.Close()

	srcInfo, err := srcFS.Stat(ctx, srcRel)
	if err != nil {
		return fmt.Errorf("get source info: %w", err)
	}
	opts := []Option{WithOverwrite(true)}
	if srcInfo.ContentType != "" {
		opts = append(opts, WithContentType(srcInfo.ContentType))
	}
	if err := dstFS.Write(ctx, dstRel, reader, opts...); err != nil {
		return fmt.Errorf("write destination: %w", err)
	}
	return nil
}

// Move moves a file from source to destination (copy + delete across
// mounts).
func (m *MountManager) Move(ctx context.Context, srcPath, dstPath string) error {
	srcFS, _, srcRel, err := m.resolve(srcPath)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	dstFS, _, dstRel, err := m.resolve(dstPath)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	if srcFS == dstFS {
		if mover, ok := srcFS.(CanMove); ok {
			return mover.Move(ctx, srcRel, dstRel)
		}
	}

	if err := m.Copy(ctx, srcPath, dstPath); err != nil {
		return err
	}
	if err := srcFS.Delete(ctx, srcRel); err != nil {
		return fmt.Errorf("delete source after move: %w", err)
	}
	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

func underMount(mp Path, rel string) string {
	return mp.String() + strings.TrimPrefix(rel, "/")
}

// listMountPointDirs returns virtual directories for the mount points below
// prefix.
func (m *MountManager) listMountPointDirs(prefix string) ([]FileInfo, error) {
	dir, err := mountPoint(prefix)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var files []FileInfo
	for _, mp := range m.sortedPaths {
		rest, err := mp.Subtract(dir)
		if err != nil || rest.IsEmpty() {
			continue
		}
		name, _, _ := strings.Cut(rest.String(), "/")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, FileInfo{
			Name:  name,
			Path:  dir.String() + name,
			IsDir: true,
		})
	}
	if len(files) == 0 {
		return nil, &PathError{Op: "list", Path: prefix, Err: ErrMountNotFound}
	}
	slices.SortFunc(files, func(a, b FileInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files, nil
}

// ============================================================================
// CanWatch Implementation
// ============================================================================

// Watch delegates to the mount serving pattern. A pattern that is not
// rooted, or that cannot be resolved to one mount, is watched on every
// mount that supports it.
func (m *MountManager) Watch(ctx context.Context, pattern string) (ChangeToken, error) {
	if strings.HasPrefix(pattern, "/") && !strings.Contains(pattern, "**") {
		if fs, _, rel, err := m.resolve(pattern); err == nil {
			if watcher, ok := fs.(CanWatch); ok {
				return watcher.Watch(ctx, rel)
			}
			return nil, &PathError{Op: "watch", Path: pattern, Err: ErrNotSupported}
		}
	}
	return m.watchAllMounts(ctx, pattern)
}

func (m *MountManager) watchAllMounts(ctx context.Context, pattern string) (ChangeToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []ChangeToken
	for _, fs := range m.mounts {
		watcher, ok := fs.(CanWatch)
		if !ok {
			continue
		}
		token, err := watcher.Watch(ctx, pattern)
		if err != nil {
			logEntry().WithError(err).WithField("pattern", pattern).Debug("mount cannot watch pattern")
			continue
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil, &PathError{Op: "watch", Path: pattern, Err: ErrNotSupported}
	}
	return NewCompositeChangeToken(tokens...), nil
}

var (
	_ FileSystem = (*MountManager)(nil)
	_ CanCopy    = (*MountManager)(nil)
	_ CanMove    = (*MountManager)(nil)
	_ CanWatch   = (*MountManager)(nil)
)
