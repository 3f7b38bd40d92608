// Package local provides a pathkit collaborator backed by a directory on
// the local disk.
package local

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/pathkit"
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// Adapter serves pathkit.FileSystem from a root directory. Every path it
// receives is resolved below that root; paths escaping it are rejected
// with pathkit.ErrNotAllowed.
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter, creating root if needed.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}
	return &Adapter{root: absRoot}, nil
}

// Root returns the absolute directory the adapter serves.
func (a *Adapter) Root() string {
	return a.root
}

// resolve maps a collaborator path to a location below the root.
func (a *Adapter) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.Clean(filepath.FromSlash(path)))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &pathkit.PathError{Op: op, Path: path, Err: pathkit.ErrNotAllowed}
	}
	return fullPath, nil
}

// pathError converts an os error into a pathkit error for path.
func pathError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = pathkit.ErrNotExist
	case errors.Is(err, os.ErrExist):
		err = pathkit.ErrExist
	}
	return &pathkit.PathError{Op: op, Path: path, Err: err}
}

func (a *Adapter) info(fullPath string, fi os.FileInfo) pathkit.FileInfo {
	rel, err := filepath.Rel(a.root, fullPath)
	if err != nil || rel == "." {
		rel = ""
	}
	info := pathkit.FileInfo{
		Name:    fi.Name(),
		Path:    filepath.ToSlash(rel),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
	}
	if !fi.IsDir() {
		info.ContentType = getContentType(fullPath)
	}
	return info
}

func log() *logrus.Entry {
	return pathkit.Logger().WithField("driver", "local")
}

// Write implements pathkit.FileWriter. An existing file is only replaced
// when pathkit.WithOverwrite(true) is given.
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...pathkit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("write", path)
	if err != nil {
		return err
	}
	opts := pathkit.ApplyOptions(options...)

	if fi, err := os.Stat(fullPath); err == nil {
		if fi.IsDir() {
			return &pathkit.PathError{Op: "write", Path: path, Err: pathkit.ErrIsDir}
		}
		if !opts.Overwrite {
			return &pathkit.PathError{Op: "write", Path: path, Err: pathkit.ErrExist}
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return pathError("write", path, err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return pathError("write", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return pathError("write", path, err)
	}
	if opts.Permissions != 0 {
		if err := os.Chmod(fullPath, opts.Permissions); err != nil {
			return pathError("write", path, err)
		}
	}

	log().WithFields(logrus.Fields{"op": "write", "path": path}).Debug("wrote file")
	return nil
}

// Read implements pathkit.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("read", path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, pathError("read", path, err)
	}
	return f, nil
}

// ReadAll implements pathkit.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete removes a single file.
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("delete", path)
	if err != nil {
		return err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		return pathError("delete", path, err)
	}
	if fi.IsDir() {
		return &pathkit.PathError{Op: "delete", Path: path, Err: pathkit.ErrIsDir}
	}
	if err := os.Remove(fullPath); err != nil {
		return pathError("delete", path, err)
	}
	return nil
}

// FileExists implements pathkit.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	fi, err := a.stat(ctx, "fileexists", path)
	if err != nil || fi == nil {
		return false, err
	}
	return !fi.IsDir(), nil
}

// DirExists implements pathkit.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	fi, err := a.stat(ctx, "direxists", path)
	if err != nil || fi == nil {
		return false, err
	}
	return fi.IsDir(), nil
}

// stat returns nil without error when path does not exist.
func (a *Adapter) stat(ctx context.Context, op, path string) (os.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve(op, path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pathError(op, path, err)
	}
	return fi, nil
}

// Stat implements pathkit.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*pathkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("stat", path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		return nil, pathError("stat", path, err)
	}
	info := a.info(fullPath, fi)
	return &info, nil
}

// ListContents implements pathkit.FileReader. Reported paths are relative
// to the adapter root and use "/".
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]pathkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("listcontents", path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		return nil, pathError("listcontents", path, err)
	}
	if !fi.IsDir() {
		return nil, &pathkit.PathError{Op: "listcontents", Path: path, Err: pathkit.ErrNotDir}
	}

	var files []pathkit.FileInfo
	if recursive {
		err = filepath.WalkDir(fullPath, func(walkPath string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if walkPath == fullPath {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			files = append(files, a.info(walkPath, fi))
			return nil
		})
		if err != nil {
			return nil, pathError("listcontents", path, err)
		}
		return files, nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, pathError("listcontents", path, err)
	}
	files = make([]pathkit.FileInfo, 0, len(entries))
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, a.info(filepath.Join(fullPath, entry.Name()), fi))
	}
	return files, nil
}

// CreateDir implements pathkit.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("createdir", path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return pathError("createdir", path, err)
	}
	return nil
}

// DeleteDir implements pathkit.FileWriter. The root itself cannot be
// deleted.
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("deletedir", path)
	if err != nil {
		return err
	}
	if fullPath == a.root {
		return &pathkit.PathError{Op: "deletedir", Path: path, Err: pathkit.ErrNotAllowed}
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		return pathError("deletedir", path, err)
	}
	if !fi.IsDir() {
		return &pathkit.PathError{Op: "deletedir", Path: path, Err: pathkit.ErrNotDir}
	}
	if err := os.RemoveAll(fullPath); err != nil {
		return pathError("deletedir", path, err)
	}
	return nil
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// getContentType guesses from the extension first, then from the content.
func getContentType(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return http.DetectContentType(buffer[:n])
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements pathkit.CanCopy. The destination is replaced if it exists
// and keeps the source's permissions.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.resolve("copy", src)
	if err != nil {
		return err
	}
	dstPath, err := a.resolve("copy", dst)
	if err != nil {
		return err
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return pathError("copy", src, err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return pathError("copy", dst, err)
	}
	dstFile, err := os.Create(dstPath)
	if err != nil {
		return pathError("copy", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return pathError("copy", dst, err)
	}
	if srcInfo, err := srcFile.Stat(); err == nil {
		_ = os.Chmod(dstPath, srcInfo.Mode())
	}
	return nil
}

// Move implements pathkit.CanMove, renaming when possible and falling back
// to copy and delete across devices.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcPath, err := a.resolve("move", src)
	if err != nil {
		return err
	}
	dstPath, err := a.resolve("move", dst)
	if err != nil {
		return err
	}
	if _, err := os.Stat(srcPath); err != nil {
		return pathError("move", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return pathError("move", dst, err)
	}

	if err := os.Rename(srcPath, dstPath); err != nil {
		log().WithError(err).WithField("path", src).Debug("rename failed, copying")
		if err := a.Copy(ctx, src, dst); err != nil {
			return err
		}
		if err := os.Remove(srcPath); err != nil {
			return pathError("move", src, err)
		}
	}
	return nil
}

// Watch implements pathkit.CanWatch using fsnotify. The fixed leading
// directory of pattern is watched, together with its subdirectories when
// the pattern contains "**". The returned token fires on the first
// matching event.
func (a *Adapter) Watch(ctx context.Context, pattern string) (pathkit.ChangeToken, error) {
	pattern = filepath.ToSlash(pattern)
	pp := pathkit.Literal(pattern)

	g, err := glob.Compile(strings.TrimPrefix(pattern, "/"), '/')
	if err != nil {
		return nil, &pathkit.PathError{Op: "watch", Path: pattern, Err: err}
	}
	var base glob.Glob
	if !strings.Contains(pattern, "/") {
		base = g
	}

	dir, _, err := pp.Root(slashParser)
	if err != nil {
		return nil, err
	}
	watchPath, err := a.resolve("watch", dir.String())
	if err != nil {
		return nil, err
	}

	watcher, err := newFSWatcher()
	if err != nil {
		return nil, &pathkit.PathError{Op: "watch", Path: pattern, Err: err}
	}
	if err := watcher.Add(watchPath); err != nil {
		watcher.Close()
		return nil, pathError("watch", pattern, err)
	}
	if strings.Contains(pattern, "**") {
		_ = filepath.WalkDir(watchPath, func(path string, d os.DirEntry, err error) error {
			if err == nil && d.IsDir() && path != watchPath {
				_ = watcher.Add(path)
			}
			return nil
		})
	}

	token := pathkit.NewCallbackChangeToken()
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				rel, err := filepath.Rel(a.root, event.Name)
				if err != nil {
					continue
				}
				rel = filepath.ToSlash(rel)
				if g.Match(rel) || (base != nil && base.Match(filepath.Base(rel))) {
					token.SignalChange()
					return
				}
			case err, ok := <-watcher.Errors():
				if !ok {
					return
				}
				log().WithError(err).WithField("pattern", pattern).Warn("watch error")
			}
		}
	}()

	return token, nil
}

// slashParser reads watch patterns, which are always written with "/".
var slashParser = pathkit.NewParser(pathkit.WithPlatform(pathkit.Posix))

// fsWatcher wraps fsnotify.Watcher with a simpler interface
type fsWatcher interface {
	Add(path string) error
	Close() error
	Events() <-chan fsEvent
	Errors() <-chan error
}

type fsEvent struct {
	Name string
	Op   uint32
}

var (
	_ pathkit.FileSystem = (*Adapter)(nil)
	_ pathkit.CanCopy    = (*Adapter)(nil)
	_ pathkit.CanMove    = (*Adapter)(nil)
	_ pathkit.CanWatch   = (*Adapter)(nil)
)
