package pathkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// ============================================================================
// Collaborator Pass-throughs
// ============================================================================
// These functions hand Path values to a FileSystem as native strings. They
// perform no path logic of their own beyond glob expansion.

func native(p Path) string {
	return p.Native()
}

// Stat returns metadata for p.
func Stat(ctx context.Context, fsys FileSystem, p Path) (*FileInfo, error) {
	return fsys.Stat(ctx, native(p))
}

// Exists reports whether p names an existing file or directory.
func Exists(ctx context.Context, fsys FileSystem, p Path) (bool, error) {
	ok, err := fsys.FileExists(ctx, native(p))
	if err != nil || ok {
		return ok, err
	}
	return fsys.DirExists(ctx, native(p))
}

// FileExists reports whether p names an existing file.
func FileExists(ctx context.Context, fsys FileSystem, p Path) (bool, error) {
	return fsys.FileExists(ctx, native(p))
}

// DirExists reports whether p names an existing directory.
func DirExists(ctx context.Context, fsys FileSystem, p Path) (bool, error) {
	return fsys.DirExists(ctx, native(p))
}

// ReadFile returns the content of p.
func ReadFile(ctx context.Context, fsys FileSystem, p Path) ([]byte, error) {
	return fsys.ReadAll(ctx, native(p))
}

// Open returns a reader for p.
func Open(ctx context.Context, fsys FileSystem, p Path) (io.ReadCloser, error) {
	return fsys.Read(ctx, native(p))
}

// WriteFile writes data to p.
func WriteFile(ctx context.Context, fsys FileSystem, p Path, data []byte, opts ...Option) error {
	return fsys.Write(ctx, native(p), bytes.NewReader(data), opts...)
}

// MakeDirs creates p and any missing parents.
func MakeDirs(ctx context.Context, fsys FileSystem, p Path) error {
	return fsys.CreateDir(ctx, native(p))
}

// RemoveTree deletes the directory p and everything below it.
func RemoveTree(ctx context.Context, fsys FileSystem, p Path) error {
	return fsys.DeleteDir(ctx, native(p))
}

// ListDir returns the entries directly below dir as paths joined onto dir.
func ListDir(ctx context.Context, fsys FileSystem, dir Path) ([]Path, error) {
	infos, err := fsys.ListContents(ctx, native(dir), false)
	if err != nil {
		return nil, err
	}
	result := make([]Path, 0, len(infos))
	for _, info := range infos {
		name := info.Name
		if info.IsDir {
			name += "/"
		}
		p, err := dir.JoinString(name)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// ============================================================================
// Glob Expansion
// ============================================================================

// Glob expands pattern against fsys. A Value is returned as is when it
// exists; a Literal is matched against the listing below its fixed leading
// directory. Results are sorted.
func Glob(ctx context.Context, fsys FileSystem, parser *PathParser, pattern PathOrPattern) ([]Path, error) {
	if parser == nil {
		parser = defaultParser
	}
	if !pattern.IsPattern() {
		p, err := pattern.Path(parser.options()...)
		if err != nil {
			return nil, err
		}
		ok, err := Exists(ctx, fsys, p)
		if err != nil || !ok {
			return nil, err
		}
		return []Path{p}, nil
	}

	g, err := pattern.Compile(parser)
	if err != nil {
		return nil, err
	}
	root, deep, err := pattern.Root(parser)
	if err != nil {
		return nil, err
	}
	infos, err := fsys.ListContents(ctx, native(root), deep)
	if err != nil {
		if IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var matches []Path
	for _, info := range infos {
		rel := info.Path
		if rel == "" {
			rel = info.Name
		}
		candidate, err := root.JoinString(filepath.ToSlash(relativeTo(root, rel)))
		if err != nil {
			logEntry().WithFields(logrus.Fields{"op": "glob", "path": rel, "error": err}).Debug("skipping unparsable listing entry")
			continue
		}
		if g.Match(candidate.String()) {
			matches = append(matches, candidate)
		}
	}
	slices.SortFunc(matches, func(a, b Path) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	logEntry().WithFields(logrus.Fields{"op": "glob", "pattern": pattern.String(), "matches": len(matches)}).Debug("expanded pattern")
	return matches, nil
}

// relativeTo turns a collaborator-reported path, which is relative to the
// collaborator's root, into a path relative to the listed directory.
func relativeTo(root Path, reported string) string {
	reported = strings.Trim(reported, "/")
	dir := strings.Trim(root.String(), "/")
	if dir != "" && strings.HasPrefix(reported, dir+"/") {
		return reported[len(dir)+1:]
	}
	return reported
}

func (p *PathParser) options() []ParseOption {
	opts := []ParseOption{WithPlatform(p.cfg.platform)}
	if p.cfg.separator != 0 {
		opts = append(opts, WithSeparator(p.cfg.separator))
	}
	if p.cfg.keepDots {
		opts = append(opts, KeepTrailingDots())
	}
	return opts
}

func expand(ctx context.Context, fsys FileSystem, parser *PathParser, items []PathOrPattern) ([]Path, error) {
	var (
		result []Path
		errs   *multierror.Error
	)
	for _, item := range items {
		paths, err := Glob(ctx, fsys, parser, item)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if len(paths) == 0 && !item.IsPattern() {
			errs = multierror.Append(errs, &PathError{Op: "expand", Path: item.String(), Err: ErrNotExist})
			continue
		}
		result = append(result, paths...)
	}
	return result, errs.ErrorOrNil()
}

// ============================================================================
// Multi-target Operations
// ============================================================================

// destination resolves where src lands when copied or moved to dst. A dst
// naming a directory receives src's filename.
func destination(ctx context.Context, fsys FileSystem, src, dst Path) (Path, error) {
	isDir := dst.IsDir()
	if !isDir {
		ok, err := fsys.DirExists(ctx, native(dst))
		if err != nil {
			return Path{}, err
		}
		isDir = ok
	}
	if !isDir {
		return dst, nil
	}
	return dst.JoinString(src.Basename())
}

// Copy copies every file matched by sources to dst. When several files are
// copied dst must be a directory. Failures are collected and returned
// together after all sources were tried.
func Copy(ctx context.Context, fsys FileSystem, parser *PathParser, dst Path, sources ...PathOrPattern) error {
	files, err := expand(ctx, fsys, parser, sources)
	var result *multierror.Error
	if err != nil {
		result = multierror.Append(result, err)
	}
	for _, src := range files {
		if err := copyOne(ctx, fsys, src, dst); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func copyOne(ctx context.Context, fsys FileSystem, src, dst Path) error {
	target, err := destination(ctx, fsys, src, dst)
	if err != nil {
		return &PathError{Op: "copy", Path: src.String(), Other: dst.String(), Err: err}
	}
	logEntry().WithFields(logrus.Fields{"op": "copy", "path": src.String(), "dst": target.String()}).Debug("copying")

	if copier, ok := fsys.(CanCopy); ok {
		return copier.Copy(ctx, native(src), native(target))
	}
	data, err := fsys.ReadAll(ctx, native(src))
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	return fsys.Write(ctx, native(target), bytes.NewReader(data), WithOverwrite(true))
}

// Move moves every file matched by sources to dst, using a native move
// when the collaborator has one.
func Move(ctx context.Context, fsys FileSystem, parser *PathParser, dst Path, sources ...PathOrPattern) error {
	files, err := expand(ctx, fsys, parser, sources)
	var result *multierror.Error
	if err != nil {
		result = multierror.Append(result, err)
	}
	for _, src := range files {
		if err := moveOne(ctx, fsys, src, dst); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func moveOne(ctx context.Context, fsys FileSystem, src, dst Path) error {
	target, err := destination(ctx, fsys, src, dst)
	if err != nil {
		return &PathError{Op: "move", Path: src.String(), Other: dst.String(), Err: err}
	}
	logEntry().WithFields(logrus.Fields{"op": "move", "path": src.String(), "dst": target.String()}).Debug("moving")

	if mover, ok := fsys.(CanMove); ok {
		return mover.Move(ctx, native(src), native(target))
	}
	if err := copyOne(ctx, fsys, src, target); err != nil {
		return err
	}
	return fsys.Delete(ctx, native(src))
}

// Rename moves a single file.
func Rename(ctx context.Context, fsys FileSystem, src, dst Path) error {
	return moveOne(ctx, fsys, src, dst)
}

// Remove deletes every file matched by targets.
func Remove(ctx context.Context, fsys FileSystem, parser *PathParser, targets ...PathOrPattern) error {
	files, err := expand(ctx, fsys, parser, targets)
	var result *multierror.Error
	if err != nil {
		result = multierror.Append(result, err)
	}
	for _, p := range files {
		if err := fsys.Delete(ctx, native(p)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// ============================================================================
// Walk
// ============================================================================

// WalkFunc is called once per directory with its subdirectories and files.
// Returning SkipDir from a call skips the subdirectories of that directory.
type WalkFunc func(dir Path, dirs []Path, files []Path) error

// SkipDir is returned by a WalkFunc to prune the current directory.
var SkipDir = errors.New("skip this directory")

// Walk visits root and every directory below it, parents before children.
func Walk(ctx context.Context, fsys FileSystem, root Path, fn WalkFunc) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !root.IsDir() && !root.IsEmpty() {
		root = root.MustJoin("")
	}
	entries, err := ListDir(ctx, fsys, root)
	if err != nil {
		return err
	}
	var dirs, files []Path
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	if err := fn(root, dirs, files); err != nil {
		if errors.Is(err, SkipDir) {
			return nil
		}
		return err
	}
	for _, d := range dirs {
		if err := Walk(ctx, fsys, d, fn); err != nil {
			return err
		}
	}
	return nil
}
