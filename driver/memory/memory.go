// Package memory provides an in-memory pathkit collaborator, useful for
// tests and for staging files before they reach a real backend.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"mime"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gobeaver/pathkit"
	"github.com/gobwas/glob"
)

// ErrNoSpace is returned when a write would exceed Config.MaxSize.
var ErrNoSpace = errors.New("memory: storage limit exceeded")

type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
	hash        uint64
}

type watchEntry struct {
	filter glob.Glob
	token  *pathkit.CallbackChangeToken
}

// Adapter stores files in maps keyed by cleaned, root-relative paths such
// as "docs/readme.txt". The root directory has the key "".
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	dirs    map[string]time.Time
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64

	watchMu sync.RWMutex
	watches []*watchEntry
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory filesystem adapter
func New(cfg ...Config) *Adapter {
	a := &Adapter{
		files: make(map[string]*memoryFile),
		dirs:  map[string]time.Time{"": time.Now()},
	}
	if len(cfg) > 0 {
		a.maxSize = cfg[0].MaxSize
	}
	return a
}

// keyParser reads collaborator paths, which use "/" on every platform.
var keyParser = pathkit.NewParser(pathkit.WithPlatform(pathkit.Posix), pathkit.KeepTrailingDots())

// key cleans path into a map key. A path whose ".." climbs above the root
// is rejected.
func key(op, path string) (string, error) {
	path = strings.ReplaceAll(path, `\`, "/")
	p, err := keyParser.Path(path)
	if err == nil {
		p, err = p.Clean()
	}
	if err != nil {
		return "", &pathkit.PathError{Op: op, Path: path, Err: pathkit.ErrNotAllowed}
	}
	return strings.Trim(p.String(), "/"), nil
}

// parentKey returns the key of the directory holding k.
func parentKey(k string) string {
	if i := strings.LastIndexByte(k, '/'); i >= 0 {
		return k[:i]
	}
	return ""
}

func baseName(k string) string {
	return k[strings.LastIndexByte(k, '/')+1:]
}

func (f *memoryFile) info(k string) pathkit.FileInfo {
	return pathkit.FileInfo{
		Name:        baseName(k),
		Path:        k,
		Size:        int64(len(f.content)),
		ModTime:     f.modTime,
		ContentType: f.contentType,
		Hash:        f.hash,
	}
}

func dirInfo(k string, modTime time.Time) pathkit.FileInfo {
	return pathkit.FileInfo{Name: baseName(k), Path: k, ModTime: modTime, IsDir: true}
}

// Write implements pathkit.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...pathkit.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	k, err := key("write", path)
	if err != nil {
		return err
	}
	if k == "" {
		return &pathkit.PathError{Op: "write", Path: path, Err: pathkit.ErrIsDir}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &pathkit.PathError{Op: "write", Path: path, Err: err}
	}
	opts := pathkit.ApplyOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, isDir := a.dirs[k]; isDir {
		return &pathkit.PathError{Op: "write", Path: path, Err: pathkit.ErrIsDir}
	}
	size := a.size
	if existing, exists := a.files[k]; exists {
		if !opts.Overwrite {
			return &pathkit.PathError{Op: "write", Path: path, Err: pathkit.ErrExist}
		}
		size -= int64(len(existing.content))
	}
	size += int64(len(data))
	if a.maxSize > 0 && size > a.maxSize {
		return &pathkit.PathError{Op: "write", Path: path, Err: ErrNoSpace}
	}

	if err := a.ensureParentDirs(k); err != nil {
		return &pathkit.PathError{Op: "write", Path: path, Err: err}
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = detectContentType(k, data)
	}
	a.files[k] = &memoryFile{
		content:     data,
		contentType: contentType,
		metadata:    maps.Clone(opts.Metadata),
		modTime:     time.Now(),
		hash:        xxhash.Sum64(data),
	}
	a.size = size

	go a.notifyWatchers(k)
	return nil
}

// Read implements pathkit.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	k, err := key("read", path)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[k]
	if !exists {
		return nil, &pathkit.PathError{Op: "read", Path: path, Err: pathkit.ErrNotExist}
	}
	// file.content is never mutated after Write, so it can be shared
	return io.NopCloser(bytes.NewReader(file.content)), nil
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

// Delete implements pathkit.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	k, err := key("delete", path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[k]
	if !exists {
		if _, isDir := a.dirs[k]; isDir {
			return &pathkit.PathError{Op: "delete", Path: path, Err: pathkit.ErrIsDir}
		}
		return &pathkit.PathError{Op: "delete", Path: path, Err: pathkit.ErrNotExist}
	}
	a.size -= int64(len(file.content))
	delete(a.files, k)

	go a.notifyWatchers(k)
	return nil
}

// FileExists implements pathkit.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	k, err := key("fileexists", path)
	if err != nil {
		return false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	_, exists := a.files[k]
	return exists, nil
}

// DirExists implements pathkit.FileReader
func (a *Adapter) DirExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	k, err := key("direxists", path)
	if err != nil {
		return false, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	_, exists := a.dirs[k]
	return exists, nil
}

// Stat implements pathkit.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*pathkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	k, err := key("stat", path)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[k]; exists {
		info := file.info(k)
		return &info, nil
	}
	if modTime, exists := a.dirs[k]; exists {
		info := dirInfo(k, modTime)
		return &info, nil
	}
	return nil, &pathkit.PathError{Op: "stat", Path: path, Err: pathkit.ErrNotExist}
}

// ListContents implements pathkit.FileReader. Entries are sorted by path.
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]pathkit.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	k, err := key("listcontents", path)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[k]; !exists {
		if _, isFile := a.files[k]; isFile {
			return nil, &pathkit.PathError{Op: "listcontents", Path: path, Err: pathkit.ErrNotDir}
		}
		return nil, &pathkit.PathError{Op: "listcontents", Path: path, Err: pathkit.ErrNotExist}
	}

	below := func(child string) bool {
		if recursive {
			return child != k && (k == "" || strings.HasPrefix(child, k+"/"))
		}
		return child != "" && parentKey(child) == k
	}

	var files []pathkit.FileInfo
	for fk, file := range a.files {
		if below(fk) {
			files = append(files, file.info(fk))
		}
	}
	for dk, modTime := range a.dirs {
		if dk != "" && below(dk) {
			files = append(files, dirInfo(dk, modTime))
		}
	}
	slices.SortFunc(files, func(x, y pathkit.FileInfo) int {
		return strings.Compare(x.Path, y.Path)
	})
	return files, nil
}

// CreateDir implements pathkit.FileWriter
func (a *Adapter) CreateDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	k, err := key("createdir", path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.files[k]; exists {
		return &pathkit.PathError{Op: "createdir", Path: path, Err: pathkit.ErrExist}
	}
	if err := a.ensureParentDirs(k); err != nil {
		return &pathkit.PathError{Op: "createdir", Path: path, Err: err}
	}
	if _, exists := a.dirs[k]; !exists {
		a.dirs[k] = time.Now()
	}
	return nil
}

// DeleteDir implements pathkit.FileWriter. The root directory is emptied
// but kept.
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	k, err := key("deletedir", path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.dirs[k]; !exists {
		if _, isFile := a.files[k]; isFile {
			return &pathkit.PathError{Op: "deletedir", Path: path, Err: pathkit.ErrNotDir}
		}
		return &pathkit.PathError{Op: "deletedir", Path: path, Err: pathkit.ErrNotExist}
	}

	inside := func(child string) bool {
		return k == "" || child == k || strings.HasPrefix(child, k+"/")
	}
	var deleted []string
	for fk, file := range a.files {
		if inside(fk) {
			a.size -= int64(len(file.content))
			deleted = append(deleted, fk)
			delete(a.files, fk)
		}
	}
	for dk := range a.dirs {
		if dk != "" && inside(dk) {
			delete(a.dirs, dk)
		}
	}

	if len(deleted) > 0 {
		go func() {
			for _, fk := range deleted {
				a.notifyWatchers(fk)
			}
		}()
	}
	return nil
}

// Clear removes all files and directories.
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files = make(map[string]*memoryFile)
	a.dirs = map[string]time.Time{"": time.Now()}
	a.size = 0
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// ensureParentDirs creates the missing directories above k. It fails when
// one of them is a file. Must be called with lock held.
func (a *Adapter) ensureParentDirs(k string) error {
	for dir := parentKey(k); dir != ""; dir = parentKey(dir) {
		if _, isFile := a.files[dir]; isFile {
			return pathkit.ErrNotDir
		}
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = time.Now()
		}
	}
	return nil
}

func detectContentType(k string, data []byte) string {
	if i := strings.LastIndexByte(k, '.'); i > strings.LastIndexByte(k, '/') {
		if contentType := mime.TypeByExtension(k[i:]); contentType != "" {
			return contentType
		}
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements pathkit.CanCopy. The destination is replaced if it
// exists.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sk, err := key("copy", src)
	if err != nil {
		return err
	}
	dk, err := key("copy", dst)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[sk]
	if !exists {
		return &pathkit.PathError{Op: "copy", Path: src, Err: pathkit.ErrNotExist}
	}
	size := a.size + int64(len(srcFile.content))
	if existing, ok := a.files[dk]; ok {
		size -= int64(len(existing.content))
	}
	if a.maxSize > 0 && size > a.maxSize {
		return &pathkit.PathError{Op: "copy", Path: dst, Err: ErrNoSpace}
	}
	if err := a.ensureParentDirs(dk); err != nil {
		return &pathkit.PathError{Op: "copy", Path: dst, Err: err}
	}

	a.files[dk] = &memoryFile{
		content:     slices.Clone(srcFile.content),
		contentType: srcFile.contentType,
		metadata:    maps.Clone(srcFile.metadata),
		modTime:     time.Now(),
		hash:        srcFile.hash,
	}
	a.size = size

	go a.notifyWatchers(dk)
	return nil
}

// Move implements pathkit.CanMove
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sk, err := key("move", src)
	if err != nil {
		return err
	}
	dk, err := key("move", dst)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	srcFile, exists := a.files[sk]
	if !exists {
		return &pathkit.PathError{Op: "move", Path: src, Err: pathkit.ErrNotExist}
	}
	if sk == dk {
		return nil
	}
	if err := a.ensureParentDirs(dk); err != nil {
		return &pathkit.PathError{Op: "move", Path: dst, Err: err}
	}
	if existing, ok := a.files[dk]; ok {
		a.size -= int64(len(existing.content))
	}
	a.files[dk] = srcFile
	srcFile.modTime = time.Now()
	delete(a.files, sk)

	go func() {
		a.notifyWatchers(sk)
		a.notifyWatchers(dk)
	}()
	return nil
}

// ============================================================================
// Watcher Implementation
// ============================================================================

// Watch implements pathkit.CanWatch. filter is a glob such as "**/*.txt"
// or "config/*", matched against root-relative paths; a filter without
// "/" also matches bare file names.
func (a *Adapter) Watch(ctx context.Context, filter string) (pathkit.ChangeToken, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	g, err := glob.Compile(strings.TrimPrefix(filter, "/"), '/')
	if err != nil {
		return nil, &pathkit.PathError{Op: "watch", Path: filter, Err: err}
	}
	entry := &watchEntry{filter: g, token: pathkit.NewCallbackChangeToken()}
	if !strings.Contains(filter, "/") {
		entry.filter = nameGlob{g}
	}

	a.watchMu.Lock()
	a.watches = append(a.watches, entry)
	a.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		a.removeWatch(entry.token)
	}()

	return entry.token, nil
}

// nameGlob matches a file name pattern against the last element of a key.
type nameGlob struct {
	glob.Glob
}

func (n nameGlob) Match(k string) bool {
	return n.Glob.Match(k) || n.Glob.Match(baseName(k))
}

// notifyWatchers signals all watchers whose filter matches k.
func (a *Adapter) notifyWatchers(k string) {
	a.watchMu.RLock()
	defer a.watchMu.RUnlock()

	for _, entry := range a.watches {
		if entry.filter.Match(k) {
			entry.token.SignalChange()
		}
	}
}

func (a *Adapter) removeWatch(token *pathkit.CallbackChangeToken) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	a.watches = slices.DeleteFunc(a.watches, func(e *watchEntry) bool {
		return e.token == token
	})
}

var (
	_ pathkit.FileSystem = (*Adapter)(nil)
	_ pathkit.CanCopy    = (*Adapter)(nil)
	_ pathkit.CanMove    = (*Adapter)(nil)
	_ pathkit.CanWatch   = (*Adapter)(nil)
)
