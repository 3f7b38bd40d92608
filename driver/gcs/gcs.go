// Package gcs provides a pathkit collaborator backed by a Google Cloud
// Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/pathkit"
	"github.com/gobwas/glob"
	"google.golang.org/api/iterator"
)

// dirContentType marks the empty objects that stand in for directories.
const dirContentType = "application/x-directory"

// Adapter serves pathkit.FileSystem from one bucket, optionally below a
// key prefix.
type Adapter struct {
	client       *storage.Client
	bucket       string
	prefix       string
	pollInterval time.Duration
}

// AdapterOption is a function that configures GCS Adapter
type AdapterOption func(*Adapter)

// WithPrefix stores every object below prefix.
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// WithPollInterval sets how often Watch lists the bucket. The default is
// 30 seconds.
func WithPollInterval(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.pollInterval = d
	}
}

// New creates a new GCS filesystem adapter
func New(client *storage.Client, bucket string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		client:       client,
		bucket:       bucket,
		pollInterval: 30 * time.Second,
	}
	for _, option := range options {
		option(adapter)
	}
	return adapter
}

// ParseObjectURL splits a "gs://bucket/object" path into bucket and object
// name. The object is empty for a bucket-only URL.
func ParseObjectURL(p pathkit.Path) (bucket, object string, err error) {
	if p.Scheme() != "gs" || p.Host() == "" {
		return "", "", &pathkit.PathError{Op: "gcs", Path: p.String(), Err: pathkit.ErrUnsupportedOperation}
	}
	object = strings.TrimPrefix(p.Dirs()+p.Filename(), p.Host())
	return p.Host(), strings.TrimPrefix(object, "/"), nil
}

// NewFromURL creates an adapter for the bucket and object prefix named by
// a "gs://bucket/prefix/" path.
func NewFromURL(client *storage.Client, u pathkit.Path, options ...AdapterOption) (*Adapter, error) {
	bucket, prefix, err := ParseObjectURL(u)
	if err != nil {
		return nil, err
	}
	return New(client, bucket, append([]AdapterOption{WithPrefix(prefix)}, options...)...), nil
}

// keyParser reads collaborator paths, which use "/" on every platform.
var keyParser = pathkit.NewParser(pathkit.WithPlatform(pathkit.Posix), pathkit.KeepTrailingDots())

// objectKey maps a collaborator path to an object name. A path climbing
// above the root is rejected.
func (a *Adapter) objectKey(op, filePath string) (string, error) {
	p, err := keyParser.Path(filePath)
	if err == nil {
		p, err = p.Clean()
	}
	if err != nil {
		return "", &pathkit.PathError{Op: op, Path: filePath, Err: pathkit.ErrNotAllowed}
	}
	return a.prefix + strings.TrimPrefix(p.String(), "/"), nil
}

// dirKey is objectKey with a trailing "/", or the bare prefix for the root.
func (a *Adapter) dirKey(op, dirPath string) (string, error) {
	key, err := a.objectKey(op, dirPath)
	if err != nil {
		return "", err
	}
	if key != "" && !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key, nil
}

// relative strips the adapter prefix from an object name.
func (a *Adapter) relative(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, a.prefix), "/")
}

func (a *Adapter) info(attrs *storage.ObjectAttrs) pathkit.FileInfo {
	rel := a.relative(attrs.Name)
	return pathkit.FileInfo{
		Name:        rel[strings.LastIndexByte(rel, '/')+1:],
		Path:        rel,
		Size:        attrs.Size,
		ModTime:     attrs.Updated,
		IsDir:       strings.HasSuffix(attrs.Name, "/") || attrs.ContentType == dirContentType,
		ContentType: attrs.ContentType,
	}
}

func (a *Adapter) object(key string) *storage.ObjectHandle {
	return a.client.Bucket(a.bucket).Object(key)
}

// Write implements pathkit.FileWriter
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...pathkit.Option) error {
	key, err := a.objectKey("write", filePath)
	if err != nil {
		return err
	}
	opts := pathkit.ApplyOptions(options...)
	obj := a.object(key)

	if !opts.Overwrite {
		_, err := obj.Attrs(ctx)
		if err == nil {
			return &pathkit.PathError{Op: "write", Path: filePath, Err: pathkit.ErrExist}
		}
		if !errors.Is(err, storage.ErrObjectNotExist) {
			return mapGCSError("write", filePath, err)
		}
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	writer := obj.NewWriter(ctx)
	writer.ContentType = opts.ContentType
	if writer.ContentType == "" {
		writer.ContentType = detectContentType(key)
	}
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	if _, err := io.Copy(writer, content); err != nil {
		writer.Close()
		return mapGCSError("write", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return mapGCSError("write", filePath, err)
	}
	return nil
}

// Read implements pathkit.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	key, err := a.objectKey("read", filePath)
	if err != nil {
		return nil, err
	}
	reader, err := a.object(key).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError("read", filePath, err)
	}
	return reader, nil
}

// ReadAll implements pathkit.FileReader
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	rc, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete implements pathkit.FileWriter
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	key, err := a.objectKey("delete", filePath)
	if err != nil {
		return err
	}
	if err := a.object(key).Delete(ctx); err != nil {
		return mapGCSError("delete", filePath, err)
	}
	return nil
}

// FileExists reports whether an object other than a directory marker
// exists at filePath.
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	key, err := a.objectKey("fileexists", filePath)
	if err != nil {
		return false, err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return false, nil
	}
	attrs, err := a.object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, mapGCSError("fileexists", filePath, err)
	}
	return attrs.ContentType != dirContentType, nil
}

// DirExists reports whether a directory marker or any object below
// dirPath exists. The root always exists.
func (a *Adapter) DirExists(ctx context.Context, dirPath string) (bool, error) {
	key, err := a.dirKey("direxists", dirPath)
	if err != nil {
		return false, err
	}
	if key == "" || key == a.prefix {
		return true, nil
	}

	it := a.client.Bucket(a.bucket).Objects(ctx, &storage.Query{Prefix: key})
	_, err = it.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, mapGCSError("direxists", dirPath, err)
	}
	return true, nil
}

// Stat implements pathkit.FileReader. A path with no object but with
// objects below it is reported as a directory.
func (a *Adapter) Stat(ctx context.Context, filePath string) (*pathkit.FileInfo, error) {
	key, err := a.objectKey("stat", filePath)
	if err != nil {
		return nil, err
	}
	attrs, err := a.object(key).Attrs(ctx)
	if err == nil {
		info := a.info(attrs)
		return &info, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, mapGCSError("stat", filePath, err)
	}

	ok, dirErr := a.DirExists(ctx, filePath)
	if dirErr != nil || !ok {
		return nil, mapGCSError("stat", filePath, err)
	}
	rel := a.relative(key)
	return &pathkit.FileInfo{
		Name:  rel[strings.LastIndexByte(rel, '/')+1:],
		Path:  rel,
		IsDir: true,
	}, nil
}

// ListContents lists the objects below dirPath. Without recursive, the
// listing uses "/" as delimiter and common prefixes become directories.
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]pathkit.FileInfo, error) {
	listPrefix, err := a.dirKey("listcontents", dirPath)
	if err != nil {
		return nil, err
	}

	query := &storage.Query{Prefix: listPrefix}
	if !recursive {
		query.Delimiter = "/"
	}

	var files []pathkit.FileInfo
	it := a.client.Bucket(a.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapGCSError("listcontents", dirPath, err)
		}

		if attrs.Prefix != "" {
			rel := a.relative(attrs.Prefix)
			files = append(files, pathkit.FileInfo{
				Name:  rel[strings.LastIndexByte(rel, '/')+1:],
				Path:  rel,
				IsDir: true,
			})
			continue
		}
		if attrs.Name == listPrefix {
			continue
		}
		files = append(files, a.info(attrs))
	}
	return files, nil
}

// CreateDir writes an empty directory marker object.
func (a *Adapter) CreateDir(ctx context.Context, dirPath string) error {
	key, err := a.dirKey("createdir", dirPath)
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}
	writer := a.object(key).NewWriter(ctx)
	writer.ContentType = dirContentType
	if err := writer.Close(); err != nil {
		return mapGCSError("createdir", dirPath, err)
	}
	return nil
}

// DeleteDir deletes every object below dirPath.
func (a *Adapter) DeleteDir(ctx context.Context, dirPath string) error {
	key, err := a.dirKey("deletedir", dirPath)
	if err != nil {
		return err
	}
	if key == "" || key == a.prefix {
		return &pathkit.PathError{Op: "deletedir", Path: dirPath, Err: pathkit.ErrNotAllowed}
	}

	bkt := a.client.Bucket(a.bucket)
	it := bkt.Objects(ctx, &storage.Query{Prefix: key})
	var found bool
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return mapGCSError("deletedir", dirPath, err)
		}
		found = true
		if err := bkt.Object(attrs.Name).Delete(ctx); err != nil {
			return mapGCSError("deletedir", dirPath, err)
		}
	}
	if !found {
		return &pathkit.PathError{Op: "deletedir", Path: dirPath, Err: pathkit.ErrNotExist}
	}
	return nil
}

func detectContentType(key string) string {
	if i := strings.LastIndexByte(key, '.'); i > strings.LastIndexByte(key, '/') {
		if contentType := mime.TypeByExtension(key[i:]); contentType != "" {
			return contentType
		}
	}
	return "application/octet-stream"
}

// mapGCSError maps GCS errors to pathkit errors
func mapGCSError(op, path string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return &pathkit.PathError{Op: op, Path: path, Err: pathkit.ErrNotExist}
	}
	return &pathkit.PathError{Op: op, Path: path, Err: err}
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================

// Copy implements pathkit.CanCopy using GCS's native CopierFrom.
func (a *Adapter) Copy(ctx context.Context, src, dst string) error {
	srcKey, err := a.objectKey("copy", src)
	if err != nil {
		return err
	}
	dstKey, err := a.objectKey("copy", dst)
	if err != nil {
		return err
	}
	if _, err := a.object(dstKey).CopierFrom(a.object(srcKey)).Run(ctx); err != nil {
		return mapGCSError("copy", src, err)
	}
	return nil
}

// Move implements pathkit.CanMove as copy then delete.
func (a *Adapter) Move(ctx context.Context, src, dst string) error {
	if err := a.Copy(ctx, src, dst); err != nil {
		return err
	}
	srcKey, _ := a.objectKey("move", src)
	if err := a.object(srcKey).Delete(ctx); err != nil {
		return mapGCSError("move", src, err)
	}
	return nil
}

// ============================================================================
// Watcher Implementation (Polling-based)
// ============================================================================

// Watch implements pathkit.CanWatch by polling, since GCS has no change
// events. filter is a glob such as "**/*.json" matched against paths
// relative to the adapter root.
func (a *Adapter) Watch(ctx context.Context, filter string) (pathkit.ChangeToken, error) {
	g, err := glob.Compile(strings.TrimPrefix(filter, "/"), '/')
	if err != nil {
		return nil, &pathkit.PathError{Op: "watch", Path: filter, Err: err}
	}
	initial, err := a.snapshot(ctx, filter, g)
	if err != nil {
		return nil, err
	}

	token := pathkit.NewCallbackChangeToken()
	go func() {
		ticker := time.NewTicker(a.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := a.snapshot(ctx, filter, g)
				if err != nil {
					pathkit.Logger().WithError(err).WithField("driver", "gcs").Debug("watch poll failed")
					continue
				}
				if !sameState(initial, current) {
					token.SignalChange()
					return
				}
			}
		}
	}()
	return token, nil
}

// objectState is what a poll compares between listings.
type objectState struct {
	generation int64
	size       int64
}

func (a *Adapter) snapshot(ctx context.Context, filter string, g glob.Glob) (map[string]objectState, error) {
	state := make(map[string]objectState)
	it := a.client.Bucket(a.bucket).Objects(ctx, &storage.Query{Prefix: a.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &pathkit.PathError{Op: "watch", Path: filter, Err: err}
		}
		rel := a.relative(attrs.Name)
		if g.Match(rel) {
			state[rel] = objectState{generation: attrs.Generation, size: attrs.Size}
		}
	}
	return state, nil
}

func sameState(a, b map[string]objectState) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func (a *Adapter) String() string {
	return fmt.Sprintf("gs://%s/%s", a.bucket, a.prefix)
}

var (
	_ pathkit.FileSystem = (*Adapter)(nil)
	_ pathkit.CanCopy    = (*Adapter)(nil)
	_ pathkit.CanMove    = (*Adapter)(nil)
	_ pathkit.CanWatch   = (*Adapter)(nil)
)
