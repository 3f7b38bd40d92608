package pathkit_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gobeaver/pathkit"
	"github.com/gobeaver/pathkit/driver/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainFS hides the optional capabilities of the wrapped filesystem.
type plainFS struct {
	pathkit.FileSystem
}

func TestMount(t *testing.T) {
	m := pathkit.NewMountManager()
	fs := memory.New()

	require.NoError(t, m.Mount("/local", fs))
	assert.ErrorIs(t, m.Mount("local/", memory.New()), pathkit.ErrMountExists)
	assert.ErrorIs(t, m.Mount("/other", nil), pathkit.ErrNilDriver)
	assert.ErrorIs(t, m.Mount("", fs), pathkit.ErrEmptyMountPath)
	assert.ErrorIs(t, m.Mount("/../escape", fs), pathkit.ErrInvalidMountPath)

	got, err := m.GetMount("/local/")
	require.NoError(t, err)
	assert.Same(t, fs, got)

	require.NoError(t, m.Unmount("/local"))
	assert.ErrorIs(t, m.Unmount("/local"), pathkit.ErrMountNotFound)
	_, err = m.GetMount("/local")
	assert.ErrorIs(t, err, pathkit.ErrMountNotFound)
}

func TestMountPaths(t *testing.T) {
	m := pathkit.NewMountManager()
	for _, mp := range []string{"/c", "/a", "/a/./b"} {
		require.NoError(t, m.Mount(mp, memory.New()))
	}
	assert.Equal(t, []string{"/a/b/", "/a/", "/c/"}, names(m.MountPaths()))
}

func newMounts(t *testing.T) (*pathkit.MountManager, *memory.Adapter, *memory.Adapter) {
	t.Helper()
	m := pathkit.NewMountManager()
	outer, nested := memory.New(), memory.New()
	require.NoError(t, m.Mount("/local", outer))
	require.NoError(t, m.Mount("/local/nested", nested))
	return m, outer, nested
}

func TestMountRouting(t *testing.T) {
	ctx := context.Background()
	m, outer, nested := newMounts(t)

	require.NoError(t, m.Write(ctx, "/local/x.txt", strings.NewReader("outer")))
	require.NoError(t, m.Write(ctx, "/local/nested/dir/y.txt", strings.NewReader("nested")))

	ok, err := outer.FileExists(ctx, "x.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = nested.FileExists(ctx, "dir/y.txt")
	require.NoError(t, err)
	assert.True(t, ok, "longest mount wins")

	data, err := m.ReadAll(ctx, "/local/nested/dir/y.txt")
	require.NoError(t, err)
	assert.Equal(t, "nested", string(data))

	info, err := m.Stat(ctx, "/local/nested/dir/y.txt")
	require.NoError(t, err)
	assert.Equal(t, "/local/nested/dir/y.txt", info.Path)

	files, err := m.ListContents(ctx, "/local/", false)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/local/x.txt", files[0].Path)

	err = m.Write(ctx, "/elsewhere/z.txt", strings.NewReader("z"))
	assert.ErrorIs(t, err, pathkit.ErrMountNotFound)

	err = m.Write(ctx, "/local/../escape.txt", strings.NewReader("z"))
	assert.ErrorIs(t, err, pathkit.ErrMountNotFound)
}

func TestMountPointDirs(t *testing.T) {
	ctx := context.Background()
	m := pathkit.NewMountManager()
	require.NoError(t, m.Mount("/cloud/gcs", memory.New()))
	require.NoError(t, m.Mount("/cloud/archive", memory.New()))
	require.NoError(t, m.Mount("/local", memory.New()))

	root, err := m.ListContents(ctx, "/", false)
	require.NoError(t, err)
	var rootNames []string
	for _, f := range root {
		assert.True(t, f.IsDir)
		rootNames = append(rootNames, f.Name)
	}
	assert.Equal(t, []string{"cloud", "local"}, rootNames)

	cloud, err := m.ListContents(ctx, "/cloud", false)
	require.NoError(t, err)
	require.Len(t, cloud, 2)
	assert.Equal(t, "/cloud/archive", cloud[0].Path)

	ok, err := m.DirExists(ctx, "/cloud")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.DirExists(ctx, "/nothing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMountCopyMove(t *testing.T) {
	ctx := context.Background()
	m, outer, nested := newMounts(t)
	require.NoError(t, m.Write(ctx, "/local/report.csv", bytes.NewReader([]byte("a,b")), pathkit.WithContentType("text/csv")))

	require.NoError(t, m.Copy(ctx, "/local/report.csv", "/local/nested/report.csv"))
	info, err := nested.Stat(ctx, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", info.ContentType)

	require.NoError(t, m.Copy(ctx, "/local/report.csv", "/local/copy.csv"))
	ok, _ := outer.FileExists(ctx, "copy.csv")
	assert.True(t, ok)

	require.NoError(t, m.Move(ctx, "/local/copy.csv", "/local/nested/moved.csv"))
	ok, _ = outer.FileExists(ctx, "copy.csv")
	assert.False(t, ok)
	ok, _ = nested.FileExists(ctx, "moved.csv")
	assert.True(t, ok)

	err = m.Copy(ctx, "/local/missing.csv", "/local/nested/x.csv")
	assert.True(t, pathkit.IsNotExist(err))
}

func TestMountWithPathOperations(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newMounts(t)
	require.NoError(t, pathkit.WriteFile(ctx, m, p("/local/data/a.csv"), []byte("1")))
	require.NoError(t, pathkit.WriteFile(ctx, m, p("/local/data/b.csv"), []byte("2")))

	matches, err := pathkit.Glob(ctx, m, posix, pathkit.Literal("/local/data/*.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/local/data/a.csv", "/local/data/b.csv"}, names(matches))

	require.NoError(t, pathkit.Copy(ctx, m, posix, p("/local/nested/"), pathkit.Literal("/local/data/*.csv")))
	ok, err := pathkit.FileExists(ctx, m, p("/local/nested/b.csv"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMountWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, _, _ := newMounts(t)

	token, err := m.Watch(ctx, "/local/*.txt")
	require.NoError(t, err)

	fired := make(chan struct{})
	token.RegisterChangeCallback(func() { close(fired) })
	require.NoError(t, m.Write(ctx, "/local/new.txt", strings.NewReader("x")))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not fire")
	}
	assert.True(t, token.HasChanged())

	all, err := m.Watch(ctx, "**/*.json")
	require.NoError(t, err)
	assert.IsType(t, &pathkit.CompositeChangeToken{}, all)

	plain := pathkit.NewMountManager()
	require.NoError(t, plain.Mount("/p", plainFS{memory.New()}))
	_, err = plain.Watch(ctx, "/p/*.txt")
	assert.True(t, errors.Is(err, pathkit.ErrNotSupported))
}
