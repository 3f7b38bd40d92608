package pathkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasenameDirname(t *testing.T) {
	tests := []struct {
		in, base, dir string
	}{
		{"/a/b.txt", "b.txt", "/a"},
		{"/a/b/", "", "/a/b"},
		{"/a", "a", "/"},
		{"a", "a", ""},
		{"//srv/share/x/y", "y", "//srv/share/x"},
	}
	for _, tt := range tests {
		p := MustParse(tt.in, posix)
		assert.Equal(t, tt.base, p.Basename(), "Basename(%q)", tt.in)
		assert.Equal(t, tt.dir, p.Dirname(), "Dirname(%q)", tt.in)
	}
}

func TestIsAbs(t *testing.T) {
	assert.True(t, MustParse("/x", posix).IsAbs())
	assert.True(t, MustParse("//srv/share", posix).IsAbs())
	assert.True(t, MustParse("s3://bucket/key", posix).IsAbs())
	assert.False(t, MustParse("x/y", posix).IsAbs())
	assert.False(t, MustParse("c:x", windows).IsAbs())
	assert.True(t, MustParse(`c:\x`, windows).IsAbs())
}

func TestSplitExtDrive(t *testing.T) {
	root, ext := MustParse("/a/b.tar.gz", posix).SplitExt()
	assert.Equal(t, "/a/b.tar", root.String())
	assert.Equal(t, ".gz", ext)

	vol, rest := MustParse(`c:\x\y`, windows).SplitDrive()
	assert.Equal(t, "c:", vol)
	assert.Equal(t, "/x/y", rest.String())
}

func TestCommonPrefixPath(t *testing.T) {
	paths := []Path{MustParse("/usr/lib", posix), MustParse("/usr/local", posix)}
	assert.Equal(t, "/usr/l", CommonPrefix(paths...))
	assert.Equal(t, "", CommonPrefix())

	common, err := CommonPath(paths...)
	require.NoError(t, err)
	assert.Equal(t, "/usr", common.String())

	common, err = CommonPath(MustParse("/usr/./lib/x", posix), MustParse("/usr/lib/y/../z", posix))
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib", common.String())

	_, err = CommonPath()
	assert.ErrorIs(t, err, ErrEmptyPathList)

	_, err = CommonPath(MustParse("/a", posix), MustParse("a", posix))
	assert.ErrorIs(t, err, ErrMixedAbsolute)

	_, err = CommonPath(MustParse("c:/a", windows), MustParse("d:/a", windows))
	assert.True(t, IsIncompatibleRoots(err))
}

func TestRelPath(t *testing.T) {
	tests := []struct {
		target, start, want string
	}{
		{"/a/b/c", "/a/d", "../b/c"},
		{"/a/b", "/a/b", "."},
		{"/a/b/c/d", "/a/b", "c/d"},
		{"/a", "/a/b/c", "../.."},
		{"x/y", "x", "y"},
	}
	for _, tt := range tests {
		got, err := RelPath(tt.target, tt.start, posix)
		require.NoError(t, err, "RelPath(%q, %q)", tt.target, tt.start)
		assert.Equal(t, tt.want, got.String(), "RelPath(%q, %q)", tt.target, tt.start)
	}

	_, err := RelPath("/a", "a", posix)
	assert.ErrorIs(t, err, ErrMixedAbsolute)

	_, err = RelPath(`c:\a`, `d:\a`, windows)
	assert.True(t, IsIncompatibleRoots(err))

	got, err := RelPath("../x", ".", posix)
	require.NoError(t, err)
	assert.Equal(t, "../x", got.String())

	got, err = RelPath("../../x", "y", posix)
	require.NoError(t, err)
	assert.Equal(t, "../../../x", got.String())

	got, err = RelPath("../x", "../y", posix)
	require.NoError(t, err)
	assert.Equal(t, "../x", got.String())

	_, err = RelPath("x", "../y", posix)
	assert.True(t, IsTooManyParentRefs(err))

	_, err = RelPath("/../x", "/", posix)
	assert.True(t, IsTooManyParentRefs(err))

	_, err = RelPath("a//b", "a", posix)
	assert.True(t, IsMalformed(err))
}
