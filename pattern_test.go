package pathkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathOrPatternKinds(t *testing.T) {
	lit := Literal("/data/*.csv")
	assert.True(t, lit.IsLiteral())
	assert.True(t, lit.IsPattern())
	assert.Equal(t, "/data/*.csv", lit.String())

	plain := Literal("/data/file.csv")
	assert.True(t, plain.IsLiteral())
	assert.False(t, plain.IsPattern())

	val := Value(MustParse("/data/[draft].csv", posix))
	assert.False(t, val.IsLiteral())
	assert.False(t, val.IsPattern())
	assert.Equal(t, "/data/[draft].csv", val.String())
}

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/data/*.csv", "/data/x.csv", true},
		{"/data/*.csv", "/data/sub/x.csv", false},
		{"/data/**/*.csv", "/data/a/b/x.csv", true},
		{"/data/?.csv", "/data/ab.csv", false},
		{"/data/{a,b}.csv", "/data/b.csv", true},
		{"/data/[xy].csv", "/data/y.csv", true},
	}
	for _, tt := range tests {
		got, err := Literal(tt.pattern).Matches(MustParse(tt.path, posix))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%q matches %q", tt.pattern, tt.path)
	}
}

func TestMatchesWindowsPattern(t *testing.T) {
	ok, err := Literal(`c:\logs\*.log`).Matches(MustParse(`c:\logs\app.log`, windows))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValueMatchesExactly(t *testing.T) {
	p := MustParse("/data/[draft].csv", posix)
	ok, err := Value(p).Matches(p)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Value(p).Matches(MustParse("/data/d.csv", posix))
	require.NoError(t, err)
	assert.False(t, ok, "a Path is never glob expanded")
}

func TestCompileInvalid(t *testing.T) {
	_, err := Literal("/data/[").Compile(NewParser(posix))
	assert.Error(t, err)
}

func TestRoot(t *testing.T) {
	parser := NewParser(posix)
	tests := []struct {
		pattern string
		root    string
		deep    bool
	}{
		{"/data/reports/*.csv", "/data/reports/", false},
		{"/data/**/*.csv", "/data/", true},
		{"/data/*/summary.txt", "/data/", true},
		{"/data/file.txt", "/data/", false},
		{"*.txt", "", false},
	}
	for _, tt := range tests {
		root, deep, err := Literal(tt.pattern).Root(parser)
		require.NoError(t, err)
		assert.Equal(t, tt.root, root.String(), "Root(%q)", tt.pattern)
		assert.Equal(t, tt.deep, deep, "Root(%q) deep", tt.pattern)
	}

	root, deep, err := Value(MustParse("/srv/a.txt", posix)).Root(parser)
	require.NoError(t, err)
	assert.Equal(t, "/srv/", root.String())
	assert.False(t, deep)
}

func TestLiteralPath(t *testing.T) {
	p, err := Literal(`c:\x\y.txt`).Path(windows)
	require.NoError(t, err)
	assert.Equal(t, "c:", p.Volume())
}
