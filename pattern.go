package pathkit

import (
	"strings"

	"github.com/gobwas/glob"
)

// PathOrPattern is either a glob pattern string or an already parsed Path.
// Operations that act on many files take a PathOrPattern so the caller states
// which of the two was meant; a Path is never glob-expanded.
type PathOrPattern struct {
	pattern string
	value   Path
	literal bool
}

// Literal wraps a glob pattern. "*" and "?" stay within one segment, "**"
// crosses segments, and "[...]" and "{a,b}" are supported.
func Literal(pattern string) PathOrPattern {
	return PathOrPattern{pattern: pattern, literal: true}
}

// Value wraps a parsed Path.
func Value(p Path) PathOrPattern {
	return PathOrPattern{value: p}
}

// IsLiteral reports whether pp was built with Literal.
func (pp PathOrPattern) IsLiteral() bool {
	return pp.literal
}

// IsPattern reports whether pp is a literal containing glob syntax.
func (pp PathOrPattern) IsPattern() bool {
	return pp.literal && hasMeta(pp.pattern)
}

func (pp PathOrPattern) String() string {
	if pp.literal {
		return pp.pattern
	}
	return pp.value.String()
}

// Path returns the wrapped Path, or parses the literal text.
func (pp PathOrPattern) Path(opts ...ParseOption) (Path, error) {
	if !pp.literal {
		return pp.value, nil
	}
	return Parse(pp.pattern, opts...)
}

// Compile builds a matcher for canonical path strings using parser to
// translate separators. A Path compiles to an exact match.
func (pp PathOrPattern) Compile(parser *PathParser) (glob.Glob, error) {
	if parser == nil {
		parser = defaultParser
	}
	if !pp.literal {
		return glob.Compile(glob.QuoteMeta(pp.value.String()), '/')
	}
	g, err := glob.Compile(parser.Canonicalize(pp.pattern), '/')
	if err != nil {
		return nil, opError("glob", pp.pattern, "", err)
	}
	return g, nil
}

// Matches reports whether p matches pp.
func (pp PathOrPattern) Matches(p Path) (bool, error) {
	g, err := pp.Compile(p.Parser())
	if err != nil {
		return false, err
	}
	return g.Match(p.String()), nil
}

// Root returns the longest leading directory of the pattern that contains no
// glob syntax, along with whether the remainder can match below one level.
func (pp PathOrPattern) Root(parser *PathParser) (Path, bool, error) {
	if parser == nil {
		parser = defaultParser
	}
	if !pp.literal {
		return pp.value.Parent(), false, nil
	}
	pattern := parser.Canonicalize(pp.pattern)
	i := strings.IndexAny(pattern, globMeta)
	if i < 0 {
		p, err := parser.Path(pattern)
		return p.Parent(), false, err
	}
	dir := pattern[:strings.LastIndexByte(pattern[:i], '/')+1]
	deep := strings.Contains(pattern[len(dir):], "/") || strings.Contains(pattern, "**")
	p, err := parser.Path(dir)
	return p, deep, err
}

const globMeta = "*?[{"

func hasMeta(s string) bool {
	return strings.ContainsAny(s, globMeta)
}
