package pathkit

import (
	"fmt"
	"strings"
)

// The methods in this file mirror the strings package on the rendered path.
// Arguments may use the parser's input separator; it is translated to "/"
// before comparing.

// Len returns the length of the rendered path in bytes.
func (p Path) Len() int {
	return len(p.String())
}

// Contains reports whether sub occurs in p.
func (p Path) Contains(sub string) bool {
	return strings.Contains(p.String(), p.cfg.canonicalize(sub))
}

// Count counts the non-overlapping occurrences of sub in p.
func (p Path) Count(sub string) int {
	return strings.Count(p.String(), p.cfg.canonicalize(sub))
}

// HasPrefix reports whether p begins with prefix.
func (p Path) HasPrefix(prefix string) bool {
	return strings.HasPrefix(p.String(), p.cfg.canonicalize(prefix))
}

// HasSuffix reports whether p ends with suffix.
func (p Path) HasSuffix(suffix string) bool {
	return strings.HasSuffix(p.String(), p.cfg.canonicalize(suffix))
}

// HasAnyPrefix reports whether p begins with any of prefixes.
func (p Path) HasAnyPrefix(prefixes ...string) bool {
	for _, prefix := range prefixes {
		if p.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

// HasAnySuffix reports whether p ends with any of suffixes.
func (p Path) HasAnySuffix(suffixes ...string) bool {
	for _, suffix := range suffixes {
		if p.HasSuffix(suffix) {
			return true
		}
	}
	return false
}

// Index returns the byte offset of the first sub in p, or -1.
func (p Path) Index(sub string) int {
	return strings.Index(p.String(), p.cfg.canonicalize(sub))
}

// IndexOf is like Index but reports a missing sub as ErrSubstringNotFound.
func (p Path) IndexOf(sub string) (int, error) {
	i := p.Index(sub)
	if i < 0 {
		return -1, opError("index", p.String(), sub, ErrSubstringNotFound)
	}
	return i, nil
}

// Replace replaces the first n occurrences of old with repl (all when n < 0)
// and parses the result.
func (p Path) Replace(old, repl string, n int) (Path, error) {
	s := strings.Replace(p.String(), p.cfg.canonicalize(old), p.cfg.canonicalize(repl), n)
	return p.reparse(s)
}

// Trim removes leading and trailing characters in cutset. An empty cutset
// trims white space.
func (p Path) Trim(cutset string) (Path, error) {
	if cutset == "" {
		return p.reparse(strings.TrimSpace(p.String()))
	}
	return p.reparse(strings.Trim(p.String(), p.cfg.canonicalize(cutset)))
}

// TrimLeft removes leading characters in cutset, or leading white space
// when cutset is empty.
func (p Path) TrimLeft(cutset string) (Path, error) {
	if cutset == "" {
		return p.reparse(strings.TrimLeftFunc(p.String(), isSpace))
	}
	return p.reparse(strings.TrimLeft(p.String(), p.cfg.canonicalize(cutset)))
}

// TrimRight removes trailing characters in cutset, or trailing white space
// when cutset is empty.
func (p Path) TrimRight(cutset string) (Path, error) {
	if cutset == "" {
		return p.reparse(strings.TrimRightFunc(p.String(), isSpace))
	}
	return p.reparse(strings.TrimRight(p.String(), p.cfg.canonicalize(cutset)))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

// StripExt removes up to n extensions from the filename. n < 1 removes all
// of them.
func (p Path) StripExt(n int) Path {
	all := n < 1
	for (all || n > 0) && p.c.Ext != "" {
		n--
		p = p.exact(p.c.Protocol + p.c.Volume + p.c.Dirs + p.c.Base + p.c.Query + p.c.Fragment)
	}
	return p
}

// ============================================================================
// Formatting
// ============================================================================

// Sprintf uses the rendered path as a format string for args and parses the
// result.
func (p Path) Sprintf(args ...any) (Path, error) {
	return p.reparse(fmt.Sprintf(p.String(), args...))
}

// FormatTemplate always fails with ErrUnsupportedOperation: template
// substitution has no meaning for a path.
func (p Path) FormatTemplate(args ...any) (Path, error) {
	return Path{}, opError("format", p.String(), "", ErrUnsupportedOperation)
}

// FormatMap always fails with ErrUnsupportedOperation.
func (p Path) FormatMap(values map[string]any) (Path, error) {
	return Path{}, opError("format_map", p.String(), "", ErrUnsupportedOperation)
}
