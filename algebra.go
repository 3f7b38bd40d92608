package pathkit

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ============================================================================
// Join (/)
// ============================================================================

// Join attaches other beneath p. It is plain concatenation with a single
// separator between the operands; "." and ".." are kept as written.
//
// Joining a path that carries a volume or protocol onto a non-empty path
// fails with ErrIncompatibleRoots. Joining onto the empty path returns other.
func (p Path) Join(other Path) (Path, error) {
	if p.IsEmpty() {
		return other, nil
	}
	if other.c.Volume != "" || other.c.Protocol != "" {
		return Path{}, opError("join", p.String(), other.String(), ErrIncompatibleRoots)
	}
	current := strings.TrimSuffix(p.c.Protocol+p.c.Volume+p.c.tail(), "/")
	next := strings.TrimPrefix(other.c.tail(), "/")
	return p.reparse(current + "/" + next + other.c.Query + other.c.Fragment)
}

// JoinString parses s under p's rules and joins it onto p.
func (p Path) JoinString(s string) (Path, error) {
	other, err := p.parseOperand(s)
	if err != nil {
		return Path{}, err
	}
	return p.Join(other)
}

// MustJoin is like JoinString but panics on error.
func (p Path) MustJoin(parts ...string) Path {
	result := p
	for _, part := range parts {
		var err error
		if result, err = result.JoinString(part); err != nil {
			logrus.Panicf("cannot join %q onto %q: %s", part, p, err)
		}
	}
	return result
}

// JoinAll parses every part with the default parser and joins them left to
// right.
func JoinAll(parts ...string) (Path, error) {
	var result Path
	for _, part := range parts {
		next, err := Parse(part)
		if err != nil {
			return Path{}, err
		}
		if result, err = result.Join(next); err != nil {
			return Path{}, err
		}
	}
	return result, nil
}

// ============================================================================
// Fuse (*)
// ============================================================================

// Fuse joins other onto p and collapses "." and ".." the way a shell "cd"
// would. A volume or protocol on other replaces p's root and discards p's
// directories; a rooted other discards p's directories. The base names and
// extensions of both operands are concatenated, so fusing "a.tar" with ".gz"
// yields "a.tar.gz".
//
// For URLs the host acts as the root: ".." never removes it, and a rooted
// other replaces everything after it.
//
// A ".." with nothing left to remove fails with ErrTooManyParentRefs.
func (p Path) Fuse(other Path) (Path, error) {
	var (
		protocol, volume, host string
		current                []string
	)
	if other.c.Volume != "" || other.c.Protocol != "" {
		protocol, volume, host = other.c.Protocol, other.c.Volume, other.c.Host
	} else {
		protocol, volume, host = p.c.Protocol, p.c.Volume, p.c.Host
		current = p.c.dirElements()
		if p.c.Protocol != "" && len(current) > 0 {
			current = current[1:]
		}
	}
	next := other.c.dirElements()
	if other.c.Protocol != "" && len(next) > 0 {
		next = next[1:]
	}
	if len(next) > 0 && next[0] == "/" {
		current = nil
		if protocol != "" {
			next = next[1:]
		}
	}

	stack := make([]string, 0, len(current)+len(next))
	for _, elem := range append(current, next...) {
		switch elem {
		case ".":
		case "..":
			if len(stack) == 0 || stack[len(stack)-1] == "/" || stack[len(stack)-1] == "" {
				return Path{}, opError("fuse", p.String(), other.String(), ErrTooManyParentRefs)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, elem)
		}
	}
	if len(stack) > 1 && stack[0] == "/" {
		stack[0] = ""
	}

	dirs := strings.Join(stack, "/")
	if dirs != "" && !strings.HasSuffix(dirs, "/") {
		dirs += "/"
	}
	switch {
	case protocol != "":
		dirs = host + "/" + dirs
	case strings.HasPrefix(volume, "//") && !strings.HasPrefix(dirs, "/"):
		dirs = "/" + dirs
	}

	query, fragment := p.c.Query, p.c.Fragment
	if other.c.Query != "" || other.c.Fragment != "" {
		query, fragment = other.c.Query, other.c.Fragment
	}
	return p.reparse(protocol + volume + dirs + p.c.Base + other.c.Base + p.c.Ext + other.c.Ext + query + fragment)
}

// FuseString parses s under p's rules and fuses it onto p.
func (p Path) FuseString(s string) (Path, error) {
	other, err := p.parseOperand(s)
	if err != nil {
		return Path{}, err
	}
	return p.Fuse(other)
}

// Clean collapses "." and ".." in p. It is p fused with ".".
func (p Path) Clean() (Path, error) {
	return p.Fuse(p.exact("."))
}

// ============================================================================
// Subtract (-)
// ============================================================================

// Subtract removes other from the front of p and returns the remainder
// without volume or protocol. The comparison is a plain string prefix test
// on the directory and filename parts, so "/temp/backups" minus "/temp"
// leaves "/backups" while minus "/temp/" leaves "backups".
//
// Subtracting the empty path returns p. Differing volumes or protocols fail
// with ErrIncompatibleRoots; a non-prefix fails with ErrNotAPrefix.
func (p Path) Subtract(other Path) (Path, error) {
	if other.IsEmpty() {
		return p, nil
	}
	if other.c.Volume != p.c.Volume || other.c.Protocol != p.c.Protocol {
		return Path{}, opError("subtract", p.String(), other.String(), ErrIncompatibleRoots)
	}
	s, o := p.c.tail(), other.c.tail()
	if !strings.HasPrefix(s, o) {
		return Path{}, opError("subtract", p.String(), other.String(), ErrNotAPrefix)
	}
	return p.reparse(s[len(o):])
}

// SubtractString parses s under p's rules and subtracts it from p.
func (p Path) SubtractString(s string) (Path, error) {
	other, err := p.parseOperand(s)
	if err != nil {
		return Path{}, err
	}
	return p.Subtract(other)
}

// ============================================================================
// Concatenation (+)
// ============================================================================

// Add appends the raw string s to the rendered path and parses the result.
func (p Path) Add(s string) (Path, error) {
	return p.reparse(p.String() + p.cfg.canonicalize(s))
}

// Prepend places the raw string s in front of the rendered path and parses
// the result.
func (p Path) Prepend(s string) (Path, error) {
	return p.reparse(p.cfg.canonicalize(s) + p.String())
}
