package pathkit

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// Path is an immutable, parsed path string. The zero value is the empty path.
//
// A Path renders with the canonical separator "/"; use Native to obtain the
// form expected by the operating system.
type Path struct {
	c   Components
	cfg parseConfig
}

// Parse parses s into a Path.
func Parse(s string, opts ...ParseOption) (Path, error) {
	if len(opts) == 0 {
		return defaultParser.Path(s)
	}
	return NewParser(opts...).Path(s)
}

// MustParse is like Parse but panics if s is malformed.
func MustParse(s string, opts ...ParseOption) Path {
	p, err := Parse(s, opts...)
	if err != nil {
		logrus.Panicf("cannot parse %q: %s", s, err)
	}
	return p
}

// ParseBytes parses a byte slice holding a path.
func ParseBytes(b []byte, opts ...ParseOption) (Path, error) {
	return Parse(string(b), opts...)
}

// Of converts v into a Path. A Path is returned unchanged; strings and byte
// slices are parsed.
func Of(v any, opts ...ParseOption) (Path, error) {
	switch v := v.(type) {
	case Path:
		return v, nil
	case *Path:
		return *v, nil
	case string:
		return Parse(v, opts...)
	case []byte:
		return ParseBytes(v, opts...)
	case PathOrPattern:
		return v.Path(opts...)
	case fmt.Stringer:
		return Parse(v.String(), opts...)
	}
	return Path{}, opError("of", fmt.Sprintf("%T", v), "", ErrUnsupportedOperation)
}

// reparse materializes an operator result under the receiver's rules.
func (p Path) reparse(s string) (Path, error) {
	c, err := p.cfg.parse(s, true)
	if err != nil {
		return Path{}, err
	}
	return Path{c: c, cfg: p.cfg}, nil
}

// parseOperand parses a raw user string under the receiver's rules.
func (p Path) parseOperand(s string) (Path, error) {
	c, err := p.cfg.parse(s, false)
	if err != nil {
		return Path{}, err
	}
	return Path{c: c, cfg: p.cfg}, nil
}

// exact reparses s without trailing-dot removal. It is used for values that
// are already known to be well formed.
func (p Path) exact(s string) Path {
	cfg := p.cfg
	cfg.keepDots = true
	c, err := cfg.parse(s, true)
	if err != nil {
		logrus.Panicf("pathkit: inconsistent components for %q: %s", s, err)
	}
	return Path{c: c, cfg: p.cfg}
}

// String returns the path with the canonical "/" separator.
func (p Path) String() string {
	return p.c.String()
}

// Bytes returns the canonical rendering as a byte slice.
func (p Path) Bytes() []byte {
	return []byte(p.String())
}

// Native returns the path with separators translated for the platform the
// path was parsed under. URLs are returned unchanged.
func (p Path) Native() string {
	return p.NativeFor(p.cfg.platform)
}

// NativeFor returns the path with separators translated for platform.
func (p Path) NativeFor(platform Platform) string {
	sep := platform.Resolve().Separator()
	if sep == '/' || p.IsURL() {
		return p.String()
	}
	return strings.ReplaceAll(p.String(), "/", string(sep))
}

// Platform returns the platform whose rules produced p.
func (p Path) Platform() Platform {
	return p.cfg.platform.Resolve()
}

// Parser returns a parser with the same rules as p.
func (p Path) Parser() *PathParser {
	return &PathParser{cfg: p.cfg}
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return p.Bytes(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the default parser.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParseBytes(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Components returns a copy of the decomposed path.
func (p Path) Components() Components { return p.c }

// Volume returns the drive ("c:") or UNC share ("//host/share").
func (p Path) Volume() string { return p.c.Volume }

// Dirs returns the directory part, including the root separator.
func (p Path) Dirs() string { return p.c.Dirs }

// Filename returns the last segment when it names a file.
func (p Path) Filename() string { return p.c.Filename }

// Base returns the filename without its extension.
func (p Path) Base() string { return p.c.Base }

// Ext returns the last extension, including the dot.
func (p Path) Ext() string { return p.c.Ext }

// Protocol returns the URL scheme with "://".
func (p Path) Protocol() string { return p.c.Protocol }

// Host returns the authority of a URL.
func (p Path) Host() string { return p.c.Host }

// Site returns Protocol followed by Host.
func (p Path) Site() string { return p.c.Site }

// Query returns the raw query, including "?".
func (p Path) Query() string { return p.c.Query }

// Fragment returns the raw fragment, including "#".
func (p Path) Fragment() string { return p.c.Fragment }

// Scheme returns the protocol without the trailing "://".
func (p Path) Scheme() string {
	return strings.TrimSuffix(p.c.Protocol, "://")
}

// Params returns the decoded query parameters of a URL path.
func (p Path) Params() map[string]string {
	return p.c.Params()
}

// Fragments returns the "&" separated fragment tokens of a URL path.
func (p Path) Fragments() []string {
	return p.c.Fragments()
}

// Parent returns the path without its filename: protocol, volume and
// directories.
func (p Path) Parent() Path {
	return Path{
		c: Components{
			Volume:   p.c.Volume,
			Protocol: p.c.Protocol,
			Host:     p.c.Host,
			Site:     p.c.Site,
			Dirs:     p.c.Dirs,
		},
		cfg: p.cfg,
	}
}

// IsEmpty reports whether p is the empty path.
func (p Path) IsEmpty() bool {
	return p.c.IsZero()
}

// IsURL reports whether p was parsed as "scheme://...".
func (p Path) IsURL() bool {
	return p.c.Protocol != ""
}

// IsRooted reports whether the directory part starts at a root.
func (p Path) IsRooted() bool {
	return strings.HasPrefix(p.c.Dirs, "/")
}

// IsDir reports whether p names a directory lexically: it has no filename.
func (p Path) IsDir() bool {
	return p.c.Filename == "" && !p.IsEmpty()
}

// Equal reports whether both paths render identically.
func (p Path) Equal(other Path) bool {
	return p.String() == other.String()
}

// EqualString parses s under p's rules and compares the result with p.
// Malformed strings are never equal.
func (p Path) EqualString(s string) bool {
	other, err := p.parseOperand(s)
	if err != nil {
		return false
	}
	return p.Equal(other)
}

// Hash returns a hash of the rendered path, consistent with Equal.
func (p Path) Hash() uint64 {
	return xxhash.Sum64String(p.String())
}
