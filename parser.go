package pathkit

import (
	"strings"
)

// ParseOption configures a PathParser.
type ParseOption func(*parseConfig)

// WithPlatform selects the platform whose volume rules apply.
func WithPlatform(p Platform) ParseOption {
	return func(c *parseConfig) {
		c.platform = p.Resolve()
	}
}

// WithSeparator declares the separator the input was written with, for
// paths authored on another system. It is translated to "/" before parsing.
func WithSeparator(sep byte) ParseOption {
	return func(c *parseConfig) {
		c.separator = sep
	}
}

// KeepTrailingDots disables the removal of trailing dots from the last
// segment, so "name." keeps the extension ".".
func KeepTrailingDots() ParseOption {
	return func(c *parseConfig) {
		c.keepDots = true
	}
}

// parseConfig is the comparable state shared by a PathParser and every Path
// it produces, so that operators reparse results under the same rules.
type parseConfig struct {
	platform  Platform
	separator byte
	keepDots  bool
}

func newParseConfig(opts ...ParseOption) parseConfig {
	cfg := parseConfig{platform: NativePlatform.Resolve()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// inputSeparator is the separator translated to "/" on raw input.
func (c parseConfig) inputSeparator() byte {
	if c.separator != 0 {
		return c.separator
	}
	return c.platform.Resolve().Separator()
}

func (c parseConfig) canonicalize(s string) string {
	if sep := c.inputSeparator(); sep != '/' {
		return strings.ReplaceAll(s, string(sep), "/")
	}
	return s
}

// PathParser splits raw path strings into Components. A PathParser is
// immutable and safe for concurrent use.
type PathParser struct {
	cfg parseConfig
}

// NewParser creates a parser. Without options it follows the running
// platform and its native separator.
func NewParser(opts ...ParseOption) *PathParser {
	return &PathParser{cfg: newParseConfig(opts...)}
}

var defaultParser = NewParser()

// DefaultParser returns the parser used by Parse when no options are given.
func DefaultParser() *PathParser {
	return defaultParser
}

// Platform returns the resolved platform of the parser.
func (p *PathParser) Platform() Platform {
	return p.cfg.platform.Resolve()
}

// Separator returns the separator the parser translates to "/".
func (p *PathParser) Separator() byte {
	return p.cfg.inputSeparator()
}

// Canonicalize replaces the parser's input separator with "/".
func (p *PathParser) Canonicalize(s string) string {
	return p.cfg.canonicalize(s)
}

// Parse decomposes raw into its components. It fails only when the path
// contains an empty interior segment.
func (p *PathParser) Parse(raw string) (Components, error) {
	return p.cfg.parse(raw, false)
}

// Path parses raw into a Path value bound to this parser.
func (p *PathParser) Path(raw string) (Path, error) {
	c, err := p.Parse(raw)
	if err != nil {
		return Path{}, err
	}
	return Path{c: c, cfg: p.cfg}, nil
}

// parse runs the splitter. canonical input already uses "/" and skips
// separator translation.
func (c parseConfig) parse(raw string, canonical bool) (Components, error) {
	var comp Components
	s := raw
	if !canonical {
		s = c.canonicalize(raw)
	}

	var tokens []string
	switch {
	case strings.HasPrefix(s, "//"):
		pieces := strings.Split(s, "/")
		n := min(4, len(pieces))
		comp.Volume = strings.Join(pieces[:n], "/")
		if pieces = pieces[n:]; len(pieces) > 0 {
			tokens = append([]string{""}, pieces...)
		}
	case c.platform.DriveLetters() && hasDriveLetter(s):
		comp.Volume = s[:2]
		tokens = strings.Split(s[2:], "/")
	default:
		if scheme, ok := urlScheme(s); ok {
			return c.parseURL(raw, s, scheme)
		}
		tokens = strings.Split(s, "/")
	}

	if err := c.split(&comp, tokens); err != nil {
		return Components{}, opError("parse", raw, "", err)
	}
	return comp, nil
}

// parseURL handles "scheme://host/...". Query and fragment are cut from the
// original text so separator translation never touches them.
func (c parseConfig) parseURL(raw, s, scheme string) (Components, error) {
	var comp Components
	comp.Protocol = scheme + "://"
	start := len(comp.Protocol)
	rest := s[start:]

	end := len(rest)
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		end = i
		suffix := raw[start+i:]
		if q, f, found := strings.Cut(suffix, "#"); found {
			comp.Query, comp.Fragment = q, "#"+f
		} else {
			comp.Query = suffix
		}
	}

	tokens := strings.Split(rest[:end], "/")
	comp.Host = tokens[0]
	comp.Site = comp.Protocol + comp.Host
	if len(tokens) == 1 {
		comp.Dirs = comp.Host
		return comp, nil
	}
	if err := c.split(&comp, tokens); err != nil {
		return Components{}, opError("parse", raw, "", err)
	}
	return comp, nil
}

// split validates tokens and distributes them over Dirs, Filename, Base and
// Ext.
func (c parseConfig) split(comp *Components, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) > 2 {
		for _, tok := range tokens[1 : len(tokens)-1] {
			if tok == "" {
				return ErrMalformedPath
			}
		}
	}

	last := tokens[len(tokens)-1]
	if !c.keepDots && strings.HasSuffix(last, ".") && strings.Trim(last, ".") != "" {
		last = strings.TrimRight(last, ".")
	}
	if last == "" || last == "." || last == ".." {
		comp.Dirs = strings.Join(tokens, "/")
		return nil
	}

	if len(tokens) > 1 {
		comp.Dirs = strings.Join(tokens[:len(tokens)-1], "/") + "/"
	}
	comp.Filename = last
	if i := strings.LastIndexByte(last, '.'); i >= 0 {
		comp.Base, comp.Ext = last[:i], last[i:]
	} else {
		comp.Base = last
	}
	return nil
}

func hasDriveLetter(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	ch := s[0]
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// urlScheme returns the scheme of s when s starts with "scheme://". Single
// letter schemes are left alone so they never shadow drive letters.
func urlScheme(s string) (string, bool) {
	i := strings.Index(s, "://")
	if i < 2 {
		return "", false
	}
	scheme := s[:i]
	for j := 0; j < len(scheme); j++ {
		ch := scheme[j]
		switch {
		case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z':
		case j > 0 && ('0' <= ch && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		default:
			return "", false
		}
	}
	return scheme, true
}
