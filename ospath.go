package pathkit

import (
	"slices"
	"strings"
)

// Helpers with the semantics of the host platform's lexical path functions,
// computed on parsed values.

// Basename returns the text after the last separator. A path ending in a
// separator has an empty basename.
func (p Path) Basename() string {
	tail := p.c.tail()
	return tail[strings.LastIndexByte(tail, '/')+1:]
}

// Dirname returns everything before the last separator, without trailing
// separators unless the directory is the root.
func (p Path) Dirname() string {
	tail := p.c.tail()
	head := tail[:strings.LastIndexByte(tail, '/')+1]
	if strings.Trim(head, "/") != "" {
		head = strings.TrimRight(head, "/")
	}
	return p.c.Protocol + p.c.Volume + head
}

// IsAbs reports whether p does not depend on a current directory.
func (p Path) IsAbs() bool {
	return p.IsURL() || strings.HasPrefix(p.c.Volume, "//") || p.IsRooted()
}

// SplitExt returns p without its extension, and the extension.
func (p Path) SplitExt() (Path, string) {
	return p.StripExt(1), p.c.Ext
}

// SplitDrive returns the volume and the remainder of p.
func (p Path) SplitDrive() (string, Path) {
	rest := p.c
	rest.Volume = ""
	return p.c.Volume, Path{c: rest, cfg: p.cfg}
}

// CommonPrefix returns the longest common leading string of the rendered
// paths. The result need not end on a separator.
func CommonPrefix(paths ...Path) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := paths[0].String()
	for _, p := range paths[1:] {
		s := p.String()
		n := min(len(prefix), len(s))
		i := 0
		for i < n && prefix[i] == s[i] {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix
}

// CommonPath returns the longest common sub-path of paths. All paths must
// share volume, protocol and absoluteness.
func CommonPath(paths ...Path) (Path, error) {
	if len(paths) == 0 {
		return Path{}, opError("commonpath", "", "", ErrEmptyPathList)
	}
	first := paths[0]
	common, err := first.normalized()
	if err != nil {
		return Path{}, err
	}
	for _, p := range paths[1:] {
		if p.IsAbs() != first.IsAbs() {
			return Path{}, opError("commonpath", first.String(), p.String(), ErrMixedAbsolute)
		}
		if p.c.Volume != first.c.Volume || p.c.Protocol != first.c.Protocol {
			return Path{}, opError("commonpath", first.String(), p.String(), ErrIncompatibleRoots)
		}
		segs, err := p.normalized()
		if err != nil {
			return Path{}, err
		}
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
	}
	return first.exact(first.rootPrefix() + strings.Join(common, "/")), nil
}

// RelPath returns target relative to start. Both are parsed with the default
// parser unless options are given.
func RelPath(target, start string, opts ...ParseOption) (Path, error) {
	t, err := Parse(target, opts...)
	if err != nil {
		return Path{}, err
	}
	s, err := Parse(start, opts...)
	if err != nil {
		return Path{}, err
	}
	return t.RelTo(s)
}

// RelTo returns the path that leads from start to p, using ".." where p is
// outside start. The result is "." when both name the same location.
func (p Path) RelTo(start Path) (Path, error) {
	if p.IsAbs() != start.IsAbs() {
		return Path{}, opError("relpath", p.String(), start.String(), ErrMixedAbsolute)
	}
	if p.c.Volume != start.c.Volume || p.c.Protocol != start.c.Protocol {
		return Path{}, opError("relpath", p.String(), start.String(), ErrIncompatibleRoots)
	}
	target, err := p.normalized()
	if err != nil {
		return Path{}, err
	}
	base, err := start.normalized()
	if err != nil {
		return Path{}, err
	}
	n := 0
	for n < len(target) && n < len(base) && target[n] == base[n] {
		n++
	}
	if slices.Contains(base[n:], "..") {
		// start climbs above anything target names; only the working
		// directory could tell where that is.
		return Path{}, opError("relpath", p.String(), start.String(), ErrTooManyParentRefs)
	}
	rel := slices.Repeat([]string{".."}, len(base)-n)
	rel = append(rel, target[n:]...)
	if len(rel) == 0 {
		return p.exact("."), nil
	}
	return p.exact(strings.Join(rel, "/")), nil
}

// normalized returns the directory and filename segments of p with "." and
// ".." resolved. The root, volume and protocol are not included. Leading ".."
// segments of a relative path are kept.
func (p Path) normalized() ([]string, error) {
	var segs []string
	for _, d := range p.c.dirElements() {
		switch d {
		case "/", ".":
		case "..":
			if len(segs) == 0 || segs[len(segs)-1] == ".." {
				if p.IsAbs() {
					return nil, opError("normalize", p.String(), "", ErrTooManyParentRefs)
				}
				segs = append(segs, "..")
				continue
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, d)
		}
	}
	if p.c.Filename != "" {
		segs = append(segs, p.c.Filename)
	}
	return segs, nil
}

// rootPrefix is the protocol, volume and root marker of p.
func (p Path) rootPrefix() string {
	prefix := p.c.Protocol + p.c.Volume
	if p.IsRooted() {
		prefix += "/"
	}
	return prefix
}
