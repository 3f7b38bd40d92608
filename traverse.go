package pathkit

import (
	"iter"
	"slices"
)

// element is one piece of a path decomposition. Segments are separated by
// "/" when rendered; heads (protocol, volume, root) are glued as is.
type element struct {
	text    string
	segment bool
}

func (p Path) decompose() []element {
	var elems []element
	if p.c.Protocol != "" {
		elems = append(elems, element{text: p.c.Protocol})
	}
	if p.c.Volume != "" {
		elems = append(elems, element{text: p.c.Volume})
	}
	for _, d := range p.c.dirElements() {
		elems = append(elems, element{text: d, segment: d != "/"})
	}
	if p.c.Filename != "" {
		elems = append(elems, element{text: p.c.Filename, segment: true})
	}
	return elems
}

// prefixes renders every leading run of the decomposition, shortest first.
func (p Path) prefixes() []Path {
	elems := p.decompose()
	result := make([]Path, 0, len(elems))
	var (
		rendered string
		glue     bool
	)
	for _, e := range elems {
		if e.segment && glue {
			rendered += "/"
		}
		rendered += e.text
		glue = e.segment
		result = append(result, p.exact(rendered))
	}
	return result
}

// Elements returns the path split into single-element paths: protocol,
// volume, root and each directory, then the filename.
func (p Path) Elements() []Path {
	elems := p.decompose()
	result := make([]Path, len(elems))
	for i, e := range elems {
		result[i] = p.exact(e.text)
	}
	return result
}

// DirElements is like Elements but without protocol, volume and filename.
func (p Path) DirElements() []Path {
	dirs := p.c.dirElements()
	result := make([]Path, len(dirs))
	for i, d := range dirs {
		result[i] = p.exact(d)
	}
	return result
}

// Ascend yields p and then each shorter prefix of p, ending with its first
// element (the root, for rooted paths). The sequence is recomputed on every
// iteration.
func (p Path) Ascend() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		prefixes := p.prefixes()
		for _, prefix := range slices.Backward(prefixes) {
			if !yield(prefix) {
				return
			}
		}
	}
}

// Descend yields the prefixes of p from its first element down to p itself.
func (p Path) Descend() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		for _, prefix := range p.prefixes() {
			if !yield(prefix) {
				return
			}
		}
	}
}
