package pathkit

import "strings"

// Components is the decomposed form of a path. Every field uses the canonical
// separator "/".
//
// For any parsed value Base+Ext == Filename, and
// Protocol+Volume+Dirs+Filename+Query+Fragment reproduces the normalized
// input.
type Components struct {
	// Volume is a drive ("c:") or a UNC share ("//host/share").
	Volume string

	// Protocol is the URL scheme including "://", e.g. "https://".
	Protocol string

	// Host is the authority segment of a URL. It is also the first segment
	// of Dirs.
	Host string

	// Site is Protocol+Host.
	Site string

	// Dirs is the directory part, with a leading "/" when rooted and a
	// trailing "/" when followed by a filename or when the path names a
	// directory.
	Dirs string

	Filename string
	Base     string
	Ext      string

	// Query and Fragment hold the raw "?..." and "#..." suffixes of a URL.
	Query    string
	Fragment string
}

// String renders the components back into a path string.
func (c Components) String() string {
	return c.Protocol + c.Volume + c.Dirs + c.Filename + c.Query + c.Fragment
}

// IsZero reports whether every component is empty.
func (c Components) IsZero() bool {
	return c == Components{}
}

// Params decodes Query into a key/value mapping. Keys without "=" map to "".
func (c Components) Params() map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(strings.TrimPrefix(c.Query, "?"), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		params[key] = value
	}
	return params
}

// Fragments splits Fragment on "&".
func (c Components) Fragments() []string {
	var fragments []string
	for _, f := range strings.Split(strings.TrimPrefix(c.Fragment, "#"), "&") {
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

// tail is the part of the path that operators compare and concatenate.
func (c Components) tail() string {
	return c.Dirs + c.Filename
}

// dirElements splits Dirs into segments, with "/" standing for the root.
func (c Components) dirElements() []string {
	var elems []string
	if strings.HasPrefix(c.Dirs, "/") {
		elems = append(elems, "/")
	}
	if trimmed := strings.Trim(c.Dirs, "/"); trimmed != "" {
		elems = append(elems, strings.Split(trimmed, "/")...)
	}
	return elems
}
