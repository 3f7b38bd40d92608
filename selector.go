package pathkit

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
)

// ============================================================================
// FileSelector Interface
// ============================================================================

// FileSelector filters the entries visited by ListWithSelector.
//
//	files, err := pathkit.ListWithSelector(ctx, fsys, pathkit.MustParse("/images/"),
//	    pathkit.And(pathkit.Ext(".jpg", ".png"), pathkit.Depth(2)), true)
type FileSelector interface {
	// Match reports whether the file belongs in the result.
	Match(file *Entry) bool

	// TraverseDescendants reports whether the directory should be entered.
	// Only called for directories.
	TraverseDescendants(dir *Entry) bool
}

// Entry is a listed file: its metadata and its parsed path.
type Entry struct {
	FileInfo
	Path  Path
	Depth int
}

// ListWithSelector lists the files below dir accepted by selector. With
// recursive set, directories the selector allows are entered.
func ListWithSelector(ctx context.Context, fsys FileSystem, dir Path, selector FileSelector, recursive bool) ([]Entry, error) {
	if selector == nil {
		selector = All()
	}
	var results []Entry
	if err := listRecursive(ctx, fsys, dir, 1, selector, recursive, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func listRecursive(ctx context.Context, fsys FileSystem, dir Path, depth int, selector FileSelector, recursive bool, results *[]Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	infos, err := fsys.ListContents(ctx, dir.Native(), false)
	if err != nil {
		return err
	}

	for _, info := range infos {
		name := info.Name
		if info.IsDir {
			name += "/"
		}
		p, err := dir.JoinString(name)
		if err != nil {
			return err
		}
		entry := Entry{FileInfo: info, Path: p, Depth: depth}

		if info.IsDir {
			if recursive && selector.TraverseDescendants(&entry) {
				if err := listRecursive(ctx, fsys, p, depth+1, selector, recursive, results); err != nil {
					return err
				}
			}
			continue
		}
		if selector.Match(&entry) {
			*results = append(*results, entry)
		}
	}
	return nil
}

// ============================================================================
// Built-in Selectors
// ============================================================================

type allSelector struct{}

func (allSelector) Match(*Entry) bool               { return true }
func (allSelector) TraverseDescendants(*Entry) bool { return true }

// All matches every file and enters every directory.
func All() FileSelector {
	return allSelector{}
}

type globSelector struct {
	g        glob.Glob
	fullPath bool
}

// GlobSelector matches files by pattern. A pattern containing "/" is matched
// against the whole path, otherwise against the filename. An invalid pattern
// matches nothing.
//
//	GlobSelector("*.txt")
//	GlobSelector("/logs/**/*.{log,gz}")
func GlobSelector(pattern string) FileSelector {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return FuncSelector(func(*Entry) bool { return false })
	}
	return &globSelector{g: g, fullPath: strings.Contains(pattern, "/")}
}

func (s *globSelector) Match(file *Entry) bool {
	if s.fullPath {
		return s.g.Match(file.Path.String())
	}
	return s.g.Match(file.Path.Filename())
}

func (s *globSelector) TraverseDescendants(*Entry) bool { return true }

type extSelector struct {
	exts []string
}

// Ext matches files whose extension is one of exts, ignoring case.
func Ext(exts ...string) FileSelector {
	return &extSelector{exts: exts}
}

func (s *extSelector) Match(file *Entry) bool {
	for _, ext := range s.exts {
		if strings.EqualFold(file.Path.Ext(), ext) {
			return true
		}
	}
	return false
}

func (s *extSelector) TraverseDescendants(*Entry) bool { return true }

type depthSelector struct {
	maxDepth int
}

// Depth limits results to maxDepth levels below the listed directory.
// Depth 1 = immediate children only.
func Depth(maxDepth int) FileSelector {
	return &depthSelector{maxDepth: maxDepth}
}

func (s *depthSelector) Match(file *Entry) bool {
	return file.Depth <= s.maxDepth
}

func (s *depthSelector) TraverseDescendants(dir *Entry) bool {
	return dir.Depth < s.maxDepth
}

// ============================================================================
// Composable Selectors (And, Or, Not)
// ============================================================================

type andSelector struct {
	selectors []FileSelector
}

// And matches only if all selectors match, and enters a directory only if
// all selectors allow it.
func And(selectors ...FileSelector) FileSelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(file *Entry) bool {
	for _, sel := range s.selectors {
		if !sel.Match(file) {
			return false
		}
	}
	return true
}

func (s *andSelector) TraverseDescendants(dir *Entry) bool {
	for _, sel := range s.selectors {
		if !sel.TraverseDescendants(dir) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []FileSelector
}

// Or matches if any selector matches.
func Or(selectors ...FileSelector) FileSelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(file *Entry) bool {
	for _, sel := range s.selectors {
		if sel.Match(file) {
			return true
		}
	}
	return false
}

func (s *orSelector) TraverseDescendants(dir *Entry) bool {
	for _, sel := range s.selectors {
		if sel.TraverseDescendants(dir) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector FileSelector
}

// Not inverts a selector's match result. Traversal is unaffected.
func Not(selector FileSelector) FileSelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(file *Entry) bool            { return !s.selector.Match(file) }
func (s *notSelector) TraverseDescendants(*Entry) bool { return true }

type funcSelector struct {
	matchFn    func(*Entry) bool
	traverseFn func(*Entry) bool
}

// FuncSelector creates a selector from a match function. Every directory is
// entered.
func FuncSelector(fn func(*Entry) bool) FileSelector {
	return &funcSelector{
		matchFn:    fn,
		traverseFn: func(*Entry) bool { return true },
	}
}

// FuncSelectorFull creates a selector with custom match and traverse functions.
func FuncSelectorFull(matchFn, traverseFn func(*Entry) bool) FileSelector {
	return &funcSelector{matchFn: matchFn, traverseFn: traverseFn}
}

func (s *funcSelector) Match(file *Entry) bool              { return s.matchFn(file) }
func (s *funcSelector) TraverseDescendants(dir *Entry) bool { return s.traverseFn(dir) }
