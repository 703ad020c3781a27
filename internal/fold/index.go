package fold

import (
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"github.com/kk-code-lab/rfold/internal/rules"
)

// dirIndex is the resolved hide map of one directory snapshot.
type dirIndex struct {
	entries []fsutil.Entry // sorted
	items   []HideMapItem
	// byFile maps a file name to the indexes of the items it triggers.
	byFile map[string][]int
	// hiddenBy maps a file name to the indexes of the non-empty items hiding it.
	hiddenBy map[string][]int
}

func newDirIndex(entries []fsutil.Entry, set *rules.Set) *dirIndex {
	files := make([]string, 0, len(entries))
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, e.Name)
		names[e.Name] = true
	}

	idx := &dirIndex{
		entries:  entries,
		items:    BuildHideMap(files, set),
		byFile:   make(map[string][]int),
		hiddenBy: make(map[string][]int),
	}
	Resolve(idx.items, names)

	for i, it := range idx.items {
		idx.byFile[it.Container()] = append(idx.byFile[it.Container()], i)
		if !it.NonEmpty {
			continue
		}
		for _, s := range it.Hidden {
			name := it.Base + s
			if names[name] {
				idx.hiddenBy[name] = append(idx.hiddenBy[name], i)
			}
		}
	}
	return idx
}

// itemsOf returns copies of the items triggered by name.
func (idx *dirIndex) itemsOf(name string) []HideMapItem {
	ids := idx.byFile[name]
	if len(ids) == 0 {
		return nil
	}
	out := make([]HideMapItem, len(ids))
	for i, id := range ids {
		out[i] = idx.items[id]
	}
	return out
}

// suppressed returns the files that are folded away from the top level.
//
// A file is suppressed when a visible container reaches it through non-empty
// items, directly or through other suppressed containers. Files hidden only
// by each other (x.a hides x.b, x.b hides x.a) would otherwise disappear
// altogether; the first of them in listing order stays visible and anchors
// the rest.
func (idx *dirIndex) suppressed() map[string]bool {
	edges := make(map[string][]string)
	for _, it := range idx.items {
		if !it.NonEmpty {
			continue
		}
		from := it.Container()
		for _, s := range it.Hidden {
			to := it.Base + s
			if len(idx.hiddenBy[to]) > 0 {
				edges[from] = append(edges[from], to)
			}
		}
	}

	out := make(map[string]bool, len(idx.hiddenBy))
	visited := make(map[string]bool)
	walk := func(root string) {
		visited[root] = true
		queue := []string{root}
		for len(queue) > 0 {
			name := queue[0]
			queue = queue[1:]
			for _, next := range edges[name] {
				if visited[next] {
					continue
				}
				visited[next] = true
				out[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, e := range idx.entries {
		if !e.IsDir() && len(idx.hiddenBy[e.Name]) == 0 {
			walk(e.Name)
		}
	}
	for _, e := range idx.entries {
		if !e.IsDir() && !visited[e.Name] {
			walk(e.Name)
		}
	}
	return out
}
