// Package fold implements hide-rule grouping: sidecar files are removed from
// a directory listing and folded beneath the trigger file they belong to,
// which then behaves as an expandable virtual container.
//
// The engine is stateless. Every listing and expansion re-reads the directory
// and applies the rule set it is handed, so results never go stale across
// filesystem changes or configuration reloads.
package fold

import (
	"path/filepath"
	"slices"

	fsutil "github.com/kk-code-lab/rfold/internal/fs"
)

// HideMapItem is one rule matched by one file: the file named
// Base+Trigger folds every sibling named Base+Hidden[i].
type HideMapItem struct {
	Base    string
	Trigger string
	Hidden  []string
	// NonEmpty is set when at least one hidden sibling exists in the listing
	// the item was resolved against.
	NonEmpty bool
}

// Container returns the name of the trigger file.
func (it HideMapItem) Container() string {
	return it.Base + it.Trigger
}

// Hides reports whether name is one of the item's hidden siblings.
func (it HideMapItem) Hides(name string) bool {
	for _, s := range it.Hidden {
		if it.Base+s == name {
			return true
		}
	}
	return false
}

// Entry is one node produced by a listing or an expansion.
type Entry struct {
	Path      string
	Name      string
	Kind      fsutil.Kind
	IsSymlink bool
	// Items holds the rules this file triggers. Directories never carry any.
	Items []HideMapItem
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == fsutil.KindDirectory
}

// Dir returns the directory holding the entry.
func (e Entry) Dir() string {
	return filepath.Dir(e.Path)
}

// Expandable reports whether the entry is a virtual container with something
// to show.
func (e Entry) Expandable() bool {
	return slices.ContainsFunc(e.Items, func(it HideMapItem) bool { return it.NonEmpty })
}
