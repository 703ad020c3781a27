package fold

import (
	"context"
	"fmt"
	"path/filepath"

	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"github.com/kk-code-lab/rfold/internal/rules"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Engine computes folded listings over a directory listing capability.
type Engine struct {
	lister fsutil.Lister
	locale language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocale selects the collation used to order names.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// NewEngine creates an Engine reading directories through lister. Names are
// ordered with the undetermined (root) collation unless WithLocale is given.
func NewEngine(lister fsutil.Lister, opts ...Option) *Engine {
	e := &Engine{lister: lister, locale: language.Und}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// read lists dir in sorted order. A *fsutil.PartialError is returned
// together with the surviving entries.
func (e *Engine) read(ctx context.Context, dir string) ([]fsutil.Entry, error) {
	entries, err := e.lister.List(ctx, dir)
	if err != nil && !fsutil.IsPartial(err) {
		return nil, err
	}
	sortListing(entries, e.locale)
	return entries, err
}

// BuildListing returns the folded contents of dir: directories first, then
// files, with every file hidden beneath a non-empty container left out.
// Files that trigger rules carry those rules as Items, whether or not they
// are non-empty.
//
// When some children could not be read, the remaining entries are returned
// together with a *fsutil.PartialError.
func (e *Engine) BuildListing(ctx context.Context, set *rules.Set, dir string) ([]Entry, error) {
	entries, partial := e.read(ctx, dir)
	if partial != nil && !fsutil.IsPartial(partial) {
		return nil, partial
	}

	idx := newDirIndex(entries, set)
	suppressed := idx.suppressed()

	out := make([]Entry, 0, len(entries))
	for _, fe := range entries {
		if fe.IsDir() {
			out = append(out, newEntry(fe, nil))
			continue
		}
		if suppressed[fe.Name] {
			continue
		}
		out = append(out, newEntry(fe, idx.itemsOf(fe.Name)))
	}

	zerolog.Ctx(ctx).Debug().
		Str("dir", dir).
		Int("read", len(entries)).
		Int("folded", len(entries)-len(out)).
		Msg("listing built")
	return out, partial
}

// Expand returns the children of a virtual container: the siblings matched by
// the container's non-empty rules, in listing order, each at most once.
//
// The parent directory is re-read and the container's rules re-derived from
// it; the Items carried by container are not trusted. Siblings that are
// themselves containers carry their own Items and can be expanded in turn.
// Siblings they hide are not listed here but beneath them.
//
// When the same sibling is claimed by more than one rule of the container, it
// is listed once, at its position in the listing.
func (e *Engine) Expand(ctx context.Context, set *rules.Set, container Entry) ([]Entry, error) {
	if container.IsDir() {
		return nil, fmt.Errorf("expand %s: %w", container.Path, ErrNotContainer)
	}
	name := container.Name
	if name == "" {
		name = norm.NFC.String(filepath.Base(container.Path))
	}
	dir := filepath.Dir(container.Path)

	entries, partial := e.read(ctx, dir)
	if partial != nil && !fsutil.IsPartial(partial) {
		return nil, partial
	}

	found := false
	for _, fe := range entries {
		if fe.Name == name && !fe.IsDir() {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("expand %s: %w", container.Path, fsutil.ErrNotFound)
	}

	idx := newDirIndex(entries, set)
	claims := idx.itemsOf(name)

	var (
		out  []Entry
		seen []HideMapItem
	)
	for _, fe := range entries {
		if fe.IsDir() || fe.Name == name {
			continue
		}
		if !claimedBy(claims, fe.Name) || claimedBy(seen, fe.Name) {
			continue
		}

		items := idx.itemsOf(fe.Name)
		// Earlier siblings this file hides nest under it instead.
		out = retract(out, func(prev Entry) bool {
			return claimedBy(items, prev.Name)
		})
		out = append(out, newEntry(fe, items))
		for _, it := range items {
			if it.NonEmpty {
				seen = append(seen, it)
			}
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("container", container.Path).
		Int("children", len(out)).
		Msg("container expanded")
	return out, partial
}

func newEntry(fe fsutil.Entry, items []HideMapItem) Entry {
	return Entry{
		Path:      fe.FullPath,
		Name:      fe.Name,
		Kind:      fe.Kind,
		IsSymlink: fe.IsSymlink,
		Items:     items,
	}
}

func claimedBy(items []HideMapItem, name string) bool {
	for _, it := range items {
		if it.NonEmpty && it.Hides(name) {
			return true
		}
	}
	return false
}

func retract(entries []Entry, drop func(Entry) bool) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if !drop(e) {
			out = append(out, e)
		}
	}
	return out
}
