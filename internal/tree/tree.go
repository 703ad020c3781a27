// Package tree adapts folded listings to tree widgets: it answers "children
// of this node" and "how does this node look", caching results until the
// next invalidation.
package tree

import (
	"context"
	"sync"
	"sync/atomic"

	billy "github.com/go-git/go-billy/v5"
	"github.com/kk-code-lab/rfold/internal/fold"
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"github.com/kk-code-lab/rfold/internal/rules"
	"golang.org/x/text/language"
)

// Tree serves the folded tree of one root directory.
type Tree struct {
	engine *fold.Engine
	root   string
	store  *rules.Store

	showHidden atomic.Bool

	mu       sync.Mutex
	snapshot *rules.Set
	cache    map[cacheKey]cached
}

type cacheKey struct {
	path      string
	container bool
}

type cached struct {
	entries []fold.Entry
	err     error
}

// Option configures a Tree.
type Option func(*treeOptions)

type treeOptions struct {
	locale          language.Tag
	showHidden      bool
	statConcurrency int
}

// WithLocale selects the collation used to order names.
func WithLocale(tag language.Tag) Option {
	return func(o *treeOptions) {
		o.locale = tag
	}
}

// WithShowHidden lists dotfiles from the start.
func WithShowHidden(show bool) Option {
	return func(o *treeOptions) {
		o.showHidden = show
	}
}

// WithStatConcurrency bounds parallel stat calls per listing.
func WithStatConcurrency(n int) Option {
	return func(o *treeOptions) {
		o.statConcurrency = n
	}
}

// New creates a Tree for root inside fsys. Rules are read from store on every
// rebuild, so publishing a new set takes effect on the next call.
func New(fsys billy.Filesystem, root string, store *rules.Store, opts ...Option) *Tree {
	o := treeOptions{locale: language.Und}
	for _, opt := range opts {
		opt(&o)
	}
	if store == nil {
		store = rules.NewStore(nil)
	}
	if root == "" {
		root = "/"
	}

	lister := fsutil.NewLister(fsys, fsutil.WithStatConcurrency(o.statConcurrency))
	t := &Tree{
		engine: fold.NewEngine(lister, fold.WithLocale(o.locale)),
		root:   root,
		store:  store,
		cache:  make(map[cacheKey]cached),
	}
	t.showHidden.Store(o.showHidden)
	return t
}

// Root returns the root directory.
func (t *Tree) Root() string {
	return t.root
}

// ShowHidden reports whether dotfiles are listed.
func (t *Tree) ShowHidden() bool {
	return t.showHidden.Load()
}

// SetShowHidden toggles dotfiles. Grouping is computed with dotfiles
// included either way; the toggle only filters what is returned.
func (t *Tree) SetShowHidden(show bool) {
	t.showHidden.Store(show)
}

// Invalidate drops every cached listing. The next call rebuilds from disk.
func (t *Tree) Invalidate() {
	t.mu.Lock()
	t.cache = make(map[cacheKey]cached)
	t.mu.Unlock()
}

// Children returns the children of parent: the root listing for nil, the
// listing of a directory, or the expansion of a container. Other entries
// have no children.
func (t *Tree) Children(ctx context.Context, parent *fold.Entry) ([]fold.Entry, error) {
	var key cacheKey
	switch {
	case parent == nil:
		key = cacheKey{path: t.root}
	case parent.IsDir():
		key = cacheKey{path: parent.Path}
	case parent.Expandable():
		key = cacheKey{path: parent.Path, container: true}
	default:
		return nil, nil
	}

	entries, err := t.load(ctx, key, parent)
	if t.ShowHidden() {
		return entries, err
	}
	return withoutDotfiles(entries), err
}

func (t *Tree) load(ctx context.Context, key cacheKey, parent *fold.Entry) ([]fold.Entry, error) {
	set := t.store.Snapshot()

	t.mu.Lock()
	if t.snapshot != set {
		t.snapshot = set
		t.cache = make(map[cacheKey]cached)
	}
	if c, ok := t.cache[key]; ok {
		t.mu.Unlock()
		return c.entries, c.err
	}
	t.mu.Unlock()

	var (
		entries []fold.Entry
		err     error
	)
	if key.container {
		entries, err = t.engine.Expand(ctx, set, *parent)
	} else {
		entries, err = t.engine.BuildListing(ctx, set, key.path)
	}
	if err != nil && !fsutil.IsPartial(err) {
		return nil, err
	}

	t.mu.Lock()
	if t.snapshot == set {
		t.cache[key] = cached{entries: entries, err: err}
	}
	t.mu.Unlock()
	return entries, err
}

func withoutDotfiles(entries []fold.Entry) []fold.Entry {
	if entries == nil {
		return nil
	}
	out := make([]fold.Entry, 0, len(entries))
	for _, e := range entries {
		if !fsutil.IsHidden(e.Name) {
			out = append(out, e)
		}
	}
	return out
}
