// Package watch delivers filesystem change notifications for a directory
// tree. Consumers only learn that something changed under the root; they are
// expected to rebuild whatever they derived from it.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultBuffer = 64

// Op is the kind of change.
type Op uint8

const (
	Created Op = 1 << iota
	Changed
	Deleted
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one change. Path is rooted at "/" relative to the watched root,
// the same convention the billy filesystem of the root uses.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher watches a directory tree recursively. Subdirectories created after
// the watcher started are picked up as they appear.
type Watcher struct {
	root   string
	fsw    *fsnotify.Watcher
	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithBuffer sets the capacity of the event channel. Events arriving while
// the channel is full are dropped.
func WithBuffer(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.events = make(chan Event, n)
		}
	}
}

// New starts watching root. The watcher stops when ctx is done or Close is
// called.
func New(ctx context.Context, root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	w := &Watcher{
		root:   abs,
		fsw:    fsw,
		events: make(chan Event, defaultBuffer),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
		logger: *zerolog.Ctx(ctx),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	w.addTree(abs, false)

	w.wg.Add(1)
	go w.run(ctx)
	return w, nil
}

// Events returns the channel changes are delivered on. It is closed after
// the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns backend errors. Errors that cannot be delivered
// immediately are logged and dropped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn().Err(err).Msg("watch error dropped")
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	out, ok := translate(w.root, ev)
	if !ok {
		return
	}
	w.emit(out)

	if out.Op == Created {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			w.addTree(ev.Name, true)
		}
	}
}

// addTree watches dir and every directory below it. With announce set, the
// entries found are reported as created: they may have appeared before the
// watch on their parent was in place.
func (w *Watcher) addTree(dir string, announce bool) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == dir {
			if announce {
				_ = w.fsw.Add(path)
			}
			return nil
		}
		if announce {
			if rel, ok := relative(w.root, path); ok {
				w.emit(Event{Path: rel, Op: Created, Time: time.Now()})
			}
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Debug().Err(err).Str("dir", path).Msg("cannot watch directory")
			return filepath.SkipDir
		}
		return nil
	})
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	default:
		w.logger.Debug().Str("path", ev.Path).Stringer("op", ev.Op).Msg("watch event dropped")
	}
}

// translate maps a backend event onto an Event under root. Permission-only
// changes are ignored.
func translate(root string, ev fsnotify.Event) (Event, bool) {
	var op Op
	switch {
	case ev.Has(fsnotify.Create):
		op = Created
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = Deleted
	case ev.Has(fsnotify.Write):
		op = Changed
	default:
		return Event{}, false
	}

	rel, ok := relative(root, ev.Name)
	if !ok {
		return Event{}, false
	}
	return Event{Path: rel, Op: op, Time: time.Now()}, true
}

func relative(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(string(filepath.Separator), rel), true
}
