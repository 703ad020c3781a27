package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

const defaultStatConcurrency = 8

// Lister is the directory listing capability the grouping engine consumes.
// Entries come back in backend order; callers sort.
type Lister interface {
	List(ctx context.Context, dir string) ([]Entry, error)
}

// BillyLister lists directories of a billy filesystem, classifying each child
// with its own stat call.
type BillyLister struct {
	fs          billy.Filesystem
	concurrency int
}

// ListerOption configures a BillyLister.
type ListerOption func(*BillyLister)

// WithStatConcurrency bounds the number of in-flight stat calls per listing.
func WithStatConcurrency(n int) ListerOption {
	return func(l *BillyLister) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// NewLister wraps fsys as a Lister.
func NewLister(fsys billy.Filesystem, opts ...ListerOption) *BillyLister {
	l := &BillyLister{fs: fsys, concurrency: defaultStatConcurrency}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Filesystem returns the wrapped filesystem.
func (l *BillyLister) Filesystem() billy.Filesystem {
	return l.fs
}

// List reads dir and stats every child. It fails with ErrNotFound or
// ErrNotADirectory when dir itself cannot be listed. Children that vanish
// before their stat are dropped silently; children that fail for any other
// reason are dropped and reported through a *PartialError returned together
// with the surviving entries.
func (l *BillyLister) List(ctx context.Context, dir string) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	info, err := l.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, Classify(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, ErrNotADirectory)
	}

	infos, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, Classify(err))
	}

	slots := make([]*Entry, len(infos))
	failures := make([]error, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, fi := range infos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, err := l.stat(dir, fi.Name())
			if err != nil {
				failures[i] = err
				return nil
			}
			slots[i] = &entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	var omitted []error
	for i, slot := range slots {
		if slot != nil {
			entries = append(entries, *slot)
			continue
		}
		if errors.Is(failures[i], ErrNotFound) {
			logger.Debug().Str("dir", dir).Str("name", infos[i].Name()).Msg("entry vanished before stat")
			continue
		}
		logger.Debug().Err(failures[i]).Str("dir", dir).Str("name", infos[i].Name()).Msg("entry omitted")
		omitted = append(omitted, failures[i])
	}

	if len(omitted) > 0 {
		return entries, &PartialError{Dir: dir, Errs: omitted}
	}
	return entries, nil
}

func (l *BillyLister) stat(dir, rawName string) (Entry, error) {
	fullPath := filepath.Join(dir, rawName)

	info, err := l.fs.Lstat(fullPath)
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", fullPath, Classify(err))
	}

	isSymlink := info.Mode()&os.ModeSymlink != 0
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}

	// For symlinks, check if target is a directory
	if isSymlink {
		if targetInfo, err := l.fs.Stat(fullPath); err == nil && targetInfo.IsDir() {
			kind = KindDirectory
		}
	}

	return Entry{
		Name:      norm.NFC.String(rawName),
		FullPath:  fullPath,
		Kind:      kind,
		IsSymlink: isSymlink,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		Mode:      info.Mode(),
	}, nil
}

// StatKind is the metadata capability: it classifies path without following
// a final symlink.
func StatKind(fsys billy.Filesystem, path string) (Kind, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return KindUnknown, Classify(err)
	}
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink, nil
	case mode.IsDir():
		return KindDirectory, nil
	case mode.IsRegular():
		return KindFile, nil
	default:
		return KindUnknown, nil
	}
}
