package state

import (
	"context"
	"path/filepath"
	"time"

	"github.com/kk-code-lab/rfold/internal/fold"
	"github.com/kk-code-lab/rfold/internal/tree"
)

// Row is one visible line of the browser.
type Row = tree.Row

// Source produces the rows the browser shows.
type Source interface {
	Flatten(ctx context.Context, expanded func(fold.Entry) bool) ([]tree.Row, error)
	Invalidate()
	SetShowHidden(show bool)
}

// AppState is the single source of truth
type AppState struct {
	// Root is the directory the tree is rooted at.
	Root string
	// RootLabel is how the root is shown to the user, usually its absolute
	// path on disk.
	RootLabel string

	// Tree
	Rows     []Row
	Expanded map[string]bool // paths of open directories and containers

	// Selection & viewport
	SelectedIndex int
	ScrollOffset  int

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	ShowHidden  bool
	HelpVisible bool

	// Prompt is non-nil while a name or confirmation is being typed.
	Prompt *Prompt

	// Status line
	StatusMessage      string
	ClipboardAvailable bool      // Whether clipboard command is available
	LastYankTime       time.Time // Time of last successful yank (for flash effect)
	EditorAvailable    bool      // Whether an editor command is available for 'e'

	// Error state
	LastError error
}

// NewAppState returns an empty state rooted at root.
func NewAppState(root string) *AppState {
	return &AppState{
		Root:     root,
		Expanded: make(map[string]bool),
	}
}

// CurrentRow returns the selected row, or nil when nothing is selected.
func (s *AppState) CurrentRow() *Row {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Rows) {
		return nil
	}
	return &s.Rows[s.SelectedIndex]
}

// CurrentPath returns the path of the selected entry, or the root.
func (s *AppState) CurrentPath() string {
	if row := s.CurrentRow(); row != nil {
		return row.Entry.Path
	}
	return s.Root
}

func (s *AppState) isExpanded(e fold.Entry) bool {
	return s.Expanded[e.Path]
}

// DisplayPath returns path as the user knows it, joined onto RootLabel.
func (s *AppState) DisplayPath(path string) string {
	if s.RootLabel == "" {
		return path
	}
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return filepath.Join(s.RootLabel, rel)
}

// ListHeight is the number of rows that fit between the header and the
// status lines.
func (s *AppState) ListHeight() int {
	h := s.ScreenHeight - 3
	if h < 0 {
		return 0
	}
	return h
}

func (s *AppState) selectPath(path string) bool {
	for i, row := range s.Rows {
		if row.Entry.Path == path {
			s.SelectedIndex = i
			return true
		}
	}
	return false
}

func (s *AppState) clampSelection() {
	if s.SelectedIndex >= len(s.Rows) {
		s.SelectedIndex = len(s.Rows) - 1
	}
	if s.SelectedIndex < 0 {
		s.SelectedIndex = 0
	}
}

func (s *AppState) updateScrollVisibility() {
	visibleLines := s.ListHeight()
	if visibleLines <= 0 {
		s.ScrollOffset = 0
		return
	}

	if s.SelectedIndex < s.ScrollOffset {
		s.ScrollOffset = s.SelectedIndex
	} else if s.SelectedIndex >= s.ScrollOffset+visibleLines {
		s.ScrollOffset = s.SelectedIndex - visibleLines + 1
	}

	maxOffset := len(s.Rows) - visibleLines
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.ScrollOffset > maxOffset {
		s.ScrollOffset = maxOffset
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// parentIndex returns the row holding row i, or -1 at the top level.
func (s *AppState) parentIndex(i int) int {
	depth := s.Rows[i].Depth
	for j := i - 1; j >= 0; j-- {
		if s.Rows[j].Depth < depth {
			return j
		}
	}
	return -1
}

func (s *AppState) clearMessages() {
	s.StatusMessage = ""
	s.LastError = nil
}
