package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"github.com/kk-code-lab/rfold/internal/tree"
	"github.com/rs/zerolog"
)

// ===== REDUCER =====

// StateReducer applies actions to state
type StateReducer struct {
	ctx    context.Context
	source Source
	fsys   billy.Filesystem
}

// NewStateReducer creates a reducer reading rows from source and applying
// file operations to fsys. ctx carries the logger and bounds every rebuild.
func NewStateReducer(ctx context.Context, source Source, fsys billy.Filesystem) *StateReducer {
	return &StateReducer{ctx: ctx, source: source, fsys: fsys}
}

// Load rebuilds the visible rows from the source, keeping the selection on
// the same entry when it is still visible. Entries that could not be read
// are reported through the returned error while the rest stay listed.
func (r *StateReducer) Load(state *AppState) error {
	selected := ""
	if row := state.CurrentRow(); row != nil {
		selected = row.Entry.Path
	}

	rows, err := r.source.Flatten(r.ctx, state.isExpanded)
	if rows == nil && err != nil {
		state.Rows = nil
		state.SelectedIndex = 0
		state.ScrollOffset = 0
		return err
	}

	state.Rows = rows
	if selected == "" || !state.selectPath(selected) {
		state.clampSelection()
	}
	state.updateScrollVisibility()

	if err != nil {
		zerolog.Ctx(r.ctx).Warn().Err(err).Msg("tree partially loaded")
	}
	return err
}

func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch action.(type) {
	case ResizeAction, FilesChangedAction, RulesReloadedAction:
	default:
		state.clearMessages()
	}

	switch a := action.(type) {

	// ===== NAVIGATION =====

	case NavigateDownAction:
		if len(state.Rows) == 0 || state.SelectedIndex >= len(state.Rows)-1 {
			return state, nil
		}
		state.SelectedIndex++
		state.updateScrollVisibility()
		return state, nil

	case NavigateUpAction:
		if len(state.Rows) == 0 || state.SelectedIndex == 0 {
			return state, nil
		}
		state.SelectedIndex--
		state.updateScrollVisibility()
		return state, nil

	case ExpandAction:
		row := state.CurrentRow()
		if row == nil {
			return state, nil
		}
		switch row.Node.State {
		case tree.Collapsed:
			state.Expanded[row.Entry.Path] = true
			return state, r.Load(state)
		case tree.Expanded:
			next := state.SelectedIndex + 1
			if next < len(state.Rows) && state.Rows[next].Depth > row.Depth {
				state.SelectedIndex = next
				state.updateScrollVisibility()
			}
		}
		return state, nil

	case CollapseAction:
		row := state.CurrentRow()
		if row == nil {
			return state, nil
		}
		if row.Node.State == tree.Expanded {
			delete(state.Expanded, row.Entry.Path)
			return state, r.Load(state)
		}
		if parent := state.parentIndex(state.SelectedIndex); parent >= 0 {
			state.SelectedIndex = parent
			state.updateScrollVisibility()
		}
		return state, nil

	case ActivateAction:
		row := state.CurrentRow()
		if row == nil {
			return state, nil
		}
		switch row.Node.State {
		case tree.Collapsed:
			state.Expanded[row.Entry.Path] = true
		case tree.Expanded:
			delete(state.Expanded, row.Entry.Path)
		default:
			return state, nil
		}
		return state, r.Load(state)

	case MouseSelectAction:
		if a.DisplayIndex < 0 || a.DisplayIndex >= len(state.Rows) {
			return state, nil
		}
		state.SelectedIndex = a.DisplayIndex
		state.updateScrollVisibility()
		return state, nil

	// ===== SCROLL =====

	case ScrollPageUpAction:
		visibleLines := state.ListHeight()
		if len(state.Rows) == 0 || visibleLines <= 0 {
			return state, nil
		}
		newIdx := state.SelectedIndex - visibleLines
		if newIdx < 0 {
			newIdx = 0
		}
		state.SelectedIndex = newIdx
		state.updateScrollVisibility()
		return state, nil

	case ScrollPageDownAction:
		visibleLines := state.ListHeight()
		if len(state.Rows) == 0 || visibleLines <= 0 {
			return state, nil
		}
		newIdx := state.SelectedIndex + visibleLines
		if newIdx >= len(state.Rows) {
			newIdx = len(state.Rows) - 1
		}
		state.SelectedIndex = newIdx
		state.updateScrollVisibility()
		return state, nil

	case ScrollToStartAction:
		state.SelectedIndex = 0
		state.updateScrollVisibility()
		return state, nil

	case ScrollToEndAction:
		if len(state.Rows) == 0 {
			return state, nil
		}
		state.SelectedIndex = len(state.Rows) - 1
		state.updateScrollVisibility()
		return state, nil

	// ===== VIEW =====

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		state.updateScrollVisibility()
		return state, nil

	case ToggleHiddenFilesAction:
		state.ShowHidden = !state.ShowHidden
		r.source.SetShowHidden(state.ShowHidden)
		return state, r.Load(state)

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil

	// ===== RELOAD =====

	case RefreshAction, FilesChangedAction:
		r.source.Invalidate()
		return state, r.Load(state)

	case RulesReloadedAction:
		// A failed reload publishes nothing, but files may have changed
		// alongside the configuration.
		r.source.Invalidate()
		loadErr := r.Load(state)
		if a.Err != nil {
			return state, errors.Join(fmt.Errorf("reload config: %w", a.Err), loadErr)
		}
		state.StatusMessage = "configuration reloaded"
		return state, loadErr

	// ===== PROMPT =====

	case StartPromptAction:
		state.Prompt = newPrompt(state, a.Kind)
		return state, nil

	case PromptCharAction:
		if state.Prompt != nil && state.Prompt.Kind != PromptConfirmDelete {
			state.Prompt.insert(a.Char)
		}
		return state, nil

	case PromptBackspaceAction:
		if state.Prompt != nil {
			state.Prompt.backspace()
		}
		return state, nil

	case PromptMoveCursorAction:
		if state.Prompt != nil {
			state.Prompt.move(a.Direction)
		}
		return state, nil

	case PromptCancelAction:
		state.Prompt = nil
		return state, nil

	case PromptSubmitAction:
		prompt := state.Prompt
		state.Prompt = nil
		if prompt == nil {
			return state, nil
		}
		return state, r.submit(state, prompt)
	}

	// YankPath, OpenEditor, ReloadConfig and Quit are carried out by the
	// application.
	return state, nil
}

func (r *StateReducer) submit(state *AppState, p *Prompt) error {
	name := strings.TrimSpace(p.Input)
	if p.Kind != PromptConfirmDelete && name == "" {
		return nil
	}

	var (
		target string
		verb   string
		err    error
	)
	switch p.Kind {
	case PromptNewFile:
		target, verb = p.path(), "created"
		err = fsutil.CreateFile(r.fsys, target)
	case PromptNewFolder:
		target, verb = p.path(), "created"
		err = fsutil.MakeDir(r.fsys, target)
	case PromptRename:
		target, verb = p.path(), "renamed to"
		err = fsutil.Rename(r.fsys, p.Target, target)
	case PromptConfirmDelete:
		target, verb = p.Target, "deleted"
		err = r.remove(target)
	default:
		return nil
	}

	if errors.Is(err, fsutil.ErrExist) {
		state.StatusMessage = "filename already taken: " + name
		return nil
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(r.ctx).Info().Str("path", target).Msg(verb)

	switch p.Kind {
	case PromptNewFile, PromptNewFolder:
		for dir := filepath.Dir(target); dir != state.Root && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			state.Expanded[dir] = true
		}
	case PromptRename:
		if state.Expanded[p.Target] {
			delete(state.Expanded, p.Target)
			state.Expanded[target] = true
		}
	case PromptConfirmDelete:
		delete(state.Expanded, target)
	}

	r.source.Invalidate()
	loadErr := r.Load(state)
	if p.Kind != PromptConfirmDelete && state.selectPath(target) {
		state.updateScrollVisibility()
	}
	state.StatusMessage = verb + " " + filepath.Base(target)
	return loadErr
}

func (r *StateReducer) remove(path string) error {
	kind, err := fsutil.StatKind(r.fsys, path)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return fsutil.Remove(r.fsys, path, kind == fsutil.KindDirectory)
}
