package state

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PromptKind selects what a prompt's input is used for.
type PromptKind uint8

const (
	PromptNewFile PromptKind = iota + 1
	PromptNewFolder
	PromptRename
	PromptConfirmDelete
)

// Title is shown in front of the prompt input.
func (k PromptKind) Title() string {
	switch k {
	case PromptNewFile:
		return "New file"
	case PromptNewFolder:
		return "New folder"
	case PromptRename:
		return "Rename to"
	case PromptConfirmDelete:
		return "Delete"
	default:
		return ""
	}
}

// Prompt is an in-progress name entry or confirmation.
type Prompt struct {
	Kind   PromptKind
	Input  string
	Cursor int // rune offset into Input

	// Target is the entry renamed or deleted.
	Target string
	// Dir is the directory new entries are created in.
	Dir string
}

// newPrompt prepares a prompt of kind for the current selection. It returns
// nil when the kind needs a selection and there is none.
func newPrompt(s *AppState, kind PromptKind) *Prompt {
	row := s.CurrentRow()
	switch kind {
	case PromptNewFile, PromptNewFolder:
		return &Prompt{Kind: kind, Dir: targetDir(s)}
	case PromptRename:
		if row == nil {
			return nil
		}
		name := row.Entry.Name
		return &Prompt{
			Kind:   kind,
			Input:  name,
			Cursor: renameCursor(name),
			Target: row.Entry.Path,
			Dir:    row.Entry.Dir(),
		}
	case PromptConfirmDelete:
		if row == nil {
			return nil
		}
		return &Prompt{Kind: kind, Target: row.Entry.Path, Dir: row.Entry.Dir()}
	}
	return nil
}

// targetDir is where new files and folders go: the selected directory, or
// the directory holding the selected file. Hidden children of a container
// live next to it, so both resolve to the same place.
func targetDir(s *AppState) string {
	row := s.CurrentRow()
	switch {
	case row == nil:
		return s.Root
	case row.Entry.IsDir():
		return row.Entry.Path
	default:
		return row.Entry.Dir()
	}
}

// renameCursor places the cursor before the extension so the base name can
// be retyped directly.
func renameCursor(name string) int {
	if i := strings.LastIndex(name, "."); i > 0 {
		return utf8.RuneCountInString(name[:i])
	}
	return utf8.RuneCountInString(name)
}

func (p *Prompt) insert(ch rune) {
	runes := []rune(p.Input)
	pos := clampCursor(p.Cursor, len(runes))
	runes = append(runes[:pos], append([]rune{ch}, runes[pos:]...)...)
	p.Input = string(runes)
	p.Cursor = pos + 1
}

func (p *Prompt) backspace() {
	runes := []rune(p.Input)
	pos := clampCursor(p.Cursor, len(runes))
	if pos == 0 {
		return
	}
	p.Input = string(append(runes[:pos-1], runes[pos:]...))
	p.Cursor = pos - 1
}

func (p *Prompt) move(direction string) {
	n := utf8.RuneCountInString(p.Input)
	switch direction {
	case "left":
		p.Cursor--
	case "right":
		p.Cursor++
	case "home":
		p.Cursor = 0
	case "end":
		p.Cursor = n
	}
	p.Cursor = clampCursor(p.Cursor, n)
}

// path joins the typed name onto the prompt's directory.
func (p *Prompt) path() string {
	return filepath.Join(p.Dir, strings.TrimSpace(p.Input))
}

func clampCursor(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
