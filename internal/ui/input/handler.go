package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the user asked to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

// processKeyEvent handles keyboard input
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		ih.actionChan <- statepkg.QuitAction{}
		return false
	}
	if ev.Key() == tcell.KeyCtrlZ {
		ih.actionChan <- statepkg.SuspendAction{}
		return true
	}

	if ih.state != nil && ih.state.HelpVisible {
		return ih.processHelpKey(ev)
	}
	if ih.state != nil && ih.state.Prompt != nil {
		if ih.state.Prompt.Kind == statepkg.PromptConfirmDelete {
			return ih.processConfirmKey(ev)
		}
		return ih.processPromptKey(ev)
	}

	switch ev.Key() {
	case tcell.KeyUp:
		ih.actionChan <- statepkg.NavigateUpAction{}
	case tcell.KeyDown:
		ih.actionChan <- statepkg.NavigateDownAction{}
	case tcell.KeyRight:
		ih.actionChan <- statepkg.ExpandAction{}
	case tcell.KeyLeft:
		ih.actionChan <- statepkg.CollapseAction{}
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.ActivateAction{}
	case tcell.KeyPgUp:
		ih.actionChan <- statepkg.ScrollPageUpAction{}
	case tcell.KeyPgDn:
		ih.actionChan <- statepkg.ScrollPageDownAction{}
	case tcell.KeyHome:
		ih.actionChan <- statepkg.ScrollToStartAction{}
	case tcell.KeyEnd:
		ih.actionChan <- statepkg.ScrollToEndAction{}
	case tcell.KeyRune:
		return ih.processRune(ev)
	}
	return true
}

func (ih *InputHandler) processRune(ev *tcell.EventKey) bool {
	r := ev.Rune()
	if ev.Modifiers()&tcell.ModShift != 0 {
		// Normalize shifted alphabetic runes to reflect user intent (Shift+N => 'N')
		r = unicode.ToUpper(r)
	}

	switch r {
	case 'q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	case '.':
		ih.actionChan <- statepkg.ToggleHiddenFilesAction{}
	case 'j':
		ih.actionChan <- statepkg.NavigateDownAction{}
	case 'k':
		ih.actionChan <- statepkg.NavigateUpAction{}
	case 'l':
		ih.actionChan <- statepkg.ExpandAction{}
	case 'h':
		ih.actionChan <- statepkg.CollapseAction{}
	case 'y':
		if ih.state == nil || ih.state.ClipboardAvailable {
			ih.actionChan <- statepkg.YankPathAction{}
		}
	case 'e', 'E':
		if ih.state != nil && ih.state.EditorAvailable {
			ih.actionChan <- statepkg.OpenEditorAction{}
		}
	case 'r':
		ih.actionChan <- statepkg.RefreshAction{}
	case 'R':
		ih.actionChan <- statepkg.ReloadConfigAction{}
	case 'n':
		ih.actionChan <- statepkg.StartPromptAction{Kind: statepkg.PromptNewFile}
	case 'N':
		ih.actionChan <- statepkg.StartPromptAction{Kind: statepkg.PromptNewFolder}
	case 'm':
		ih.actionChan <- statepkg.StartPromptAction{Kind: statepkg.PromptRename}
	case 'd':
		ih.actionChan <- statepkg.StartPromptAction{Kind: statepkg.PromptConfirmDelete}
	}
	return true
}

func (ih *InputHandler) processHelpKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.HelpHideAction{}
	case tcell.KeyRune:
		switch ev.Rune() {
		case '?', 'q', 'Q':
			ih.actionChan <- statepkg.HelpHideAction{}
		}
	}
	return true
}

func (ih *InputHandler) processPromptKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.PromptCancelAction{}
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.PromptSubmitAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.PromptBackspaceAction{}
	case tcell.KeyLeft:
		ih.actionChan <- statepkg.PromptMoveCursorAction{Direction: "left"}
	case tcell.KeyRight:
		ih.actionChan <- statepkg.PromptMoveCursorAction{Direction: "right"}
	case tcell.KeyHome, tcell.KeyCtrlA:
		ih.actionChan <- statepkg.PromptMoveCursorAction{Direction: "home"}
	case tcell.KeyEnd, tcell.KeyCtrlE:
		ih.actionChan <- statepkg.PromptMoveCursorAction{Direction: "end"}
	case tcell.KeyRune:
		ih.actionChan <- statepkg.PromptCharAction{Char: ev.Rune()}
	}
	return true
}

func (ih *InputHandler) processConfirmKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.PromptCancelAction{}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'y', 'Y':
			ih.actionChan <- statepkg.PromptSubmitAction{}
		default:
			ih.actionChan <- statepkg.PromptCancelAction{}
		}
	}
	return true
}
