package state

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

type NavigateUpAction struct{}
type NavigateDownAction struct{}

// ExpandAction opens the selected directory or container, or steps onto its
// first child when it is already open.
type ExpandAction struct{}

// CollapseAction closes the selected node, or moves to its parent when there
// is nothing to close.
type CollapseAction struct{}

// ActivateAction toggles the selected node open or closed.
type ActivateAction struct{}

type MouseSelectAction struct {
	DisplayIndex int
}

// ===== SCROLL ACTIONS =====

type ScrollPageUpAction struct{}
type ScrollPageDownAction struct{}
type ScrollToStartAction struct{}
type ScrollToEndAction struct{}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type YankPathAction struct{}
type ToggleHiddenFilesAction struct{}
type OpenEditorAction struct{}
type HelpToggleAction struct{}
type HelpHideAction struct{}

// ===== RELOAD ACTIONS =====

// RefreshAction re-reads the whole tree from disk.
type RefreshAction struct{}

// FilesChangedAction reports that something changed under the root.
type FilesChangedAction struct{}

// ReloadConfigAction asks the application to re-resolve configuration.
type ReloadConfigAction struct{}

// RulesReloadedAction carries the outcome of a configuration reload. A nil
// Err means a new rule set has been published.
type RulesReloadedAction struct {
	Err error
}

// ===== PROMPT ACTIONS =====

type StartPromptAction struct {
	Kind PromptKind
}
type PromptCharAction struct {
	Char rune
}
type PromptBackspaceAction struct{}
type PromptMoveCursorAction struct {
	Direction string // "left", "right", "home", "end"
}
type PromptCancelAction struct{}
type PromptSubmitAction struct{}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}

// SuspendAction hands the terminal back to the shell (Ctrl+Z).
type SuspendAction struct{}
