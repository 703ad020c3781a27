package render

import (
	"fmt"
	"strings"

	statepkg "github.com/kk-code-lab/rfold/internal/state"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return " "
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}

	segments := contextualHelpSegments(state)
	segments = append(segments, persistentHelpSegments(state)...)
	return segments
}

func contextualHelpSegments(state *statepkg.AppState) []string {
	switch {
	case state.Prompt != nil && state.Prompt.Kind == statepkg.PromptConfirmDelete:
		return []string{
			"y: delete",
			"n/Esc: cancel",
		}
	case state.Prompt != nil:
		return []string{
			"type: name",
			"↵: confirm",
			"Esc: cancel",
			"←/→: move cursor",
		}
	default:
		return []string{
			"↑/↓: move",
			"→/←: open/close",
			"↵: toggle",
			"n/N: new file/folder",
			"m: rename",
			"d: delete",
			"r: refresh",
		}
	}
}

func persistentHelpSegments(state *statepkg.AppState) []string {
	if state.Prompt != nil {
		return nil
	}

	hiddenStatus := "hidden"
	if state.ShowHidden {
		hiddenStatus = "visible"
	}

	segments := []string{fmt.Sprintf(".: toggle %s", hiddenStatus)}
	if state.ClipboardAvailable {
		segments = append(segments, "y: yank path")
	}
	if state.EditorAvailable {
		segments = append(segments, "e: edit file")
	}
	return append(segments, "?: help", "q: quit")
}
