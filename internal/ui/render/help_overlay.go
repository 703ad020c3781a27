package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	textutil "github.com/kk-code-lab/rfold/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	hiddenDesc := "Show hidden files"
	if state != nil && state.ShowHidden {
		hiddenDesc = "Hide hidden files"
	}

	sections := []helpOverlaySection{
		{
			title: "Navigation",
			entries: []helpOverlayEntry{
				{keys: "↑/↓", desc: "Move selection"},
				{keys: "PgUp/PgDn", desc: "Move by a page"},
				{keys: "Home/End", desc: "First / last row"},
				{keys: "→ or l", desc: "Open folder or group, then step inside"},
				{keys: "← or h", desc: "Close, or jump to the parent"},
				{keys: "↵", desc: "Toggle folder or group; edit a plain file"},
			},
		},
		{
			title: "Files",
			entries: []helpOverlayEntry{
				{keys: "n", desc: "New file next to the selection"},
				{keys: "N", desc: "New folder (parents created)"},
				{keys: "m", desc: "Rename"},
				{keys: "d", desc: "Delete (asks first)"},
				{keys: "e", desc: "Open in external editor ($RFOLD_EDITOR, $EDITOR)"},
				{keys: "y", desc: "Yank path to clipboard"},
			},
		},
		{
			title: "View",
			entries: []helpOverlayEntry{
				{keys: ".", desc: hiddenDesc},
				{keys: "r", desc: "Refresh tree"},
				{keys: "R", desc: "Reload hide rules from config"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "Ctrl+Z", desc: "Suspend to the shell"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}
	return lines
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	return fmt.Sprintf("  %-14s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillLine(0, y, w, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	if titleWidth := r.measureTextWidth(title); w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	for _, line := range buildHelpOverlayLines(state) {
		if row >= h-1 {
			break
		}
		text := r.truncateTextToWidth(strings.TrimRight(line, " "), w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	if h > 0 {
		footer := r.truncateTextToWidth("? toggle · Esc/q close", w)
		r.drawTextLine(0, h-1, w, footer, headerStyle)
	}
}
