package render

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	textutil "github.com/kk-code-lab/rfold/internal/textutil"
	"github.com/kk-code-lab/rfold/internal/tree"
)

const (
	markerCollapsed = '▸'
	markerExpanded  = '▾'
	indentWidth     = 2
)

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()

	w, h := r.screen.Size()
	if state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(state, w)
	r.drawTree(state, w, h)
	r.drawStatusLine(state, w, h)

	r.screen.Show()
}

// drawHeader renders the top bar with title and breadcrumb
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)

	endX := r.drawTextLine(0, 0, w, "rfold", headerStyle)
	if endX < w {
		r.screen.SetContent(endX, 0, ' ', nil, headerStyle)
		endX++
	}

	segments := r.formatBreadcrumbSegments(state.DisplayPath(state.Root))
	if endX < w && len(segments) > 0 {
		lastIdx := len(segments) - 1
		if lastIdx > 0 {
			prefix := strings.Join(segments[:lastIdx], " › ") + " › "
			prefix = textutil.SanitizeTerminalText(prefix)
			prefix = r.truncateLeftToWidth(prefix, w-endX-1)
			endX = r.drawTextLine(endX, 0, w-endX, prefix, headerStyle)
		}
		if endX < w {
			last := textutil.SanitizeTerminalText(segments[lastIdx])
			last = r.truncateLeftToWidth(last, w-endX)
			endX = r.drawTextLine(endX, 0, w-endX, last, headerStyle.Bold(true))
		}
	}

	r.fillLine(endX, 0, w, headerStyle)
}

func (r *Renderer) formatBreadcrumbSegments(path string) []string {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		cleanPath = "/"
	}

	slashed := filepath.ToSlash(cleanPath)
	if slashed == "/" {
		return []string{"/"}
	}

	var segments []string
	if strings.HasPrefix(slashed, "/") {
		segments = append(segments, "/")
		slashed = strings.TrimPrefix(slashed, "/")
	}
	for _, part := range strings.Split(slashed, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}

	if len(segments) == 0 {
		return []string{cleanPath}
	}
	return segments
}

// drawTree renders the visible rows between the header and the status lines.
func (r *Renderer) drawTree(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.ListBg)
	listStartY := 1
	bottomLimit := h - 2

	y := listStartY
	for idx := state.ScrollOffset; idx < len(state.Rows) && y < bottomLimit; idx++ {
		if idx < 0 {
			continue
		}
		r.drawRow(state.Rows[idx], idx == state.SelectedIndex, y, w, baseStyle)
		y++
	}

	if len(state.Rows) == 0 && y < bottomLimit {
		empty := "(empty)"
		if state.LastError != nil {
			empty = "(unreadable)"
		}
		endX := r.drawTextLine(1, y, w-1, empty, baseStyle.Foreground(r.theme.HiddenFg))
		r.fillLine(endX, y, w, baseStyle)
		y++
	}

	for ; y < bottomLimit; y++ {
		r.fillLine(0, y, w, baseStyle)
	}
}

func (r *Renderer) drawRow(row statepkg.Row, selected bool, y, w int, baseStyle tcell.Style) {
	rowStyle := r.rowStyle(row, selected, baseStyle)
	markerStyle := rowStyle
	if !selected {
		markerStyle = baseStyle.Foreground(r.theme.MarkerFg)
	}

	x := r.drawTextLine(0, y, w, " "+strings.Repeat(" ", row.Depth*indentWidth), rowStyle)

	marker := ' '
	switch row.Node.State {
	case tree.Collapsed:
		marker = markerCollapsed
	case tree.Expanded:
		marker = markerExpanded
	}
	x = r.drawStyledRune(x, y, w, marker, markerStyle)

	prefix := row.Node.Icon + " "
	nameWidth := w - x - r.measureTextWidth(prefix)
	name := textutil.SanitizeTerminalText(row.Node.Label)
	if nameWidth > 0 {
		name = r.truncateTextToWidth(name, nameWidth)
	} else {
		name = ""
	}

	x = r.drawTextLine(x, y, w-x, prefix+name, rowStyle)
	r.fillLine(x, y, w, rowStyle)
}

func (r *Renderer) rowStyle(row statepkg.Row, selected bool, baseStyle tcell.Style) tcell.Style {
	if selected {
		return tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
	}

	var style tcell.Style
	switch row.Node.Icon {
	case tree.IconSymlink:
		style = baseStyle.Foreground(r.theme.SymlinkFg)
	case tree.IconDirectory:
		style = baseStyle.Foreground(r.theme.DirectoryFg)
	case tree.IconContainer:
		style = baseStyle.Foreground(r.theme.ContainerFg)
	default:
		style = baseStyle.Foreground(r.theme.FileFg)
	}
	if row.Node.Hidden {
		style = style.Foreground(r.theme.HiddenFg)
	}
	return style
}

// drawStatusLine renders the two bottom lines: the prompt, message or
// selected path, then the key help.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	if h < 2 {
		return
	}
	normalStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)

	y := h - 2
	switch {
	case state.Prompt != nil:
		r.drawPrompt(state.Prompt, state, y, w, normalStyle)
	case state.LastError != nil:
		msg := textutil.SanitizeTerminalText("error: " + firstLine(state.LastError.Error()))
		endX := r.drawTextLine(0, y, w, r.truncateTextToWidth(msg, w), normalStyle.Foreground(r.theme.ErrorFg))
		r.fillLine(endX, y, w, normalStyle)
	case state.StatusMessage != "":
		msg := textutil.SanitizeTerminalText(state.StatusMessage)
		endX := r.drawTextLine(0, y, w, r.truncateTextToWidth(msg, w), normalStyle)
		r.fillLine(endX, y, w, normalStyle)
	default:
		pathStyle := normalStyle
		// Flash for 0.1s after a yank
		if !state.LastYankTime.IsZero() && time.Since(state.LastYankTime) < 100*time.Millisecond {
			pathStyle = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
		}
		text := r.pathLine(state)
		endX := r.drawTextLine(0, y, w, r.truncateLeftToWidth(text, w), pathStyle)
		r.fillLine(endX, y, w, pathStyle)
	}

	helpText := textutil.SanitizeTerminalText(buildFooterHelpText(state))
	endX := r.drawTextLine(0, h-1, w, r.truncateTextToWidth(helpText, w), normalStyle)
	r.fillLine(endX, h-1, w, normalStyle)
}

func (r *Renderer) pathLine(state *statepkg.AppState) string {
	row := state.CurrentRow()
	if row == nil {
		return textutil.SanitizeTerminalText(state.DisplayPath(state.Root))
	}
	text := state.DisplayPath(row.Entry.Path)
	if row.Entry.Expandable() {
		text += "  " + strings.TrimPrefix(row.Node.Tooltip, row.Entry.Path+" ")
	}
	return textutil.SanitizeTerminalText(text)
}

func (r *Renderer) drawPrompt(p *statepkg.Prompt, state *statepkg.AppState, y, w int, style tcell.Style) {
	titleStyle := style.Foreground(r.theme.PromptFg).Bold(true)

	if p.Kind == statepkg.PromptConfirmDelete {
		question := "Delete " + textutil.SanitizeTerminalText(state.DisplayPath(p.Target)) + "? (y/n)"
		endX := r.drawTextLine(0, y, w, r.truncateTextToWidth(question, w), titleStyle)
		r.fillLine(endX, y, w, style)
		return
	}

	x := r.drawTextLine(0, y, w, p.Kind.Title()+": ", titleStyle)
	cursorStyle := style.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)

	runes := []rune(textutil.SanitizeTerminalText(p.Input))
	cursor := min(max(p.Cursor, 0), len(runes))
	for idx, ru := range runes {
		if x >= w {
			break
		}
		runeStyle := style
		if idx == cursor {
			runeStyle = cursorStyle
		}
		x = r.drawStyledRune(x, y, w, ru, runeStyle)
	}
	if cursor == len(runes) && x < w {
		x = r.drawStyledRune(x, y, w, ' ', cursorStyle)
	}
	r.fillLine(x, y, w, style)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
