package render

import (
	"slices"
	"strings"
	"testing"

	statepkg "github.com/kk-code-lab/rfold/internal/state"
)

func TestBuildFooterHelpSegments_DefaultMode(t *testing.T) {
	state := &statepkg.AppState{
		EditorAvailable:    true,
		ClipboardAvailable: true,
	}

	got := buildFooterHelpSegments(state)
	want := []string{
		"↑/↓: move",
		"→/←: open/close",
		"↵: toggle",
		"n/N: new file/folder",
		"m: rename",
		"d: delete",
		"r: refresh",
		".: toggle hidden",
		"y: yank path",
		"e: edit file",
		"?: help",
		"q: quit",
	}

	if !slices.Equal(got, want) {
		t.Fatalf("default help mismatch\nwant: %#v\n got: %#v", want, got)
	}
}

func TestBuildFooterHelpSegments_ShowsHiddenState(t *testing.T) {
	state := &statepkg.AppState{ShowHidden: true}

	got := buildFooterHelpSegments(state)
	if !slices.Contains(got, ".: toggle visible") {
		t.Fatalf("expected hidden toggle to report visible, got %#v", got)
	}
	if slices.Contains(got, "y: yank path") || slices.Contains(got, "e: edit file") {
		t.Fatalf("unavailable commands listed: %#v", got)
	}
}

func TestBuildFooterHelpSegments_PromptMode(t *testing.T) {
	state := &statepkg.AppState{
		Prompt:             &statepkg.Prompt{Kind: statepkg.PromptRename},
		ClipboardAvailable: true,
	}

	got := buildFooterHelpSegments(state)
	want := []string{
		"type: name",
		"↵: confirm",
		"Esc: cancel",
		"←/→: move cursor",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("prompt help mismatch\nwant: %#v\n got: %#v", want, got)
	}
}

func TestBuildFooterHelpSegments_ConfirmDelete(t *testing.T) {
	state := &statepkg.AppState{
		Prompt: &statepkg.Prompt{Kind: statepkg.PromptConfirmDelete},
	}

	got := buildFooterHelpSegments(state)
	if !slices.Equal(got, []string{"y: delete", "n/Esc: cancel"}) {
		t.Fatalf("confirm help mismatch: %#v", got)
	}
}

func TestBuildFooterHelpText_Padding(t *testing.T) {
	text := buildFooterHelpText(&statepkg.AppState{})
	if !strings.HasPrefix(text, " ↑/↓: move  ") || !strings.HasSuffix(text, "q: quit ") {
		t.Fatalf("unexpected padding in %q", text)
	}
}
