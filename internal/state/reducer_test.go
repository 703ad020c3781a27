package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/kk-code-lab/rfold/internal/rules"
	"github.com/kk-code-lab/rfold/internal/tree"
)

type fixture struct {
	t       *testing.T
	fs      billy.Filesystem
	store   *rules.Store
	state   *AppState
	reducer *StateReducer
}

func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()
	fsys := memfs.New()
	for _, name := range files {
		if strings.HasSuffix(name, "/") {
			if err := fsys.MkdirAll(strings.TrimSuffix(name, "/"), 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", name, err)
			}
			continue
		}
		if err := util.WriteFile(fsys, name, nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	set, err := rules.New(rules.Rule{Trigger: ".ts", Hidden: []string{".js"}})
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	store := rules.NewStore(set)

	state := NewAppState("/")
	state.ScreenWidth = 80
	state.ScreenHeight = 24
	reducer := NewStateReducer(context.Background(), tree.New(fsys, "/", store), fsys)
	if err := reducer.Load(state); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return &fixture{t: t, fs: fsys, store: store, state: state, reducer: reducer}
}

func (f *fixture) do(actions ...Action) {
	f.t.Helper()
	for _, action := range actions {
		if _, err := f.reducer.Reduce(f.state, action); err != nil {
			f.t.Fatalf("%T: %v", action, err)
		}
	}
}

func (f *fixture) selectName(name string) {
	f.t.Helper()
	for i, row := range f.state.Rows {
		if row.Entry.Name == name {
			f.state.SelectedIndex = i
			return
		}
	}
	f.t.Fatalf("row %q not found in %v", name, rowNames(f.state))
}

func (f *fixture) typeText(text string) {
	f.t.Helper()
	for _, ch := range text {
		f.do(PromptCharAction{Char: ch})
	}
}

func rowNames(state *AppState) []string {
	out := make([]string, len(state.Rows))
	for i, row := range state.Rows {
		out[i] = strings.Repeat("  ", row.Depth) + row.Entry.Name
	}
	return out
}

func assertRows(t *testing.T, state *AppState, want ...string) {
	t.Helper()
	got := rowNames(state)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("rows = %q, want %q", got, want)
	}
}

func (f *fixture) exists(path string) bool {
	_, err := f.fs.Lstat(path)
	return err == nil
}

// ===== LOADING =====

func TestLoadListsFoldedRoot(t *testing.T) {
	f := newFixture(t, "/src/", "/src/b.ts", "/src/b.js", "/a.ts", "/a.js", "/readme.md")
	assertRows(t, f.state, "src", "a.ts", "readme.md")

	if f.state.CurrentPath() != "/src" {
		t.Errorf("CurrentPath = %q, want /src", f.state.CurrentPath())
	}
}

func TestLoadMissingRoot(t *testing.T) {
	fsys := memfs.New()
	state := NewAppState("/nope")
	reducer := NewStateReducer(context.Background(), tree.New(fsys, "/nope", nil), fsys)

	if err := reducer.Load(state); err == nil {
		t.Fatal("expected an error for a missing root")
	}
	if state.Rows != nil {
		t.Errorf("rows = %v, want none", rowNames(state))
	}
	if state.CurrentPath() != "/nope" {
		t.Errorf("CurrentPath = %q, want the root", state.CurrentPath())
	}
}

func TestLoadKeepsSelectionByPath(t *testing.T) {
	f := newFixture(t, "/a.ts", "/readme.md")
	f.selectName("readme.md")

	if err := util.WriteFile(f.fs, "/0.txt", nil, 0o644); err != nil {
		t.Fatal(err)
	}
	f.do(FilesChangedAction{})

	assertRows(t, f.state, "0.txt", "a.ts", "readme.md")
	if f.state.SelectedIndex != 2 {
		t.Errorf("selection = %d, want 2 (readme.md)", f.state.SelectedIndex)
	}
}

func TestRefreshPicksUpRemovedFiles(t *testing.T) {
	f := newFixture(t, "/a.ts", "/b.txt", "/c.txt")
	f.selectName("c.txt")

	if err := f.fs.Remove("/c.txt"); err != nil {
		t.Fatal(err)
	}
	f.do(RefreshAction{})

	assertRows(t, f.state, "a.ts", "b.txt")
	if f.state.SelectedIndex != 1 {
		t.Errorf("selection = %d, want clamped to 1", f.state.SelectedIndex)
	}
}

// ===== NAVIGATION =====

func TestNavigateStopsAtEdges(t *testing.T) {
	f := newFixture(t, "/a.txt", "/b.txt")

	f.do(NavigateUpAction{})
	if f.state.SelectedIndex != 0 {
		t.Fatalf("selection = %d, want 0", f.state.SelectedIndex)
	}
	f.do(NavigateDownAction{}, NavigateDownAction{})
	if f.state.SelectedIndex != 1 {
		t.Fatalf("selection = %d, want 1", f.state.SelectedIndex)
	}
	f.do(NavigateUpAction{})
	if f.state.SelectedIndex != 0 {
		t.Fatalf("selection = %d, want 0", f.state.SelectedIndex)
	}
}

func TestExpandAndCollapseContainer(t *testing.T) {
	f := newFixture(t, "/src/", "/a.ts", "/a.js", "/readme.md")
	f.selectName("a.ts")

	f.do(ExpandAction{})
	assertRows(t, f.state, "src", "a.ts", "  a.js", "readme.md")
	if f.state.SelectedIndex != 1 {
		t.Fatalf("expanding should keep the container selected, got %d", f.state.SelectedIndex)
	}

	f.do(ExpandAction{})
	if f.state.CurrentPath() != "/a.js" {
		t.Fatalf("second expand should step into the container, at %q", f.state.CurrentPath())
	}

	f.do(CollapseAction{})
	if f.state.CurrentPath() != "/a.ts" {
		t.Fatalf("collapse on a child should select the container, at %q", f.state.CurrentPath())
	}

	f.do(CollapseAction{})
	assertRows(t, f.state, "src", "a.ts", "readme.md")
}

func TestActivateTogglesDirectory(t *testing.T) {
	f := newFixture(t, "/src/", "/src/b.ts", "/src/b.js", "/readme.md")

	f.do(ActivateAction{})
	assertRows(t, f.state, "src", "  b.ts", "readme.md")

	f.selectName("b.ts")
	f.do(ActivateAction{})
	assertRows(t, f.state, "src", "  b.ts", "    b.js", "readme.md")

	f.selectName("readme.md")
	f.do(ActivateAction{})
	assertRows(t, f.state, "src", "  b.ts", "    b.js", "readme.md")

	f.selectName("src")
	f.do(ActivateAction{})
	assertRows(t, f.state, "src", "readme.md")
}

func TestScrollFollowsSelection(t *testing.T) {
	var files []string
	for i := 0; i < 20; i++ {
		files = append(files, fmt.Sprintf("/f%02d.txt", i))
	}
	f := newFixture(t, files...)
	f.do(ResizeAction{Width: 40, Height: 10})

	f.do(ScrollToEndAction{})
	if f.state.SelectedIndex != 19 {
		t.Fatalf("selection = %d, want 19", f.state.SelectedIndex)
	}
	if want := 20 - f.state.ListHeight(); f.state.ScrollOffset != want {
		t.Fatalf("scroll = %d, want %d", f.state.ScrollOffset, want)
	}

	f.do(ScrollPageUpAction{})
	if f.state.SelectedIndex != 19-f.state.ListHeight() {
		t.Fatalf("page up selection = %d", f.state.SelectedIndex)
	}

	f.do(ScrollToStartAction{})
	if f.state.SelectedIndex != 0 || f.state.ScrollOffset != 0 {
		t.Fatalf("start: selection=%d scroll=%d", f.state.SelectedIndex, f.state.ScrollOffset)
	}

	f.do(ScrollPageDownAction{})
	if f.state.SelectedIndex != f.state.ListHeight() {
		t.Fatalf("page down selection = %d", f.state.SelectedIndex)
	}
}

func TestMouseSelectIgnoresOutOfRange(t *testing.T) {
	f := newFixture(t, "/a.txt", "/b.txt")

	f.do(MouseSelectAction{DisplayIndex: 1})
	if f.state.SelectedIndex != 1 {
		t.Fatalf("selection = %d, want 1", f.state.SelectedIndex)
	}
	f.do(MouseSelectAction{DisplayIndex: 5})
	if f.state.SelectedIndex != 1 {
		t.Fatalf("selection = %d, want unchanged", f.state.SelectedIndex)
	}
}

// ===== VIEW =====

func TestToggleHiddenFiles(t *testing.T) {
	f := newFixture(t, "/.env", "/a.ts")
	assertRows(t, f.state, "a.ts")

	f.do(ToggleHiddenFilesAction{})
	if !f.state.ShowHidden {
		t.Fatal("ShowHidden should be set")
	}
	if len(f.state.Rows) != 2 {
		t.Fatalf("rows = %v, want dotfile listed", rowNames(f.state))
	}
	if f.state.CurrentPath() != "/a.ts" {
		t.Errorf("selection moved to %q", f.state.CurrentPath())
	}

	f.do(ToggleHiddenFilesAction{})
	assertRows(t, f.state, "a.ts")
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, "/a.txt")
	f.do(HelpToggleAction{})
	if !f.state.HelpVisible {
		t.Fatal("help should be visible")
	}
	f.do(HelpHideAction{})
	if f.state.HelpVisible {
		t.Fatal("help should be hidden")
	}
}

func TestRulesReloaded(t *testing.T) {
	f := newFixture(t, "/a.ts", "/a.js")
	assertRows(t, f.state, "a.ts")

	f.store.Publish(rules.Empty())
	f.do(RulesReloadedAction{})
	assertRows(t, f.state, "a.js", "a.ts")
	if f.state.StatusMessage != "configuration reloaded" {
		t.Errorf("status = %q", f.state.StatusMessage)
	}
}

func TestRulesReloadFailure(t *testing.T) {
	f := newFixture(t, "/a.ts", "/a.js")
	boom := errors.New("boom")

	_, err := f.reducer.Reduce(f.state, RulesReloadedAction{Err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	assertRows(t, f.state, "a.ts")
}

func TestRulesReloadFailureStillRereadsFiles(t *testing.T) {
	f := newFixture(t, "/a.ts")
	if err := util.WriteFile(f.fs, "/b.md", nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := f.reducer.Reduce(f.state, RulesReloadedAction{Err: errors.New("yaml: bad indent")})
	if err == nil {
		t.Fatal("expected reload error")
	}
	assertRows(t, f.state, "a.ts", "b.md")
}

// ===== PROMPTS =====

func TestNewFileInSelectedDirectory(t *testing.T) {
	f := newFixture(t, "/src/", "/readme.md")

	f.do(StartPromptAction{Kind: PromptNewFile})
	if f.state.Prompt == nil || f.state.Prompt.Dir != "/src" {
		t.Fatalf("prompt = %+v, want dir /src", f.state.Prompt)
	}
	f.typeText("c.ts")
	f.do(PromptSubmitAction{})

	if !f.exists("/src/c.ts") {
		t.Fatal("/src/c.ts was not created")
	}
	if f.state.Prompt != nil {
		t.Fatal("prompt should close on submit")
	}
	assertRows(t, f.state, "src", "  c.ts", "readme.md")
	if f.state.CurrentPath() != "/src/c.ts" {
		t.Errorf("selection = %q, want the new file", f.state.CurrentPath())
	}
	if f.state.StatusMessage != "created c.ts" {
		t.Errorf("status = %q", f.state.StatusMessage)
	}
}

func TestNewFileNextToSelectedFile(t *testing.T) {
	f := newFixture(t, "/src/", "/a.ts", "/a.js")
	f.selectName("a.ts")
	f.do(ExpandAction{}, ExpandAction{})
	if f.state.CurrentPath() != "/a.js" {
		t.Fatalf("expected hidden child selected, at %q", f.state.CurrentPath())
	}

	f.do(StartPromptAction{Kind: PromptNewFile})
	f.typeText("z.txt")
	f.do(PromptSubmitAction{})

	if !f.exists("/z.txt") {
		t.Fatal("/z.txt was not created next to the container")
	}
}

func TestNewFolderCreatesParents(t *testing.T) {
	f := newFixture(t, "/readme.md")

	f.do(StartPromptAction{Kind: PromptNewFolder})
	f.typeText("x/y")
	f.do(PromptSubmitAction{})

	if !f.exists("/x/y") {
		t.Fatal("/x/y was not created")
	}
	assertRows(t, f.state, "x", "  y", "readme.md")
	if f.state.CurrentPath() != "/x/y" {
		t.Errorf("selection = %q, want /x/y", f.state.CurrentPath())
	}
}

func TestNewFileNameTaken(t *testing.T) {
	f := newFixture(t, "/readme.md")

	f.do(StartPromptAction{Kind: PromptNewFile})
	f.typeText("readme.md")
	f.do(PromptSubmitAction{})

	if f.state.StatusMessage != "filename already taken: readme.md" {
		t.Fatalf("status = %q", f.state.StatusMessage)
	}
	if f.state.LastError != nil {
		t.Fatalf("unexpected error %v", f.state.LastError)
	}
}

func TestEmptyNameIsIgnored(t *testing.T) {
	f := newFixture(t, "/readme.md")

	f.do(StartPromptAction{Kind: PromptNewFile})
	f.typeText("   ")
	f.do(PromptSubmitAction{})

	assertRows(t, f.state, "readme.md")
}

func TestRenameStartsBeforeExtension(t *testing.T) {
	f := newFixture(t, "/src/", "/a.ts", "/a.js", "/readme.md")
	f.selectName("a.ts")

	f.do(StartPromptAction{Kind: PromptRename})
	p := f.state.Prompt
	if p == nil || p.Input != "a.ts" || p.Cursor != 1 {
		t.Fatalf("prompt = %+v, want input a.ts with cursor 1", p)
	}

	f.do(PromptBackspaceAction{})
	f.typeText("c")
	f.do(PromptSubmitAction{})

	if f.exists("/a.ts") || !f.exists("/c.ts") {
		t.Fatal("a.ts was not renamed to c.ts")
	}
	assertRows(t, f.state, "src", "a.js", "c.ts", "readme.md")
	if f.state.CurrentPath() != "/c.ts" {
		t.Errorf("selection = %q, want /c.ts", f.state.CurrentPath())
	}
}

func TestRenameKeepsExpansion(t *testing.T) {
	f := newFixture(t, "/src/", "/src/a.txt")
	f.do(ExpandAction{})
	assertRows(t, f.state, "src", "  a.txt")

	f.do(StartPromptAction{Kind: PromptRename})
	f.do(PromptMoveCursorAction{Direction: "end"})
	f.typeText("2")
	f.do(PromptSubmitAction{})

	assertRows(t, f.state, "src2", "  a.txt")
}

func TestDeleteDirectoryRecursively(t *testing.T) {
	f := newFixture(t, "/src/", "/src/b.ts", "/a.ts", "/readme.md")

	f.do(StartPromptAction{Kind: PromptConfirmDelete})
	if f.state.Prompt == nil || f.state.Prompt.Target != "/src" {
		t.Fatalf("prompt = %+v, want target /src", f.state.Prompt)
	}
	f.do(PromptCharAction{Char: 'x'})
	if f.state.Prompt.Input != "" {
		t.Fatalf("confirmation prompt should not take input, got %q", f.state.Prompt.Input)
	}
	f.do(PromptSubmitAction{})

	if f.exists("/src") {
		t.Fatal("/src still exists")
	}
	assertRows(t, f.state, "a.ts", "readme.md")
	if f.state.StatusMessage != "deleted src" {
		t.Errorf("status = %q", f.state.StatusMessage)
	}
}

func TestPromptCancel(t *testing.T) {
	f := newFixture(t, "/readme.md")

	f.do(StartPromptAction{Kind: PromptConfirmDelete}, PromptCancelAction{})
	if f.state.Prompt != nil {
		t.Fatal("prompt should be closed")
	}
	if !f.exists("/readme.md") {
		t.Fatal("cancel must not delete")
	}
}

func TestPromptNeedsSelection(t *testing.T) {
	fsys := memfs.New()
	if err := fsys.MkdirAll("/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	state := NewAppState("/empty")
	reducer := NewStateReducer(context.Background(), tree.New(fsys, "/empty", nil), fsys)
	if err := reducer.Load(state); err != nil {
		t.Fatal(err)
	}

	if _, err := reducer.Reduce(state, StartPromptAction{Kind: PromptRename}); err != nil {
		t.Fatal(err)
	}
	if state.Prompt != nil {
		t.Fatal("rename without a selection should not open a prompt")
	}

	if _, err := reducer.Reduce(state, StartPromptAction{Kind: PromptNewFile}); err != nil {
		t.Fatal(err)
	}
	if state.Prompt == nil || state.Prompt.Dir != "/empty" {
		t.Fatalf("prompt = %+v, want dir /empty", state.Prompt)
	}
}

func TestDisplayPath(t *testing.T) {
	state := NewAppState("/")
	if got := state.DisplayPath("/src/a.ts"); got != "/src/a.ts" {
		t.Fatalf("without a label got %q", got)
	}

	state.RootLabel = "/home/me/project"
	if got := state.DisplayPath("/src/a.ts"); got != "/home/me/project/src/a.ts" {
		t.Fatalf("got %q", got)
	}
	if got := state.DisplayPath("/"); got != "/home/me/project" {
		t.Fatalf("root got %q", got)
	}
}
