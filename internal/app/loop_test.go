package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	"github.com/kk-code-lab/rfold/internal/rules"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	"github.com/kk-code-lab/rfold/internal/tree"
	"github.com/kk-code-lab/rfold/internal/watch"
)

func drain(ch chan statepkg.Action) []statepkg.Action {
	var out []statepkg.Action
	for {
		select {
		case a := <-ch:
			out = append(out, a)
		default:
			return out
		}
	}
}

func TestHandleMouseSelectsListRow(t *testing.T) {
	app := newTestApplication(t, "/a.ts", "/b.ts", "/c.ts")

	app.handleMouse(tcell.NewEventMouse(5, 2, tcell.Button1, tcell.ModNone))
	got := drain(app.actionCh)
	if len(got) != 1 || got[0] != (statepkg.MouseSelectAction{DisplayIndex: 1}) {
		t.Fatalf("expected select of row 1, got %#v", got)
	}
}

func TestHandleMouseDoubleClickActivates(t *testing.T) {
	app := newTestApplication(t, "/a.ts", "/b.ts")
	click := tcell.NewEventMouse(5, 1, tcell.Button1, tcell.ModNone)

	app.handleMouse(click)
	app.handleMouse(click)
	got := drain(app.actionCh)
	want := []statepkg.Action{
		statepkg.MouseSelectAction{DisplayIndex: 0},
		statepkg.MouseSelectAction{DisplayIndex: 0},
		statepkg.ActivateAction{},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d: expected %#v, got %#v", i, want[i], got[i])
		}
	}

	// A third click does not pair with the second.
	app.handleMouse(click)
	if got := drain(app.actionCh); len(got) != 1 {
		t.Fatalf("expected single select, got %#v", got)
	}
}

func TestHandleMouseIgnoresChrome(t *testing.T) {
	app := newTestApplication(t, "/a.ts")
	h := app.state.ScreenHeight

	for _, y := range []int{0, h - 2, h - 1} {
		if app.handleMouse(tcell.NewEventMouse(1, y, tcell.Button1, tcell.ModNone)) {
			t.Fatalf("y=%d: expected click to be ignored", y)
		}
	}
	// Below the last row.
	if app.handleMouse(tcell.NewEventMouse(1, 5, tcell.Button1, tcell.ModNone)) {
		t.Fatalf("expected click past the rows to be ignored")
	}
	if got := drain(app.actionCh); len(got) != 0 {
		t.Fatalf("expected no actions, got %#v", got)
	}
}

func TestHandleMouseIgnoredWhilePrompting(t *testing.T) {
	app := newTestApplication(t, "/a.ts")
	app.state.Prompt = &statepkg.Prompt{Kind: statepkg.PromptNewFile}

	app.handleMouse(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	if got := drain(app.actionCh); len(got) != 0 {
		t.Fatalf("expected no actions, got %#v", got)
	}
}

func TestHandleMouseWheelMoves(t *testing.T) {
	app := newTestApplication(t, "/a.ts", "/b.ts")

	app.handleMouse(tcell.NewEventMouse(1, 1, tcell.WheelDown, tcell.ModNone))
	app.handleMouse(tcell.NewEventMouse(1, 1, tcell.WheelUp, tcell.ModNone))
	got := drain(app.actionCh)
	if len(got) != 2 || got[0] != (statepkg.NavigateDownAction{}) || got[1] != (statepkg.NavigateUpAction{}) {
		t.Fatalf("unexpected wheel actions %#v", got)
	}
}

func TestHandleActionQuit(t *testing.T) {
	app := newTestApplication(t, "/a.ts")
	if app.handleAction(statepkg.QuitAction{}) {
		t.Fatalf("quit should not request a redraw")
	}
	if !app.shouldQuit {
		t.Fatalf("expected shouldQuit")
	}
}

func TestProcessActionsDrainsQueue(t *testing.T) {
	app := newTestApplication(t, "/a.ts", "/b.ts", "/c.ts")
	app.actionCh <- statepkg.NavigateDownAction{}
	app.actionCh <- statepkg.NavigateDownAction{}

	if !app.processActions() {
		t.Fatalf("expected a redraw")
	}
	if app.state.SelectedIndex != 2 {
		t.Fatalf("SelectedIndex = %d, want 2", app.state.SelectedIndex)
	}
	if app.processActions() {
		t.Fatalf("expected nothing left to process")
	}
}

func TestShouldAnimateAfterYank(t *testing.T) {
	app := newTestApplication(t, "/a.ts")
	if app.shouldAnimate() {
		t.Fatalf("expected no animation before a yank")
	}
	app.state.LastYankTime = time.Now()
	if !app.shouldAnimate() {
		t.Fatalf("expected the yank flash to animate")
	}
	app.state.LastYankTime = time.Now().Add(-time.Second)
	if app.shouldAnimate() {
		t.Fatalf("expected the flash to be over")
	}
}

func TestChangeBatchDetectsConfigFile(t *testing.T) {
	var b changeBatch
	b.add(watch.Event{Path: "/src/a.ts", Op: watch.Changed}, "/.rfold.yaml")
	if b.count != 1 || b.config {
		t.Fatalf("unexpected batch %+v", b)
	}
	b.add(watch.Event{Path: "/.rfold.yaml", Op: watch.Changed}, "/.rfold.yaml")
	if b.count != 2 || !b.config {
		t.Fatalf("unexpected batch %+v", b)
	}

	var none changeBatch
	none.add(watch.Event{Path: "/.rfold.yaml"}, "")
	if none.config {
		t.Fatalf("config change reported without a config file")
	}
}

func TestApplyChangesRebuildsTree(t *testing.T) {
	app, fsys := newTestApplicationFS(t, "/a.ts")
	if app.applyChanges(changeBatch{}) {
		t.Fatalf("empty batch should not redraw")
	}

	if err := util.WriteFile(fsys, "/b.md", nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertRowNames(t, app, "a.ts")

	if !app.applyChanges(changeBatch{count: 1}) {
		t.Fatalf("expected a redraw")
	}
	assertRowNames(t, app, "a.ts", "b.md")
}

func TestApplyChangesReloadsConfig(t *testing.T) {
	app := newTestApplication(t, "/a.ts", "/a.js")
	calls := 0
	app.reloadRules = func() (*rules.Set, error) {
		calls++
		return rules.Empty(), nil
	}

	app.applyChanges(changeBatch{count: 2, config: true})
	if calls != 1 {
		t.Fatalf("reloadRules called %d times, want 1", calls)
	}
	assertRowNames(t, app, "a.js", "a.ts")
}

func TestApplyChangesRebuildsWhenConfigReloadFails(t *testing.T) {
	app, fsys := newTestApplicationFS(t, "/a.ts")
	app.reloadRules = func() (*rules.Set, error) {
		return nil, errors.New("yaml: mid-edit")
	}
	if err := util.WriteFile(fsys, "/b.md", nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	app.applyChanges(changeBatch{count: 2, config: true})
	assertRowNames(t, app, "a.ts", "b.md")
	if app.state.LastError == nil {
		t.Fatal("expected the reload error on the status line")
	}
}

func TestNewApplicationFailsOnMissingRoot(t *testing.T) {
	fsys := memfs.New()
	store := rules.NewStore(nil)
	_, err := newApplication(context.Background(), newTestScreen(t), Options{
		Root:  "/nowhere",
		FS:    fsys,
		Tree:  tree.New(fsys, "/missing", store),
		Store: store,
	})
	if !errors.Is(err, fsutil.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNewApplicationState(t *testing.T) {
	app := newTestApplication(t, "/a.ts")
	if app.state.RootLabel != "/home/me/project" || app.state.Root != "/" {
		t.Fatalf("unexpected root %q labelled %q", app.state.Root, app.state.RootLabel)
	}
	if app.state.ScreenWidth != 80 || app.state.ScreenHeight != 24 {
		t.Fatalf("unexpected size %dx%d", app.state.ScreenWidth, app.state.ScreenHeight)
	}
	if got := app.osPath("/src/a.ts"); got != "/home/me/project/src/a.ts" {
		t.Fatalf("osPath = %q", got)
	}
}

func TestNewApplicationShowsWarning(t *testing.T) {
	fsys := memfs.New()
	store := rules.NewStore(nil)
	warning := errors.New("rule \".ts\": duplicate trigger suffix")
	app, err := newApplication(context.Background(), newTestScreen(t), Options{
		Root:    "/work",
		FS:      fsys,
		Tree:    tree.New(fsys, "/", store),
		Store:   store,
		Warning: warning,
	})
	if err != nil {
		t.Fatalf("newApplication: %v", err)
	}
	if !errors.Is(app.state.LastError, warning) {
		t.Fatalf("LastError = %v, want warning", app.state.LastError)
	}
}
