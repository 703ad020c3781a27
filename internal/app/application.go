package app

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-git/go-billy/v5"
	"github.com/kk-code-lab/rfold/internal/rules"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	"github.com/kk-code-lab/rfold/internal/tree"
	inputui "github.com/kk-code-lab/rfold/internal/ui/input"
	renderui "github.com/kk-code-lab/rfold/internal/ui/render"
	"github.com/kk-code-lab/rfold/internal/watch"
)

// Options wires the browser to a workspace.
type Options struct {
	// Root is the absolute OS path of the browsed directory.
	Root string
	// FS is rooted at Root; create, rename and delete go through it.
	FS    billy.Filesystem
	Tree  *tree.Tree
	Store *rules.Store

	// ReloadRules re-resolves configuration. A non-nil set is published
	// even when an error is returned alongside it.
	ReloadRules func() (*rules.Set, error)
	// ConfigFile is the workspace configuration file as a path under Root
	// ("/.rfold.yaml"). Changes to it trigger a rules reload.
	ConfigFile string
	// Watch enables filesystem change notifications.
	Watch bool
	// Warning is shown on the status line until the first key press, e.g.
	// rules rejected while loading configuration.
	Warning error
}

// Application represents the running app.
type Application struct {
	ctx            context.Context
	screen         tcell.Screen
	state          *statepkg.AppState
	reducer        *statepkg.StateReducer
	renderer       *renderui.Renderer
	input          *inputui.InputHandler
	actionCh       chan statepkg.Action
	shouldQuit     bool
	root           string
	fs             billy.Filesystem
	store          *rules.Store
	reloadRules    func() (*rules.Set, error)
	configFile     string
	watcher        *watch.Watcher
	clipboardCmd   []string
	clipboardAvail bool
	editorCmd      []string
	lastClickRow   int
	lastClickTime  time.Time
}

// Close cleans up resources.
func (app *Application) Close() error {
	var err error
	if app.watcher != nil {
		err = app.watcher.Close()
	}
	close(app.actionCh)
	app.screen.Fini()
	return err
}

// Root returns the browsed directory.
func (app *Application) Root() string {
	return app.root
}
