package app

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	"github.com/kk-code-lab/rfold/internal/ui/input"
	renderui "github.com/kk-code-lab/rfold/internal/ui/render"
	"github.com/kk-code-lab/rfold/internal/watch"
	"github.com/rs/zerolog"
)

const (
	doubleClickThreshold = 300 * time.Millisecond
	yankFlashDuration    = 100 * time.Millisecond
	// watchSettle is how long change notifications are collected before the
	// tree is rebuilt once for all of them.
	watchSettle = 150 * time.Millisecond
)

// NewApplication opens the terminal and loads the initial tree.
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	// Parse mouse sequences so modified clicks don't leak as key events.
	screen.EnableMouse()

	app, err := newApplication(ctx, screen, opts)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	if opts.Watch {
		w, err := watch.New(ctx, opts.Root)
		if err != nil {
			// Browsing still works; refresh is manual.
			zerolog.Ctx(ctx).Warn().Err(err).Msg("file watching disabled")
		} else {
			app.watcher = w
		}
	}
	return app, nil
}

func newApplication(ctx context.Context, screen tcell.Screen, opts Options) (*Application, error) {
	clipboardCmd, clipboardAvail := detectClipboard()
	editorCmd, editorAvail := detectEditorCommand()

	state := statepkg.NewAppState("/")
	state.RootLabel = opts.Root
	state.ShowHidden = opts.Tree.ShowHidden()
	state.ClipboardAvailable = clipboardAvail
	state.EditorAvailable = editorAvail
	w, h := screen.Size()
	state.ScreenWidth = w
	state.ScreenHeight = h

	actionCh := make(chan statepkg.Action, 10)
	reducer := statepkg.NewStateReducer(ctx, opts.Tree, opts.FS)
	inputHandler := input.NewInputHandler(actionCh)

	if err := reducer.Load(state); err != nil {
		if len(state.Rows) == 0 && !fsutil.IsPartial(err) {
			return nil, err
		}
		state.LastError = err
	}
	if opts.Warning != nil && state.LastError == nil {
		state.LastError = opts.Warning
	}

	app := &Application{
		ctx:            ctx,
		screen:         screen,
		state:          state,
		reducer:        reducer,
		renderer:       renderui.NewRenderer(screen),
		input:          inputHandler,
		actionCh:       actionCh,
		root:           opts.Root,
		fs:             opts.FS,
		store:          opts.Store,
		reloadRules:    opts.ReloadRules,
		configFile:     opts.ConfigFile,
		clipboardCmd:   clipboardCmd,
		clipboardAvail: clipboardAvail,
		editorCmd:      editorCmd,
	}
	inputHandler.SetState(state)
	return app, nil
}

func (app *Application) Run() {
	defer app.screen.Fini()

	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	var watchEvents <-chan watch.Event
	var watchErrors <-chan error
	if app.watcher != nil {
		watchEvents = app.watcher.Events()
		watchErrors = app.watcher.Errors()
	}
	var settleCh <-chan time.Time
	var batch changeBatch

	const animationInterval = 50 * time.Millisecond
	var animationTimer *time.Timer
	var animationCh <-chan time.Time

	startAnimation := func() {
		if animationTimer == nil {
			animationTimer = time.NewTimer(animationInterval)
		} else {
			animationTimer.Reset(animationInterval)
		}
		animationCh = animationTimer.C
	}

	stopAnimation := func() {
		if animationTimer == nil {
			return
		}
		animationTimer.Stop()
		animationCh = nil
	}

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		if app.shouldAnimate() {
			if animationCh == nil {
				startAnimation()
			}
		} else {
			stopAnimation()
		}

		select {
		case <-app.ctx.Done():
			app.shouldQuit = true
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case <-animationCh:
			animationCh = nil
			renderPending = true
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				break
			}
			batch.add(ev, app.configFile)
			if settleCh == nil {
				settleCh = time.After(watchSettle)
			}
		case err := <-watchErrors:
			zerolog.Ctx(app.ctx).Warn().Err(err).Msg("watch")
		case <-settleCh:
			settleCh = nil
			if app.applyChanges(batch) {
				renderPending = true
			}
			batch = changeBatch{}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}

	stopAnimation()
}

// changeBatch accumulates watch events between rebuilds.
type changeBatch struct {
	count  int
	config bool
}

func (b *changeBatch) add(ev watch.Event, configFile string) {
	b.count++
	if configFile != "" && ev.Path == configFile {
		b.config = true
	}
}

func (app *Application) applyChanges(b changeBatch) bool {
	if b.count == 0 {
		return false
	}
	zerolog.Ctx(app.ctx).Debug().Int("events", b.count).Bool("config", b.config).Msg("files changed")
	if b.config {
		// Publishing the new rules drops every cached listing.
		return app.reloadConfig()
	}
	return app.reduce(statepkg.FilesChangedAction{})
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey, *tcell.EventResize:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
		return true
	case *tcell.EventMouse:
		return app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
}

// handleMouse maps primary clicks on the list to selection, double clicks to
// activation and the wheel to movement.
func (app *Application) handleMouse(ev *tcell.EventMouse) bool {
	if app.state == nil || app.state.HelpVisible || app.state.Prompt != nil {
		return false
	}

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		app.actionCh <- statepkg.NavigateUpAction{}
		return true
	case buttons&tcell.WheelDown != 0:
		app.actionCh <- statepkg.NavigateDownAction{}
		return true
	case buttons&tcell.Button1 == 0:
		return false
	}

	_, y := ev.Position()
	const listStartY = 1
	bottomLimit := app.state.ScreenHeight - 2 // status and footer lines
	if y < listStartY || y >= bottomLimit {
		return false
	}

	displayIdx := app.state.ScrollOffset + y - listStartY
	if displayIdx < 0 || displayIdx >= len(app.state.Rows) {
		return false
	}

	doubleClick := app.lastClickRow == displayIdx && time.Since(app.lastClickTime) <= doubleClickThreshold
	app.lastClickRow = displayIdx
	app.lastClickTime = time.Now()
	if doubleClick {
		// A third click starts a new pair.
		app.lastClickTime = time.Time{}
	}

	app.actionCh <- statepkg.MouseSelectAction{DisplayIndex: displayIdx}
	if doubleClick {
		app.actionCh <- statepkg.ActivateAction{}
	}
	return true
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) shouldAnimate() bool {
	if app.state == nil || app.state.LastYankTime.IsZero() {
		return false
	}
	return time.Since(app.state.LastYankTime) < yankFlashDuration
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	case statepkg.YankPathAction:
		return app.handleClipboard()
	case statepkg.ActivateAction:
		return app.handleActivate()
	case statepkg.OpenEditorAction:
		return app.handleEditorOpen()
	case statepkg.ReloadConfigAction:
		return app.reloadConfig()
	}

	return app.reduce(action)
}

func (app *Application) reduce(action statepkg.Action) bool {
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
	}
	return true
}
