package app

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	fsutil "github.com/kk-code-lab/rfold/internal/fs"
	statepkg "github.com/kk-code-lab/rfold/internal/state"
	"github.com/kk-code-lab/rfold/internal/tree"
	"github.com/rs/zerolog"
)

var commandBuilder = exec.Command

func (app *Application) handleClipboard() bool {
	if !app.clipboardAvail || len(app.clipboardCmd) == 0 {
		return false
	}
	target := normalizeClipboardPath(app.state.DisplayPath(app.state.CurrentPath()), runtime.GOOS)
	cmd := commandBuilder(app.clipboardCmd[0], app.clipboardCmd[1:]...)
	cmd.Stdin = strings.NewReader(target)
	if out, err := cmd.CombinedOutput(); err != nil {
		app.state.LastError = commandError(app.clipboardCmd[0], err, out)
		return true
	}
	app.state.LastYankTime = time.Now()
	return true
}

func normalizeClipboardPath(inputPath string, goos string) string {
	if strings.EqualFold(goos, "windows") {
		cleaned := filepath.Clean(inputPath)
		return strings.ReplaceAll(cleaned, "/", `\`)
	}
	return path.Clean(filepath.ToSlash(inputPath))
}

func commandError(name string, err error, out []byte) error {
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// handleActivate opens files in the editor and hands everything else to the
// reducer, which toggles directories and containers.
func (app *Application) handleActivate() bool {
	row := app.state.CurrentRow()
	if row != nil && row.Node.State == tree.Leaf && !row.Entry.IsDir() {
		return app.handleEditorOpen()
	}
	return app.reduce(statepkg.ActivateAction{})
}

func (app *Application) handleEditorOpen() bool {
	if !app.state.EditorAvailable || len(app.editorCmd) == 0 {
		return false
	}

	row := app.state.CurrentRow()
	if row == nil || row.Entry.IsDir() {
		return false
	}

	if binary, err := fsutil.LooksBinary(app.fs, row.Entry.Path); err != nil {
		app.state.LastError = err
		return true
	} else if binary {
		app.state.StatusMessage = "binary file, not opened: " + row.Entry.Name
		return true
	}

	filePath := app.osPath(row.Entry.Path)
	zerolog.Ctx(app.ctx).Debug().Str("path", filePath).Msg("open editor")
	if err := app.openFileInEditor(filePath); err != nil {
		app.state.LastError = err
	}
	// The editor may have saved new siblings (swap files, generated output).
	return app.reduce(statepkg.FilesChangedAction{})
}

// osPath maps a tree path onto the host filesystem.
func (app *Application) osPath(p string) string {
	return filepath.Join(app.root, filepath.FromSlash(p))
}

func (app *Application) openFileInEditor(filePath string) error {
	if len(app.editorCmd) == 0 {
		return fmt.Errorf("no editor configured")
	}

	editorArgs := app.editorArgsWithFile(filePath)
	useTTY := runtime.GOOS != "windows"
	var tty *os.File
	var err error

	if useTTY {
		tty, err = os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return app.openFileInEditorFallback(editorArgs)
		}
		defer func() {
			_ = tty.Close()
		}()
	}

	if err := app.screen.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}

	cmd := commandBuilder(editorArgs[0], editorArgs[1:]...)
	if useTTY {
		cmd.Stdin = tty
		cmd.Stdout = tty
		cmd.Stderr = tty
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	runErr := cmd.Run()
	_ = discardPendingInput()

	if err := app.screen.Resume(); err != nil {
		return fmt.Errorf("failed to resume screen: %w", err)
	}
	app.screen.Sync()
	if runErr != nil {
		return fmt.Errorf("%s: %w", editorArgs[0], runErr)
	}
	return nil
}

func (app *Application) openFileInEditorFallback(args []string) error {
	if err := app.screen.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}
	defer func() {
		_ = app.screen.Resume()
		app.screen.Sync()
	}()

	cmd := commandBuilder(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	_ = discardPendingInput()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

func (app *Application) editorArgsWithFile(filePath string) []string {
	args := make([]string, len(app.editorCmd)+1)
	copy(args, app.editorCmd)
	args[len(app.editorCmd)] = filePath
	return args
}

// reloadConfig re-resolves configuration and publishes the resulting rule
// set. Problems are reported through the status line.
func (app *Application) reloadConfig() bool {
	if app.reloadRules == nil {
		return false
	}
	set, err := app.reloadRules()
	if set != nil {
		app.store.Publish(set)
	}
	logger := zerolog.Ctx(app.ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("reload config")
	} else {
		logger.Info().Int("rules", set.Len()).Msg("config reloaded")
	}
	return app.reduce(statepkg.RulesReloadedAction{Err: err})
}
