//go:build windows

package app

import "os"

func contSignals() []os.Signal {
	return nil
}

// Windows has no job control; Ctrl+Z is ignored.
func (app *Application) suspendToShell() {}

func (app *Application) resumeAfterStop() bool {
	return false
}
