//go:build !windows

package app

// The tty is reopened for each child process, nothing is left queued.
func discardPendingInput() error {
	return nil
}
