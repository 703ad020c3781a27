//go:build windows

package app

import "golang.org/x/sys/windows"

// discardPendingInput drops keystrokes typed into a child process that are
// still queued on the console, so they are not replayed as rfold commands.
func discardPendingInput() error {
	handle, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return err
	}
	return windows.FlushConsoleInputBuffer(handle)
}
