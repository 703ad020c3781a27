package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

type lookPathFunc func(string) (string, error)

// toolCandidate is an external command with the arguments it needs to read
// from stdin (clipboard) or to block until the file is closed (editor).
type toolCandidate struct {
	name string
	args []string
}

func (c toolCandidate) resolve(lookPath lookPathFunc) ([]string, bool) {
	if c.name == "" {
		return nil, false
	}
	resolved, err := lookPath(c.name)
	if err != nil || resolved == "" {
		return nil, false
	}
	return append([]string{resolved}, c.args...), true
}

func firstAvailable(lookPath lookPathFunc, candidates []toolCandidate) ([]string, bool) {
	for _, c := range candidates {
		if cmd, ok := c.resolve(lookPath); ok {
			return cmd, true
		}
	}
	return nil, false
}

func detectClipboard() ([]string, bool) {
	return detectClipboardInternal(runtime.GOOS, os.Getenv, exec.LookPath)
}

func detectClipboardInternal(goos string, getenv func(string) string, lookPath lookPathFunc) ([]string, bool) {
	var candidates []toolCandidate
	switch strings.ToLower(goos) {
	case "windows":
		setClipboard := []string{"-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}
		candidates = []toolCandidate{
			{name: "clip.exe"},
			{name: "clip"},
			{name: "powershell", args: setClipboard},
			{name: "powershell.exe", args: setClipboard},
			{name: "pwsh", args: setClipboard},
		}
	case "darwin":
		candidates = []toolCandidate{{name: "pbcopy"}}
	default:
		if getenv("WAYLAND_DISPLAY") != "" {
			candidates = append(candidates, toolCandidate{name: "wl-copy"})
		}
		// xclip and xsel write the primary selection unless told otherwise.
		candidates = append(candidates,
			toolCandidate{name: "xclip", args: []string{"-selection", "clipboard"}},
			toolCandidate{name: "xsel", args: []string{"--clipboard", "--input"}},
			toolCandidate{name: "wl-copy"},
			toolCandidate{name: "pbcopy"},
		)
	}
	return firstAvailable(lookPath, candidates)
}

func detectEditorCommand() ([]string, bool) {
	return detectEditorCommandInternal(runtime.GOOS, os.Getenv, exec.LookPath)
}

// detectEditorCommandInternal prefers $RFOLD_EDITOR, then $VISUAL and
// $EDITOR, then a platform default.
func detectEditorCommandInternal(goos string, getenv func(string) string, lookPath lookPathFunc) ([]string, bool) {
	for _, env := range []string{"RFOLD_EDITOR", "VISUAL", "EDITOR"} {
		args := parseEditorCommand(getenv(env))
		if len(args) == 0 {
			continue
		}
		if cmd, ok := (toolCandidate{name: args[0], args: args[1:]}).resolve(lookPath); ok {
			return cmd, true
		}
	}

	if strings.EqualFold(goos, "windows") {
		return firstAvailable(lookPath, []toolCandidate{
			{name: "code", args: []string{"--wait"}},
			{name: "notepad++.exe"},
			{name: "notepad.exe"},
		})
	}
	return firstAvailable(lookPath, []toolCandidate{{name: "vim"}, {name: "nano"}, {name: "vi"}})
}

func parseEditorCommand(cmd string) []string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}

	var args []string
	var current strings.Builder
	inSingle := false
	inDouble := false

	for _, r := range cmd {
		switch r {
		case '\'':
			if inDouble {
				current.WriteRune(r)
			} else {
				inSingle = !inSingle
			}
			continue
		case '"':
			if inSingle {
				current.WriteRune(r)
			} else {
				inDouble = !inDouble
			}
			continue
		default:
			if !inSingle && !inDouble && unicode.IsSpace(r) {
				if current.Len() > 0 {
					args = append(args, current.String())
					current.Reset()
				}
				continue
			}
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if len(args) > 0 {
		args[0] = expandUserPath(args[0])
	}

	return args
}

func expandUserPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) == 1 {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}

	sep := path[1]
	if sep != '/' && sep != '\\' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}
