package fs

import (
	"os"
	"time"
)

// Kind classifies a filesystem object.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFile
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Entry represents a single child of a listed directory.
//
// Kind is always KindFile or KindDirectory: symlinks report the kind of their
// target (broken links count as files) and carry IsSymlink instead.
type Entry struct {
	Name      string
	FullPath  string
	Kind      Kind
	IsSymlink bool
	Size      int64
	Modified  time.Time
	Mode      os.FileMode
}

// IsDir reports whether the entry lists as a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// IsHidden reports whether the entry should be treated as a dotfile.
func (e Entry) IsHidden() bool {
	return IsHidden(e.Name)
}

// IsHidden checks if a name is hidden by the dotfile convention.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
