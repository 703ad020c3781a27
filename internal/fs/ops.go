package fs

import (
	"errors"
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// CreateFile creates an empty file at path. It fails with ErrExist when the
// name is already taken.
func CreateFile(fsys billy.Filesystem, path string) error {
	if err := ensureAbsent(fsys, path); err != nil {
		return err
	}
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, Classify(err))
	}
	return f.Close()
}

// MakeDir creates path and any missing parents. It fails with ErrExist when
// the name is already taken.
func MakeDir(fsys billy.Filesystem, path string) error {
	if err := ensureAbsent(fsys, path); err != nil {
		return err
	}
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, Classify(err))
	}
	return nil
}

// Remove deletes path. Directories are removed recursively only when
// recursive is set.
func Remove(fsys billy.Filesystem, path string, recursive bool) error {
	var err error
	if recursive {
		err = util.RemoveAll(fsys, path)
	} else {
		err = fsys.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, Classify(err))
	}
	return nil
}

// Rename moves from to to, refusing to overwrite an existing target.
func Rename(fsys billy.Filesystem, from, to string) error {
	if from == to {
		return nil
	}
	if err := ensureAbsent(fsys, to); err != nil {
		return err
	}
	if err := fsys.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, Classify(err))
	}
	return nil
}

func ensureAbsent(fsys billy.Filesystem, path string) error {
	_, err := fsys.Lstat(path)
	if err == nil {
		return fmt.Errorf("%s: %w", path, ErrExist)
	}
	if classified := Classify(err); !isNotFound(classified) {
		return fmt.Errorf("%s: %w", path, classified)
	}
	return nil
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
