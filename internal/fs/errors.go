package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"strings"
	"syscall"
)

// Sentinel errors for listing and file operations.
var (
	// ErrNotFound indicates the path vanished or never existed.
	ErrNotFound = errors.New("not found")
	// ErrNotADirectory indicates a listing was requested for a non-directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrPermission indicates the path could not be read.
	ErrPermission = errors.New("permission denied")
	// ErrExist indicates a create or rename target is already taken.
	ErrExist = errors.New("file already exists")
)

// Classify maps io/fs and syscall errors onto the package sentinels, keeping
// the original error in the chain. Unknown errors are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotADirectory),
		errors.Is(err, ErrPermission), errors.Is(err, ErrExist):
		return err
	case errors.Is(err, iofs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, iofs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	case errors.Is(err, iofs.ErrExist):
		return fmt.Errorf("%w: %w", ErrExist, err)
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%w: %w", ErrNotADirectory, err)
	}
	return err
}

// PartialError reports a listing that succeeded for some entries only. The
// entries returned alongside it are valid; the failed ones were omitted.
type PartialError struct {
	Dir  string
	Errs []error
}

func (e *PartialError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: %d entries omitted: %s", e.Dir, len(e.Errs), strings.Join(msgs, "; "))
}

func (e *PartialError) Unwrap() []error {
	return e.Errs
}

// IsPartial reports whether err only signals omitted entries.
func IsPartial(err error) bool {
	var partial *PartialError
	return errors.As(err, &partial)
}
