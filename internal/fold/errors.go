package fold

import "errors"

// ErrNotContainer is returned when a directory is passed where a container
// file is expected.
var ErrNotContainer = errors.New("not a container")
