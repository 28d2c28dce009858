package vfs

import "errors"

// ErrNotFound is returned when a file or directory does not exist in the
// store at the given path.
var ErrNotFound = errors.New("file not found")
