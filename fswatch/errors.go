package fswatch

import "errors"

// ErrRootNotADirectory is returned by Start when root does not exist or is
// not a directory.
var ErrRootNotADirectory = errors.New("fswatch: root is not a directory")

// ErrCannotOpenRoot is returned by Start when the root cannot be opened for
// kernel-level change notification.
var ErrCannotOpenRoot = errors.New("fswatch: cannot open root for notifications")
