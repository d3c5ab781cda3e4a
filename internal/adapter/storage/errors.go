package storage

import "errors"

// ErrStorage wraps failures of the remote object store.
var ErrStorage = errors.New("storage upload failed")
