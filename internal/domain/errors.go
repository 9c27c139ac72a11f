package domain

import "errors"

// ErrNotFound is the root of every "record absent or not yours" error.
var ErrNotFound = errors.New("not found")
