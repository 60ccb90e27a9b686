package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("snapshot not found")
	ErrEmptyKey       = errors.New("empty snapshot key")
	ErrUnknownBackend = errors.New("unknown store backend")
)
