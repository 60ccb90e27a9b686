package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrPlayerNotFound = errors.New("player not found")
)
