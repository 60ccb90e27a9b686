package stats

import "errors"

// Sentinel kinds for stat line errors.
var (
	ErrInvalidField     = errors.New("invalid stat field")
	ErrInvalidDirection = errors.New("invalid stat direction")
)
