package snapshot

import "errors"

// Sentinel kinds for snapshot errors.
var (
	// ErrMalformedSnapshot means the payload is not JSON or its player list
	// is missing or not a list. Nothing from such a payload is applied.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
