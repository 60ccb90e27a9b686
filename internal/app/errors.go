package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNoPlayers is returned when closing a match with an empty roster.
	ErrNoPlayers = errors.New("no players to close the match with")

	// ErrNoTemplate is returned by NewMatch when no template source is set.
	ErrNoTemplate = errors.New("no template source configured")
)
