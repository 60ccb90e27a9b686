// Package model contains domain models passed between layers.
package model

import "time"

// ChangeKind names the roster operation that produced a Change.
type ChangeKind string

// Change kinds.
const (
	KindPlayerAdded   ChangeKind = "player_added"
	KindPlayerRemoved ChangeKind = "player_removed"
	KindPlayerUpdated ChangeKind = "player_updated"
	KindStatUpdated   ChangeKind = "stat_updated"
	KindRosterReset   ChangeKind = "roster_reset"
	KindRosterCleared ChangeKind = "roster_cleared"
	KindRosterLoaded  ChangeKind = "roster_loaded"
	KindMatchClosed   ChangeKind = "match_closed"
)

// Change is emitted after every successful roster mutation. Snapshot holds
// the encoded roster as it was right after the mutation and is never
// modified afterwards.
type Change struct {
	Version  uint64     `json:"version"`
	Kind     ChangeKind `json:"kind"`
	PlayerID string     `json:"playerId,omitempty"`
	Snapshot []byte     `json:"-"`
	At       time.Time  `json:"at"`
}

// Newer reports whether c supersedes a change with version v.
func (c Change) Newer(v uint64) bool { return c.Version > v }
