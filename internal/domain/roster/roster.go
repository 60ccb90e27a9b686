// Package roster keeps the ordered list of players tracked for one match.
//
// Roster is single-threaded: callers that share one across goroutines must
// serialize access themselves.
package roster

import (
	"fmt"

	"github.com/TissotPA/Match/internal/domain/stats"
	"github.com/google/uuid"
)

// Entry is one tracked player. ID is the identity; Name and Number may change.
type Entry struct {
	ID     string         `json:"id"`
	Name   string         `json:"nom"`
	Number string         `json:"numero"`
	Stats  stats.StatLine `json:"stats"`
}

// Roster is an ordered set of entries keyed by id. Insertion order is
// display order.
type Roster struct {
	entries []*Entry
	newID   func() string
}

// New creates an empty roster.
func New(opts ...Option) *Roster {
	r := &Roster{
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of players.
func (r *Roster) Len() int { return len(r.entries) }

// Entries returns a copy of every entry in order.
func (r *Roster) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Get returns a copy of the entry with id.
func (r *Roster) Get(id string) (Entry, error) {
	e := r.find(id)
	if e == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return *e, nil
}

// AddPlayer appends a player with zeroed stats and a fresh id.
func (r *Roster) AddPlayer(name, number string) Entry {
	e := &Entry{ID: r.uniqueID(), Name: name, Number: number}
	r.entries = append(r.entries, e)
	return *e
}

// RemovePlayer drops the entry with id. Unknown ids are ignored.
func (r *Roster) RemovePlayer(id string) {
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// UpdateStat moves one counter of the player with id.
func (r *Roster) UpdateStat(id string, f stats.Field, d stats.Direction) (Entry, error) {
	e := r.find(id)
	if e == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if err := e.Stats.ApplyDelta(f, d); err != nil {
		return Entry{}, err
	}
	return *e, nil
}

// RenamePlayer sets the display name of the player with id.
func (r *Roster) RenamePlayer(id, name string) error {
	e := r.find(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	e.Name = name
	return nil
}

// SetJerseyNumber sets the jersey number of the player with id.
func (r *Roster) SetJerseyNumber(id, number string) error {
	e := r.find(id)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	e.Number = number
	return nil
}

// ResetAll zeroes every player's stats, keeping ids, names, numbers and order.
func (r *Roster) ResetAll() {
	for _, e := range r.entries {
		e.Stats = stats.StatLine{}
	}
}

// Clear removes every player.
func (r *Roster) Clear() { r.entries = nil }

// Replace swaps the whole content for entries. Empty or duplicate ids are
// regenerated and every stat line is repaired.
func (r *Roster) Replace(entries []Entry) {
	next := make([]*Entry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, in := range entries {
		e := in
		for {
			if _, dup := seen[e.ID]; e.ID != "" && !dup {
				break
			}
			e.ID = r.newID()
		}
		seen[e.ID] = struct{}{}
		e.Stats.Repair()
		next = append(next, &e)
	}
	r.entries = next
}

func (r *Roster) find(id string) *Entry {
	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (r *Roster) uniqueID() string {
	for {
		id := r.newID()
		if id != "" && r.find(id) == nil {
			return id
		}
	}
}
