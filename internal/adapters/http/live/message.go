package live

import (
	"encoding/json"
	"time"

	"github.com/TissotPA/Match/internal/domain/model"
)

// Message types sent to clients.
const (
	TypeSnapshot = "snapshot"
	TypeChange   = "change"
)

// Message is one frame of the live feed. Roster is the full snapshot
// document as persisted.
type Message struct {
	Type     string           `json:"type"`
	Version  uint64           `json:"version"`
	Kind     model.ChangeKind `json:"kind,omitempty"`
	PlayerID string           `json:"playerId,omitempty"`
	At       time.Time        `json:"at"`
	Roster   json.RawMessage  `json:"roster,omitempty"`
}

func changeMessage(c model.Change) Message {
	return Message{
		Type:     TypeChange,
		Version:  c.Version,
		Kind:     c.Kind,
		PlayerID: c.PlayerID,
		At:       c.At,
		Roster:   json.RawMessage(c.Snapshot),
	}
}
