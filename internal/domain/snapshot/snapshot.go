// Package snapshot implements the JSON contract used to persist, import,
// export and hand off a roster.
//
// One decoder accepts every known variant: the persisted snapshot, the
// export (derived fields are ignored), the new-match template (statistiques
// may be missing) and the recap blob (counters under "stats").
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/stats"
)

// Document is the top-level snapshot.
type Document struct {
	Date    string   `json:"date,omitempty"`
	Players []Player `json:"joueuses"`
}

// Player is one entry of the player list.
type Player struct {
	Name       Text        `json:"nom"`
	Number     Text        `json:"numero,omitempty"`
	Statistics *Statistics `json:"statistiques,omitempty"`
	Counters   *Counters   `json:"stats,omitempty"`
}

// Statistics is the nested counters block.
type Statistics struct {
	Shots     Shots `json:"tirs"`
	Rebounds  Count `json:"rebonds"`
	Assists   Count `json:"passes_decisives"`
	Steals    Count `json:"interceptions"`
	Blocks    Count `json:"contres"`
	Turnovers Count `json:"ballons_perdus"`
	Fouls     Count `json:"fautes"`
}

// Shots groups the four shot categories.
type Shots struct {
	Interior  ShotLine `json:"interieurs"`
	Exterior  ShotLine `json:"exterieurs"`
	Three     ShotLine `json:"trois_points"`
	FreeThrow ShotLine `json:"lancers_francs"`
}

// ShotLine is attempted/made for one category.
type ShotLine struct {
	Attempted Count `json:"tentes"`
	Made      Count `json:"reussis"`
}

// Counters is the flat counter map used by the recap blob.
type Counters struct {
	InteriorAttempted  Count `json:"tirsIntTentes"`
	InteriorMade       Count `json:"tirsIntReussis"`
	ExteriorAttempted  Count `json:"tirsExtTentes"`
	ExteriorMade       Count `json:"tirsExtReussis"`
	ThreeAttempted     Count `json:"tirs3Tentes"`
	ThreeMade          Count `json:"tirs3Reussis"`
	FreeThrowAttempted Count `json:"lfTentes"`
	FreeThrowMade      Count `json:"lfReussis"`
	Rebounds           Count `json:"rebonds"`
	Assists            Count `json:"passes"`
	Fouls              Count `json:"fautes"`
	Turnovers          Count `json:"balPerdus"`
	Steals             Count `json:"interceptions"`
	Blocks             Count `json:"contres"`
}

// Non-object values for any nested block read as an empty block.

func (p *Player) UnmarshalJSON(b []byte) error {
	*p = Player{}
	if !isObject(b) {
		return nil
	}
	type plain Player
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*p = Player(v)
	return nil
}

func (s *Statistics) UnmarshalJSON(b []byte) error {
	*s = Statistics{}
	if !isObject(b) {
		return nil
	}
	type plain Statistics
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*s = Statistics(v)
	return nil
}

func (s *Shots) UnmarshalJSON(b []byte) error {
	*s = Shots{}
	if !isObject(b) {
		return nil
	}
	type plain Shots
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*s = Shots(v)
	return nil
}

func (l *ShotLine) UnmarshalJSON(b []byte) error {
	*l = ShotLine{}
	if !isObject(b) {
		return nil
	}
	type plain ShotLine
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*l = ShotLine(v)
	return nil
}

func (c *Counters) UnmarshalJSON(b []byte) error {
	*c = Counters{}
	if !isObject(b) {
		return nil
	}
	type plain Counters
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*c = Counters(v)
	return nil
}

// Decode parses any snapshot variant. It fails with ErrMalformedSnapshot when
// data is not a JSON object or "joueuses" is absent or not a list.
func Decode(data []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	raw, ok := top["joueuses"]
	if !ok {
		return Document{}, fmt.Errorf("%w: missing joueuses", ErrMalformedSnapshot)
	}
	if !isArray(raw) {
		return Document{}, fmt.Errorf("%w: joueuses is not a list", ErrMalformedSnapshot)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc.Players); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if d, ok := top["date"]; ok {
		var date Text
		_ = date.UnmarshalJSON(d)
		doc.Date = string(date)
	}
	return doc, nil
}

// Encode marshals doc with two-space indentation.
func Encode(doc any) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// FromEntries builds the persisted form of entries. Names are kept as is so
// that a decode gives back the same roster.
func FromEntries(entries []roster.Entry) Document {
	doc := Document{Players: make([]Player, 0, len(entries))}
	for _, e := range entries {
		st := fromStatLine(e.Stats)
		doc.Players = append(doc.Players, Player{
			Name:       Text(e.Name),
			Number:     Text(e.Number),
			Statistics: &st,
		})
	}
	return doc
}

// FromRoster is FromEntries over r.
func FromRoster(r *roster.Roster) Document { return FromEntries(r.Entries()) }

// Entries converts the document to roster entries without ids. Missing
// counters are 0 and every line is repaired.
func (d Document) Entries() []roster.Entry {
	out := make([]roster.Entry, 0, len(d.Players))
	for _, p := range d.Players {
		e := roster.Entry{Name: string(p.Name), Number: string(p.Number)}
		switch {
		case p.Statistics != nil:
			e.Stats = p.Statistics.statLine()
		case p.Counters != nil:
			e.Stats = p.Counters.statLine()
		}
		e.Stats.Repair()
		out = append(out, e)
	}
	return out
}

// ToRoster builds a fresh roster from the document. Ids are newly generated.
func (d Document) ToRoster(opts ...roster.Option) *roster.Roster {
	r := roster.New(opts...)
	r.Replace(d.Entries())
	return r
}

func fromStatLine(s stats.StatLine) Statistics {
	return Statistics{
		Shots: Shots{
			Interior:  ShotLine{Attempted: Count(s.InteriorAttempted), Made: Count(s.InteriorMade)},
			Exterior:  ShotLine{Attempted: Count(s.ExteriorAttempted), Made: Count(s.ExteriorMade)},
			Three:     ShotLine{Attempted: Count(s.ThreeAttempted), Made: Count(s.ThreeMade)},
			FreeThrow: ShotLine{Attempted: Count(s.FreeThrowAttempted), Made: Count(s.FreeThrowMade)},
		},
		Rebounds:  Count(s.Rebounds),
		Assists:   Count(s.Assists),
		Steals:    Count(s.Steals),
		Blocks:    Count(s.Blocks),
		Turnovers: Count(s.Turnovers),
		Fouls:     Count(s.Fouls),
	}
}

func (s Statistics) statLine() stats.StatLine {
	return stats.StatLine{
		InteriorAttempted:  int(s.Shots.Interior.Attempted),
		InteriorMade:       int(s.Shots.Interior.Made),
		ExteriorAttempted:  int(s.Shots.Exterior.Attempted),
		ExteriorMade:       int(s.Shots.Exterior.Made),
		ThreeAttempted:     int(s.Shots.Three.Attempted),
		ThreeMade:          int(s.Shots.Three.Made),
		FreeThrowAttempted: int(s.Shots.FreeThrow.Attempted),
		FreeThrowMade:      int(s.Shots.FreeThrow.Made),
		Rebounds:           int(s.Rebounds),
		Assists:            int(s.Assists),
		Fouls:              int(s.Fouls),
		Turnovers:          int(s.Turnovers),
		Steals:             int(s.Steals),
		Blocks:             int(s.Blocks),
	}
}

func (c Counters) statLine() stats.StatLine {
	return stats.StatLine{
		InteriorAttempted:  int(c.InteriorAttempted),
		InteriorMade:       int(c.InteriorMade),
		ExteriorAttempted:  int(c.ExteriorAttempted),
		ExteriorMade:       int(c.ExteriorMade),
		ThreeAttempted:     int(c.ThreeAttempted),
		ThreeMade:          int(c.ThreeMade),
		FreeThrowAttempted: int(c.FreeThrowAttempted),
		FreeThrowMade:      int(c.FreeThrowMade),
		Rebounds:           int(c.Rebounds),
		Assists:            int(c.Assists),
		Fouls:              int(c.Fouls),
		Turnovers:          int(c.Turnovers),
		Steals:             int(c.Steals),
		Blocks:             int(c.Blocks),
	}
}
