package snapshot

import (
	"time"

	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/stats"
)

// RecapKey is the well-known name the recap blob is stored under.
const RecapKey = "recapMatch"

// frenchDateTime is the fr-FR locale rendering of a date and time.
const frenchDateTime = "02/01/2006 15:04:05"

// Recap is the hand-off blob written when a match is closed.
type Recap struct {
	Date    string        `json:"date"`
	Players []RecapPlayer `json:"joueuses"`
}

// RecapPlayer holds the raw counters of one player.
type RecapPlayer struct {
	Name   string         `json:"nom"`
	Number string         `json:"numero,omitempty"`
	Stats  stats.StatLine `json:"stats"`
}

// NewRecap builds the recap for entries closed at now, rendered in loc.
func NewRecap(entries []roster.Entry, now time.Time, loc *time.Location) Recap {
	if loc == nil {
		loc = time.Local
	}
	r := Recap{
		Date:    now.In(loc).Format(frenchDateTime),
		Players: make([]RecapPlayer, 0, len(entries)),
	}
	for _, e := range entries {
		r.Players = append(r.Players, RecapPlayer{Name: displayName(e.Name), Number: e.Number, Stats: e.Stats})
	}
	return r
}

// DecodeRecap reads a recap blob. It shares the snapshot decoder, so a
// snapshot or export file can be summarized the same way.
func DecodeRecap(data []byte) (Recap, error) {
	doc, err := Decode(data)
	if err != nil {
		return Recap{}, err
	}
	r := Recap{Date: doc.Date, Players: make([]RecapPlayer, 0, len(doc.Players))}
	for _, e := range doc.Entries() {
		r.Players = append(r.Players, RecapPlayer{Name: e.Name, Number: e.Number, Stats: e.Stats})
	}
	return r, nil
}

// Line is one player's row of a recap summary.
type Line struct {
	Name        string         `json:"nom"`
	Number      string         `json:"numero,omitempty"`
	Stats       stats.StatLine `json:"stats"`
	Points      int            `json:"points"`
	Evaluation  int            `json:"evaluation"`
	Percentages map[string]int `json:"pourcentages"`
}

// Summary is what a recap consumer shows: per-player rows and team totals.
type Summary struct {
	Date             string         `json:"date"`
	Players          []Line         `json:"joueuses"`
	Totals           roster.Totals  `json:"collectif"`
	TotalPercentages map[string]int `json:"pourcentages"`
}

// Summary recomputes points, evaluation and the team aggregate from the raw
// counters.
func (r Recap) Summary() Summary {
	out := Summary{Date: r.Date, Players: make([]Line, 0, len(r.Players))}
	for _, p := range r.Players {
		out.Players = append(out.Players, Line{
			Name:        p.Name,
			Number:      p.Number,
			Stats:       p.Stats,
			Points:      p.Stats.TotalPoints(),
			Evaluation:  p.Stats.Evaluation(),
			Percentages: percentages(p.Stats),
		})
		out.Totals.Add(p.Stats)
	}
	out.TotalPercentages = percentages(out.Totals.StatLine)
	return out
}

func percentages(s stats.StatLine) map[string]int {
	m := make(map[string]int, len(stats.Categories()))
	for _, c := range stats.Categories() {
		made, attempted := s.Shots(c)
		m[c.Name] = stats.Percentage(made, attempted)
	}
	return m
}
