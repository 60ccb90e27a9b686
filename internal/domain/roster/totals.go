package roster

import "github.com/TissotPA/Match/internal/domain/stats"

// Totals is the team aggregate. Counters are summed field by field; Points
// is the sum of each player's own TotalPoints.
type Totals struct {
	stats.StatLine
	Points  int `json:"points"`
	Players int `json:"players"`
}

// Percentage returns the team success rate for category c.
func (t Totals) Percentage(c stats.Category) int {
	made, attempted := t.Shots(c)
	return stats.Percentage(made, attempted)
}

// Add folds one player's line into the aggregate.
func (t *Totals) Add(s stats.StatLine) {
	t.StatLine.Add(s)
	t.Points += s.TotalPoints()
	t.Players++
}

// TeamTotals aggregates every entry.
func (r *Roster) TeamTotals() Totals {
	var t Totals
	for _, e := range r.entries {
		t.Add(e.Stats)
	}
	return t
}
