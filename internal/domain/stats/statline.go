// Package stats holds one player's box score counters and the formulas
// derived from them.
//
// A StatLine is a plain value. It is not safe for concurrent mutation; the
// owner serializes access.
package stats

import (
	"fmt"
	"math"
)

// StatLine is one player's raw counters. JSON keys match the recap blob.
type StatLine struct {
	InteriorAttempted  int `json:"tirsIntTentes"`
	InteriorMade       int `json:"tirsIntReussis"`
	ExteriorAttempted  int `json:"tirsExtTentes"`
	ExteriorMade       int `json:"tirsExtReussis"`
	ThreeAttempted     int `json:"tirs3Tentes"`
	ThreeMade          int `json:"tirs3Reussis"`
	FreeThrowAttempted int `json:"lfTentes"`
	FreeThrowMade      int `json:"lfReussis"`
	Rebounds           int `json:"rebonds"`
	Assists            int `json:"passes"`
	Fouls              int `json:"fautes"`
	Turnovers          int `json:"balPerdus"`
	Steals             int `json:"interceptions"`
	Blocks             int `json:"contres"`
}

func (s *StatLine) counter(f Field) *int {
	switch f {
	case InteriorAttempted:
		return &s.InteriorAttempted
	case InteriorMade:
		return &s.InteriorMade
	case ExteriorAttempted:
		return &s.ExteriorAttempted
	case ExteriorMade:
		return &s.ExteriorMade
	case ThreeAttempted:
		return &s.ThreeAttempted
	case ThreeMade:
		return &s.ThreeMade
	case FreeThrowAttempted:
		return &s.FreeThrowAttempted
	case FreeThrowMade:
		return &s.FreeThrowMade
	case Rebounds:
		return &s.Rebounds
	case Assists:
		return &s.Assists
	case Fouls:
		return &s.Fouls
	case Turnovers:
		return &s.Turnovers
	case Steals:
		return &s.Steals
	case Blocks:
		return &s.Blocks
	default:
		return nil
	}
}

// Get returns the value of f.
func (s StatLine) Get(f Field) (int, error) {
	p := s.counter(f)
	if p == nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidField, f)
	}
	return *p, nil
}

// Set overwrites f. Negative values are clamped to 0 and the line is
// repaired afterwards.
func (s *StatLine) Set(f Field, v int) error {
	p := s.counter(f)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrInvalidField, f)
	}
	*p = max(v, 0)
	s.Repair()
	return nil
}

// ApplyDelta moves f one step in direction d.
//
// Incrementing a made counter also increments its attempted counter.
// Decrementing stops at zero and never touches a paired counter.
func (s *StatLine) ApplyDelta(f Field, d Direction) error {
	p := s.counter(f)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrInvalidField, f)
	}
	switch d {
	case Increment:
		*p++
		if att, ok := attemptFor(f); ok {
			*s.counter(att)++
		}
	case Decrement:
		if *p > 0 {
			*p--
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDirection, d)
	}
	s.Repair()
	return nil
}

// Repair raises every attempted counter to at least its made counter.
// It is idempotent.
func (s *StatLine) Repair() {
	for _, c := range Categories() {
		made, att := s.counter(c.Made), s.counter(c.Attempted)
		if *made > *att {
			*att = *made
		}
	}
}

// Consistent reports whether made <= attempted holds for every category.
func (s StatLine) Consistent() bool {
	for _, c := range Categories() {
		if *s.counter(c.Made) > *s.counter(c.Attempted) {
			return false
		}
	}
	return true
}

// Add sums o into s counter by counter. Sums of consistent lines stay
// consistent, so no repair runs.
func (s *StatLine) Add(o StatLine) {
	for _, f := range Fields() {
		*s.counter(f) += *o.counter(f)
	}
}

// Reset zeroes every counter.
func (s *StatLine) Reset() { *s = StatLine{} }

// TotalPoints is FTM + 2*interior + 2*exterior + 3*three.
func (s StatLine) TotalPoints() int {
	return s.FreeThrowMade*FreeThrow.Value +
		s.InteriorMade*Interior.Value +
		s.ExteriorMade*Exterior.Value +
		s.ThreeMade*Three.Value
}

// MissedShots counts missed field goals over the three field categories.
func (s StatLine) MissedShots() int {
	return (s.InteriorAttempted - s.InteriorMade) +
		(s.ExteriorAttempted - s.ExteriorMade) +
		(s.ThreeAttempted - s.ThreeMade)
}

// MissedFreeThrows counts missed free throws.
func (s StatLine) MissedFreeThrows() int {
	return s.FreeThrowAttempted - s.FreeThrowMade
}

// Evaluation is points plus rebounds, assists, steals and blocks, minus
// misses and turnovers.
func (s StatLine) Evaluation() int {
	return s.TotalPoints() + s.Rebounds + s.Assists + s.Steals + s.Blocks -
		s.MissedShots() - s.MissedFreeThrows() - s.Turnovers
}

// Shots returns made and attempted for category c.
func (s StatLine) Shots(c Category) (made, attempted int) {
	return *s.counter(c.Made), *s.counter(c.Attempted)
}

// Percentage returns made/attempted as a rounded integer percent, 0 when
// nothing was attempted.
func Percentage(made, attempted int) int {
	if attempted <= 0 {
		return 0
	}
	return int(math.Round(float64(made) / float64(attempted) * 100))
}
