package stats

import (
	"fmt"
	"strings"
)

// Field names one counter of a StatLine.
type Field int

// Counters in display order.
const (
	InteriorAttempted Field = iota
	InteriorMade
	ExteriorAttempted
	ExteriorMade
	ThreeAttempted
	ThreeMade
	FreeThrowAttempted
	FreeThrowMade
	Rebounds
	Assists
	Fouls
	Turnovers
	Steals
	Blocks

	fieldCount
)

// wireNames are the counter keys used by the recap blob and the stat buttons.
var wireNames = [fieldCount]string{
	InteriorAttempted:  "tirsIntTentes",
	InteriorMade:       "tirsIntReussis",
	ExteriorAttempted:  "tirsExtTentes",
	ExteriorMade:       "tirsExtReussis",
	ThreeAttempted:     "tirs3Tentes",
	ThreeMade:          "tirs3Reussis",
	FreeThrowAttempted: "lfTentes",
	FreeThrowMade:      "lfReussis",
	Rebounds:           "rebonds",
	Assists:            "passes",
	Fouls:              "fautes",
	Turnovers:          "balPerdus",
	Steals:             "interceptions",
	Blocks:             "contres",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		m[strings.ToLower(wireNames[f])] = f
	}
	return m
}()

// Fields returns every counter in display order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f names a known counter.
func (f Field) Valid() bool { return f >= 0 && f < fieldCount }

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return wireNames[f]
}

// ParseField resolves a wire name (case-insensitive) to a Field.
func ParseField(name string) (Field, error) {
	f, ok := fieldsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return f, nil
}

// Direction is the sign of a one-step counter change.
type Direction int

const (
	Increment Direction = iota + 1
	Decrement
)

func (d Direction) String() string {
	switch d {
	case Increment:
		return "plus"
	case Decrement:
		return "minus"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts plus/minus, increment/decrement and +/-.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plus", "increment", "inc", "+":
		return Increment, nil
	case "minus", "decrement", "dec", "-":
		return Decrement, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Category pairs the attempted and made counters of one shot type.
type Category struct {
	Name      string
	Attempted Field
	Made      Field
	Value     int
}

// Shot categories. The pairing is fixed.
var (
	Interior  = Category{Name: "interieurs", Attempted: InteriorAttempted, Made: InteriorMade, Value: 2}
	Exterior  = Category{Name: "exterieurs", Attempted: ExteriorAttempted, Made: ExteriorMade, Value: 2}
	Three     = Category{Name: "trois_points", Attempted: ThreeAttempted, Made: ThreeMade, Value: 3}
	FreeThrow = Category{Name: "lancers_francs", Attempted: FreeThrowAttempted, Made: FreeThrowMade, Value: 1}
)

// Categories returns the four shot categories in display order.
func Categories() []Category {
	return []Category{Interior, Exterior, Three, FreeThrow}
}

// attemptFor maps a made counter to its attempted counter.
func attemptFor(f Field) (Field, bool) {
	for _, c := range Categories() {
		if c.Made == f {
			return c.Attempted, true
		}
	}
	return 0, false
}
