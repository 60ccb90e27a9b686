package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaxCount caps imported counters so derived sums cannot overflow.
const MaxCount = math.MaxInt32

// Count is a counter read leniently: numbers and numeric strings are taken,
// anything else reads as 0. Negative values clamp to 0 and values above
// MaxCount saturate.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	*c = 0
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x) || x <= 0:
		case x >= MaxCount:
			*c = MaxCount
		default:
			*c = Count(math.Trunc(x))
		}
	case string:
		s := strings.TrimSpace(x)
		n, err := strconv.ParseInt(s, 10, 64)
		switch {
		case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-"):
			*c = MaxCount
		case err != nil || n <= 0:
		case n >= MaxCount:
			*c = MaxCount
		default:
			*c = Count(n)
		}
	}
	return nil
}

// Text is a string read leniently: numbers keep their literal form, anything
// else but a string reads as "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(s)
		}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*t = Text(b)
	}
	return nil
}

// isObject reports whether b holds a JSON object.
func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// isArray reports whether b holds a JSON array.
func isArray(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}
