package roster

import (
	"iter"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for matching: NFD decomposition, combining marks
// stripped, lower case.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Chained transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Search yields the entries whose name or number contains term, ignoring
// case and accents. A blank term yields every entry. The sequence reads the
// roster each time it is ranged over and never mutates it.
func (r *Roster) Search(term string) iter.Seq[Entry] {
	needle := Normalize(strings.TrimSpace(term))
	return func(yield func(Entry) bool) {
		for _, e := range r.entries {
			if needle != "" && !e.matches(needle) {
				continue
			}
			if !yield(*e) {
				return
			}
		}
	}
}

func (e *Entry) matches(needle string) bool {
	return strings.Contains(Normalize(e.Name), needle) ||
		strings.Contains(Normalize(e.Number), needle)
}
