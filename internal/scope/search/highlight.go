package search

import (
	"regexp"
)

// Segment is a run of text, emphasized when it matches the search term
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized"`
}

// Highlight splits text around every case-insensitive occurrence of term.
// Segments alternate plain and emphasized, starting and ending with a
// plain segment (possibly empty), and always concatenate back to text.
// Any failure yields text as a single plain segment.
func Highlight(text, term string) (segments []Segment) {
	plain := []Segment{{Text: text}}
	if text == "" || term == "" {
		return plain
	}

	defer func() {
		if r := recover(); r != nil {
			segments = plain
		}
	}()

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return plain
	}

	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return plain
	}

	segments = make([]Segment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		segments = append(segments,
			Segment{Text: text[prev:loc[0]]},
			Segment{Text: text[loc[0]:loc[1]], Emphasized: true},
		)
		prev = loc[1]
	}
	segments = append(segments, Segment{Text: text[prev:]})

	return segments
}
