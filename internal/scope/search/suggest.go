package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSuggestions caps the suggestion list
	MaxSuggestions = 5

	// MinSuggestLength is the shortest partial term that gets suggestions
	MinSuggestLength = 2
)

// Suggest returns up to MaxSuggestions distinct test titles and section
// names containing partial, in the order they are found.
func (e *Engine) Suggest(index []IndexedTest, partial string) []string {
	if utf8.RuneCountInString(partial) < MinSuggestLength {
		return nil
	}
	e.metrics.RecordSuggest()

	suggestions, err := collectSuggestions(index, strings.ToLower(partial))
	if err != nil {
		e.logger.Warn().Err(err).Str("partial", partial).Msg("suggestion lookup failed")
		return nil
	}
	return suggestions
}

func collectSuggestions(index []IndexedTest, needle string) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("suggest panic: %v", r)
		}
	}()

	seen := make(map[string]struct{})
	add := func(s string) bool {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
		return len(out) >= MaxSuggestions
	}

	for i := range index {
		it := &index[i]
		if it.Entry == nil {
			continue
		}
		if strings.Contains(it.Entry.Title, needle) && add(it.Test.Title) {
			return out, nil
		}
		for si := range it.Entry.Sections {
			if strings.Contains(it.Entry.Sections[si].Name, needle) && add(it.Test.Sections[si].Name) {
				return out, nil
			}
		}
	}

	return out, nil
}
