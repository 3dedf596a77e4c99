package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
)

// Search scans the index for term and returns one group per matching test,
// in index order. A blank term returns nil without scanning.
func (e *Engine) Search(term string, index []IndexedTest, filters Filters) []ResultGroup {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	start := time.Now()
	needle := strings.ToLower(term)

	var groups []ResultGroup
	total := 0
	for i := range index {
		it := &index[i]
		if it.Entry == nil {
			e.logger.Warn().
				Str("test_id", it.Test.ID).
				Msg("skipping test without search index")
			continue
		}

		matches, err := scanTest(it, needle, filters)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("test_id", it.Test.ID).
				Msg("skipping test after scan failure")
			continue
		}
		if len(matches) == 0 {
			continue
		}

		total += len(matches)
		groups = append(groups, ResultGroup{Test: it.Test, Matches: matches})
	}

	e.metrics.RecordQuery(total, time.Since(start))
	e.logger.Debug().
		Str("term", term).
		Int("groups", len(groups)).
		Int("matches", total).
		Msg("search completed")

	return groups
}

// scanTest walks the entry and its source in parallel so every hit can
// report original-case content and its position.
func scanTest(it *IndexedTest, needle string, filters Filters) (matches []MatchRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()

	entry, test := it.Entry, it.Test
	hit := func(t FieldType, lowered string) bool {
		return filters.Enabled(t) && strings.Contains(lowered, needle)
	}
	record := func(t FieldType, content string, section, question, option int) {
		matches = append(matches, MatchRecord{
			Type:      t,
			Content:   content,
			TestID:    test.ID,
			TestTitle: test.Title,
			Section:   section,
			Question:  question,
			Option:    option,
		})
	}

	if hit(FieldTitle, entry.Title) {
		record(FieldTitle, test.Title, 0, 0, 0)
	}
	if hit(FieldDescription, entry.Description) {
		record(FieldDescription, test.Description, 0, 0, 0)
	}

	for si, se := range entry.Sections {
		s := test.Sections[si]
		if hit(FieldSection, se.Name) {
			record(FieldSection, s.Name, si+1, 0, 0)
		}
		for qi, qe := range se.Questions {
			q := s.Questions[qi]
			if hit(FieldQuestion, qe.Question) {
				record(FieldQuestion, q.Question, si+1, qi+1, 0)
			}
			if hit(FieldExplanation, qe.Explanation) {
				record(FieldExplanation, q.Explanation, si+1, qi+1, 0)
			}
			if hit(FieldPassage, qe.Passage) {
				record(FieldPassage, q.Passage, si+1, qi+1, 0)
			}
			for oi, oe := range qe.Options {
				if hit(FieldOption, oe) {
					record(FieldOption, q.Options[oi].Content, si+1, qi+1, oi+1)
				}
			}
		}
	}

	return matches, nil
}

// MatchCount returns the total number of matches across groups
func MatchCount(groups []ResultGroup) int {
	n := 0
	for i := range groups {
		n += len(groups[i].Matches)
	}
	return n
}

// Tests returns the tests held by the index, in order
func Tests(index []IndexedTest) []catalog.TestDocument {
	tests := make([]catalog.TestDocument, len(index))
	for i := range index {
		tests[i] = index[i].Test
	}
	return tests
}
