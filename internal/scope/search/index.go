package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
)

// ErrMalformedTest marks a test whose raw document did not fit the schema
var ErrMalformedTest = errors.New("malformed test document")

// IndexEntry is the lowercased mirror of a TestDocument.
// It has the same ordering and cardinality as its source at every level.
type IndexEntry struct {
	Title       string
	Description string
	Sections    []SectionEntry
}

// SectionEntry mirrors a Section
type SectionEntry struct {
	Name      string
	Questions []QuestionEntry
}

// QuestionEntry mirrors a Question
type QuestionEntry struct {
	Question    string
	Explanation string
	Passage     string
	Options     []string
}

// IndexedTest pairs a raw test with its index entry.
// Entry is nil when the test could not be indexed.
type IndexedTest struct {
	Test  catalog.TestDocument
	Entry *IndexEntry
}

// Indexless counts entries that carry no index
func Indexless(index []IndexedTest) int {
	n := 0
	for i := range index {
		if index[i].Entry == nil {
			n++
		}
	}
	return n
}

// BuildIndex builds one IndexedTest per input test, in input order.
// A test that fails to index is kept with a nil Entry.
func (e *Engine) BuildIndex(tests []catalog.TestDocument) []IndexedTest {
	index := make([]IndexedTest, len(tests))
	failed := 0

	for i := range tests {
		entry, err := buildEntry(tests[i])
		if err != nil {
			failed++
			e.logger.Warn().
				Err(err).
				Str("test_id", tests[i].ID).
				Str("title", tests[i].Title).
				Msg("test left out of search index")
		}
		index[i] = IndexedTest{Test: tests[i], Entry: entry}
	}

	e.metrics.RecordBuild(len(tests), failed)
	e.logger.Debug().
		Int("documents", len(tests)).
		Int("indexless", failed).
		Msg("search index built")

	return index
}

func buildEntry(t catalog.TestDocument) (entry *IndexEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry = nil
			err = fmt.Errorf("index build panic: %v", r)
		}
	}()

	if t.Invalid != "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTest, t.Invalid)
	}

	entry = &IndexEntry{
		Title:       strings.ToLower(t.Title),
		Description: strings.ToLower(t.Description),
		Sections:    make([]SectionEntry, len(t.Sections)),
	}

	for si, s := range t.Sections {
		se := SectionEntry{
			Name:      strings.ToLower(s.Name),
			Questions: make([]QuestionEntry, len(s.Questions)),
		}
		for qi, q := range s.Questions {
			qe := QuestionEntry{
				Question:    strings.ToLower(q.Question),
				Explanation: strings.ToLower(q.Explanation),
				Passage:     strings.ToLower(q.Passage),
				Options:     make([]string, len(q.Options)),
			}
			for oi, o := range q.Options {
				qe.Options[oi] = strings.ToLower(o.Content)
			}
			se.Questions[qi] = qe
		}
		entry.Sections[si] = se
	}

	return entry, nil
}
