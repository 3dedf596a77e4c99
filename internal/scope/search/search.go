// Package search provides substring search over practice test content.
//
// The index is a lowercased mirror of each test, built once per Session and
// scanned on every query. Matching is plain case-insensitive containment:
// no tokenizing, stemming or fuzzy matching.
package search

import (
	"github.com/dsjohal14/prepsearch/internal/libs/obs"
	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
	"github.com/rs/zerolog"
)

// FieldType names a searchable field of a test
type FieldType string

// Searchable field types, in scan order
const (
	FieldTitle       FieldType = "title"
	FieldDescription FieldType = "description"
	FieldSection     FieldType = "section"
	FieldQuestion    FieldType = "question"
	FieldExplanation FieldType = "explanation"
	FieldPassage     FieldType = "passage"
	FieldOption      FieldType = "option"
)

// FieldTypes lists every field type in scan order
var FieldTypes = []FieldType{
	FieldTitle,
	FieldDescription,
	FieldSection,
	FieldQuestion,
	FieldExplanation,
	FieldPassage,
	FieldOption,
}

// Filters gates each field type. A missing key counts as enabled.
type Filters map[FieldType]bool

// DefaultFilters returns filters with every field enabled
func DefaultFilters() Filters {
	f := make(Filters, len(FieldTypes))
	for _, t := range FieldTypes {
		f[t] = true
	}
	return f
}

// FiltersFrom converts wire filters, ignoring unknown field names
func FiltersFrom(m map[string]bool) Filters {
	f := DefaultFilters()
	for _, t := range FieldTypes {
		if v, ok := m[string(t)]; ok {
			f[t] = v
		}
	}
	return f
}

// Enabled reports whether a field type participates in search
func (f Filters) Enabled(t FieldType) bool {
	v, ok := f[t]
	return !ok || v
}

// MatchRecord is one textual hit in one field of one test.
// Section, Question and Option are 1-based; zero means not applicable.
type MatchRecord struct {
	Type      FieldType `json:"type"`
	Content   string    `json:"content"`
	TestID    string    `json:"test_id"`
	TestTitle string    `json:"test_title"`
	Section   int       `json:"section,omitempty"`
	Question  int       `json:"question,omitempty"`
	Option    int       `json:"option,omitempty"`
}

// ResultGroup is a test together with its matches for one query
type ResultGroup struct {
	Test    catalog.TestDocument `json:"test"`
	Matches []MatchRecord        `json:"matches"`
}

// Engine runs index builds, scans and suggestions.
// It holds no index state; callers pass the index in.
type Engine struct {
	logger  zerolog.Logger
	metrics *obs.Metrics
}

// NewEngine creates a new search engine. metrics may be nil.
func NewEngine(logger zerolog.Logger, metrics *obs.Metrics) *Engine {
	return &Engine{
		logger:  logger,
		metrics: metrics,
	}
}
