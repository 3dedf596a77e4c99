// Package httpapi provides HTTP handlers and data transfer objects for the prepsearch API.
package httpapi

import (
	"time"

	"github.com/dsjohal14/prepsearch/internal/scope/search"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string       `json:"status"`
	State    search.State `json:"state"`
	DocCount int          `json:"doc_count"`
}

// SessionResponse reports the search session after open or reload
type SessionResponse struct {
	State     search.State `json:"state"`
	DocCount  int          `json:"doc_count"`
	Indexless int          `json:"indexless"`
	BuiltAt   *time.Time   `json:"built_at,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// SearchRequest represents search request
type SearchRequest struct {
	Term      string          `json:"term"`
	Filters   map[string]bool `json:"filters,omitempty"` // Missing fields stay enabled
	Sort      string          `json:"sort,omitempty"`    // relevance, testName or matchCount
	Limit     int             `json:"limit,omitempty"`   // Default: all groups
	Highlight bool            `json:"highlight,omitempty"`
}

// Match is a single hit inside a result
type Match struct {
	search.MatchRecord
	Segments []search.Segment `json:"segments,omitempty"`
}

// SearchResult groups the matches of one test
type SearchResult struct {
	TestID      string  `json:"test_id"`
	TestTitle   string  `json:"test_title"`
	Description string  `json:"description,omitempty"`
	MatchCount  int     `json:"match_count"`
	Matches     []Match `json:"matches"`
}

// SearchResponse represents search results
type SearchResponse struct {
	Results     []SearchResult `json:"results"`
	Count       int            `json:"count"`
	Matches     int            `json:"matches"`
	Term        string         `json:"term"`
	Sort        string         `json:"sort"`
	State       search.State   `json:"state"`
	Loading     bool           `json:"loading"`
	FetchFailed bool           `json:"fetch_failed"`
}

// SuggestResponse represents autocomplete suggestions
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Query       string   `json:"query"`
}

// HighlightRequest represents a highlight request
type HighlightRequest struct {
	Text string `json:"text"`
	Term string `json:"term"`
}

// HighlightResponse carries the highlight segments
type HighlightResponse struct {
	Segments []search.Segment `json:"segments"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
