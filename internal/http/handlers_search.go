package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dsjohal14/prepsearch/internal/scope/search"
)

// HandleSearch runs a substring search over the session index.
// A blank term is not an error; it yields an empty result list.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid search request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must not be negative", "INVALID_LIMIT")
		return
	}

	mode := search.ParseSortMode(req.Sort)
	results := h.session.Search(req.Term, search.FiltersFrom(req.Filters), mode)

	groups := results.Groups
	if req.Limit > 0 && req.Limit < len(groups) {
		groups = groups[:req.Limit]
	}

	term := strings.TrimSpace(req.Term)
	out := make([]SearchResult, len(groups))
	for i, g := range groups {
		out[i] = toSearchResult(g, term, req.Highlight)
	}

	h.logger.Info().
		Str("term", term).
		Str("sort", string(mode)).
		Int("results", len(out)).
		Str("state", string(results.State)).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:     out,
		Count:       len(out),
		Matches:     search.MatchCount(groups),
		Term:        term,
		Sort:        string(mode),
		State:       results.State,
		Loading:     results.Loading,
		FetchFailed: results.FetchFailed,
	})
}

func toSearchResult(g search.ResultGroup, term string, highlight bool) SearchResult {
	matches := make([]Match, len(g.Matches))
	for i, m := range g.Matches {
		matches[i] = Match{MatchRecord: m}
		if highlight {
			matches[i].Segments = search.Highlight(m.Content, term)
		}
	}
	return SearchResult{
		TestID:      g.Test.ID,
		TestTitle:   g.Test.Title,
		Description: g.Test.Description,
		MatchCount:  len(g.Matches),
		Matches:     matches,
	}
}

// HandleSuggest returns autocomplete suggestions for the q parameter
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	suggestions := h.session.Suggest(q)
	if suggestions == nil {
		suggestions = []string{}
	}

	h.logger.Debug().Str("query", q).Int("suggestions", len(suggestions)).Msg("suggest completed")

	writeJSON(w, http.StatusOK, SuggestResponse{
		Suggestions: suggestions,
		Query:       q,
	})
}

// HandleHighlight splits text into plain and emphasized segments
func (h *Handler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid highlight request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	writeJSON(w, http.StatusOK, HighlightResponse{
		Segments: search.Highlight(req.Text, req.Term),
	})
}
