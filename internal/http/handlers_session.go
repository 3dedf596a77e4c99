package httpapi

import (
	"net/http"

	"github.com/dsjohal14/prepsearch/internal/scope/search"
)

// HandleOpen loads the search index if it is not built yet.
// A failed fetch is reported in the body, not as an HTTP error.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Open(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("search session open failed")
	}
	writeJSON(w, http.StatusOK, sessionResponse(h.session.Status()))
}

// HandleReload fetches tests again and rebuilds the index
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reload(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("search session reload failed")
	}

	status := h.session.Status()
	h.logger.Info().
		Str("state", string(status.State)).
		Int("doc_count", status.Documents).
		Msg("search session reloaded")

	writeJSON(w, http.StatusOK, sessionResponse(status))
}

func sessionResponse(status search.Status) SessionResponse {
	resp := SessionResponse{
		State:     status.State,
		DocCount:  status.Documents,
		Indexless: status.Indexless,
		Error:     status.Error,
	}
	if !status.BuiltAt.IsZero() {
		builtAt := status.BuiltAt
		resp.BuiltAt = &builtAt
	}
	return resp
}
