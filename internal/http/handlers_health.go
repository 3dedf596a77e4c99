package httpapi

import "net/http"

// HandleHealth returns API health status and document count
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	status := h.session.Status()
	resp := HealthResponse{
		Status:   "healthy",
		State:    status.State,
		DocCount: status.Documents,
	}

	h.logger.Debug().Int("doc_count", status.Documents).Str("state", string(status.State)).Msg("health check")

	writeJSON(w, http.StatusOK, resp)
}
