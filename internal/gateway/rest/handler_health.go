package rest

import "net/http"

// handleHealth reports liveness. Readiness is implied: the process only
// starts serving after the store provider connected.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
