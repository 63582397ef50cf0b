package rest

import "net/http"

// handleListener is the client side of the webhook contract: it accepts
// an event envelope from another component's hub delivery and echoes it
// back. The component only logs received events.
func (h *Handler) handleListener(w http.ResponseWriter, r *http.Request) {
	envelope, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing event data")
		return
	}

	h.logger.Info("event received",
		"event_id", envelope.EventID(),
		"event_type", envelope.EventType(),
	)

	sendResource(w, http.StatusCreated, envelope.Clean())
}
