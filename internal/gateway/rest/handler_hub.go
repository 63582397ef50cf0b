package rest

import (
	"errors"
	"net/http"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

func (h *Handler) handleHubRegister(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing hub registration data")
		return
	}

	record, err := h.registry.Register(r.Context(), r.URL.Path, payload)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, model.ErrInvalidQuery):
			// Filter translation failures surface as a server error,
			// matching the registration contract.
			writeError(w, http.StatusInternalServerError, "Unable to process query")
		default:
			writeServiceError(w, err, "Database error")
		}
		return
	}

	sendResource(w, http.StatusCreated, record)
}

func (h *Handler) handleHubGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.registry.Get(r.Context(), r.URL.Path, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Database error")
		return
	}
	sendResource(w, http.StatusOK, record)
}

func (h *Handler) handleHubDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), r.URL.Path, r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
