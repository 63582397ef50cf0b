// Package rest exposes the component's TMF REST surface: per-resource
// CRUD controllers, hub registration and the event listener endpoint.
package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tmforum-oda/reference-example-components/internal/downstream"
	"github.com/tmforum-oda/reference-example-components/internal/hub"
	"github.com/tmforum-oda/reference-example-components/internal/notify"
	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Default body size limit for mutating operations.
const defaultMaxBodySize = 1 << 20 // 1MB

// apiError is the error response body: a status code string plus a
// human readable message.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler hosts the REST controllers for one component instance.
type Handler struct {
	store      storage.Store
	registry   *hub.Registry
	dispatcher *notify.Dispatcher
	downstream *downstream.Client
	logger     *slog.Logger

	// operations feeds the entrypoint's _links home document.
	operations []operationLink
}

// NewHandler creates the REST handler. The downstream client may be nil
// when aggregation is not configured.
func NewHandler(store storage.Store, registry *hub.Registry, dispatcher *notify.Dispatcher, ds *downstream.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		downstream: ds,
		logger:     logger.With("component", "rest"),
	}
}

// writeError writes the JSON error body used across all controllers.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiError{Code: strconv.Itoa(status), Message: message}); err != nil {
		slog.Warn("failed to encode error response", "error", err)
	}
}

// writeServiceError maps domain errors onto the REST taxonomy:
// 400 invalid request, 404 not found, 500 everything else.
func writeServiceError(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "No resource with given id found")
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(internalMessage, "error", err)
		writeError(w, http.StatusInternalServerError, internalMessage)
	}
}

// sendResource writes a cleaned resource. A Location header is set
// whenever the document carries an href.
func sendResource(w http.ResponseWriter, status int, doc model.Resource) {
	if href := doc.GetHref(); href != "" {
		w.Header().Set("Location", href)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func sendResourceList(w http.ResponseWriter, status int, docs []model.Resource) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if docs == nil {
		docs = []model.Resource{}
	}
	if err := json.NewEncoder(w).Encode(docs); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// decodeBody reads a JSON object payload. A missing or malformed body
// yields model.ErrInvalidRequest.
func decodeBody(r *http.Request) (model.Resource, error) {
	if r.Body == nil {
		return nil, model.ErrInvalidRequest
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, defaultMaxBodySize))
	if err != nil {
		return nil, model.ErrInvalidRequest
	}
	if len(body) == 0 {
		return nil, model.ErrInvalidRequest
	}
	var payload model.Resource
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, model.ErrInvalidRequest
	}
	return payload, nil
}
