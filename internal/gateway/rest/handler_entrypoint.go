package rest

import (
	"net/http"
	"strings"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// handleEntrypoint serves the API home document: a _links object with a
// self link and one link per registered operation, keyed by operation id.
func (h *Handler) handleEntrypoint(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimSuffix(r.URL.Path, "/")

	links := model.Resource{
		"self": map[string]interface{}{"href": base},
	}
	for _, op := range h.operations {
		links[op.OperationID] = map[string]interface{}{
			"href":        base + op.Path,
			"method":      op.Method,
			"description": op.Description,
		}
	}

	writeJSON(w, http.StatusOK, model.Resource{"_links": links})
}
