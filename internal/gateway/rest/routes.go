package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Default request timeout for API operations.
const defaultRequestTimeout = 30 * time.Second

// operationLink describes one registered operation for the entrypoint's
// home document.
type operationLink struct {
	OperationID string
	Method      string
	// Path is the operation's path relative to the API root.
	Path        string
	Description string
}

// Router is the registration surface RegisterRoutes needs. Both
// *http.ServeMux and server.Service satisfy it.
type Router interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// RegisterRoutes mounts the CRUD surface for every resource type plus
// the hub, listener and entrypoint endpoints. Routing is component-name
// aware: the first three path segments identify the API instance and are
// matched as wildcards, so one deployment serves whatever component name
// it was installed under.
func (h *Handler) RegisterRoutes(mux Router, resourceTypes []string) {
	for _, resourceType := range resourceTypes {
		c := &resourceController{h: h, resourceType: resourceType}
		segment := model.LowerCamel(resourceType)
		root := "/{component}/{api}/{version}/" + segment

		mux.HandleFunc("POST "+root, withTimeout(c.handleCreate, defaultRequestTimeout))
		mux.HandleFunc("GET "+root, withTimeout(c.handleList, defaultRequestTimeout))
		mux.HandleFunc("GET "+root+"/{id}", withTimeout(c.handleRetrieve, defaultRequestTimeout))
		mux.HandleFunc("PATCH "+root+"/{id}", withTimeout(c.handlePatch, defaultRequestTimeout))
		mux.HandleFunc("DELETE "+root+"/{id}", withTimeout(c.handleDelete, defaultRequestTimeout))

		h.operations = append(h.operations,
			operationLink{"create" + resourceType, http.MethodPost, "/" + segment, "Creates a " + resourceType},
			operationLink{"list" + resourceType, http.MethodGet, "/" + segment, "List or find " + resourceType + " objects"},
			operationLink{"retrieve" + resourceType, http.MethodGet, "/" + segment + "/{id}", "Retrieves a " + resourceType + " by ID"},
			operationLink{"patch" + resourceType, http.MethodPatch, "/" + segment + "/{id}", "Updates partially a " + resourceType},
			operationLink{"delete" + resourceType, http.MethodDelete, "/" + segment + "/{id}", "Deletes a " + resourceType},
		)
	}

	mux.HandleFunc("POST /{component}/{api}/{version}/hub", withTimeout(h.handleHubRegister, defaultRequestTimeout))
	mux.HandleFunc("GET /{component}/{api}/{version}/hub/{id}", withTimeout(h.handleHubGet, defaultRequestTimeout))
	mux.HandleFunc("DELETE /{component}/{api}/{version}/hub/{id}", withTimeout(h.handleHubDelete, defaultRequestTimeout))
	mux.HandleFunc("POST /{component}/{api}/{version}/listener", withTimeout(h.handleListener, defaultRequestTimeout))

	h.operations = append(h.operations,
		operationLink{"createHub", http.MethodPost, "/hub", "Register a listener"},
		operationLink{"hubGet", http.MethodGet, "/hub/{id}", "Retrieve a listener registration"},
		operationLink{"hubDelete", http.MethodDelete, "/hub/{id}", "Unregister a listener"},
		operationLink{"eventListener", http.MethodPost, "/listener", "Receive event notifications"},
	)

	mux.HandleFunc("GET /{component}/{api}/{version}/{$}", withTimeout(h.handleEntrypoint, defaultRequestTimeout))

	mux.HandleFunc("GET /health", withTimeout(h.handleHealth, 5*time.Second))
}

// withTimeout wraps a handler with a context timeout.
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
