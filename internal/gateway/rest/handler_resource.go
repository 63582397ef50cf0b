package rest

import (
	"errors"
	"net/http"

	"github.com/tmforum-oda/reference-example-components/internal/notify"
	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// resourceController serves the CRUD surface of a single resource type.
// Resources are free-form documents; the controller only owns the
// reserved id/href/@type fields and the store/notify orchestration.
type resourceController struct {
	h            *Handler
	resourceType string
}

// collection returns the backing collection name, which is the resource
// type name itself.
func (c *resourceController) collection() string {
	return c.resourceType
}

func (c *resourceController) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid request payload")
		return
	}

	payload.GenerateIDIfEmpty()
	// href is always derived from the collection path and the id.
	payload.SetHref(r.URL.Path)
	payload.SetTypeIfEmpty(c.resourceType)

	if err := c.h.store.InsertOne(r.Context(), c.collection(), payload); err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	sendResource(w, http.StatusCreated, payload.Clean())
	c.h.dispatcher.Publish(notify.Publication{
		Path:         r.URL.Path,
		Method:       r.Method,
		ResourceType: c.resourceType,
		Resource:     payload,
	})
}

func (c *resourceController) handleList(w http.ResponseWriter, r *http.Request) {
	query, err := storage.ParseListQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	total, err := c.h.store.Count(r.Context(), c.collection(), nil)
	if err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	docs, err := c.h.store.Find(r.Context(), c.collection(), query.Criteria, &query.Options)
	if err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	// Dependent product catalogs are aggregated by concatenation.
	if c.h.downstream != nil {
		docs = append(docs, c.h.downstream.List(r.Context(), c.resourceType)...)
	}

	cleaned := model.CleanAll(docs)

	w.Header().Set("X-Total-Count", formatInt(total))
	w.Header().Set("X-Result-Count", formatInt(int64(len(cleaned))))
	if query.Options.Limit > 0 || query.Options.Skip > 0 {
		setPaginationLinks(w, r, query, total)
	}

	status := http.StatusOK
	if query.Options.Limit > 0 && int64(len(cleaned)) < total {
		status = http.StatusPartialContent
	}
	sendResourceList(w, status, cleaned)
}

func (c *resourceController) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	query, err := storage.ParseListQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}
	criteria := query.Criteria
	criteria["id"] = id

	doc, err := c.h.store.FindOne(r.Context(), c.collection(), criteria, &storage.FindOptions{
		Projection: query.Options.Projection,
	})
	if err == nil {
		sendResource(w, http.StatusOK, doc.Clean())
		return
	}
	if !errors.Is(err, model.ErrNotFound) {
		writeServiceError(w, err, "Internal database error")
		return
	}

	// Not local: fall back to the downstream catalogs.
	if c.h.downstream != nil {
		if remote := c.h.downstream.Retrieve(r.Context(), c.resourceType, id); remote != nil {
			sendResource(w, http.StatusOK, remote.Clean())
			return
		}
	}
	writeError(w, http.StatusNotFound, "No resource with given id found")
}

func (c *resourceController) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	patch, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid request payload")
		return
	}
	// id and href are server-owned and immutable.
	delete(patch, "id")
	delete(patch, "href")

	criteria := storage.Criteria{"id": id}

	old, err := c.h.store.FindOne(r.Context(), c.collection(), criteria, nil)
	if err != nil {
		writeServiceError(w, err, "Unable to update resource")
		return
	}

	if err := c.h.store.UpdateOne(r.Context(), c.collection(), criteria, patch); err != nil {
		writeServiceError(w, err, "Unable to update resource")
		return
	}

	doc, err := c.h.store.FindOne(r.Context(), c.collection(), criteria, nil)
	if err != nil {
		writeServiceError(w, err, "Unable to update resource")
		return
	}

	sendResource(w, http.StatusOK, doc.Clean())
	c.h.dispatcher.Publish(notify.Publication{
		Path:         r.URL.Path,
		Method:       r.Method,
		ResourceType: c.resourceType,
		Resource:     doc,
		Previous:     old,
	})
}

func (c *resourceController) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	criteria := storage.Criteria{"id": id}

	// The event carries the just-deleted state, so read before removing.
	old, err := c.h.store.FindOne(r.Context(), c.collection(), criteria, nil)
	if err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	if err := c.h.store.DeleteOne(r.Context(), c.collection(), criteria); err != nil {
		writeServiceError(w, err, "Internal database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
	c.h.dispatcher.Publish(notify.Publication{
		Path:         r.URL.Path,
		Method:       r.Method,
		ResourceType: c.resourceType,
		Resource:     old,
	})
}
