// Package storage defines the document store abstraction backing the
// resource collections, the hub registry and the transient event buffer.
package storage

import (
	"context"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Criteria is a set of field equality constraints, expressed in the
// store's neutral form. Backends translate it to their native filter.
type Criteria map[string]interface{}

// SortField orders results by a single field.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// FindOptions carries projection and paging for find operations.
type FindOptions struct {
	// Projection lists the fields to return. Empty means all fields.
	Projection []string    `json:"projection,omitempty"`
	Skip       int64       `json:"skip,omitempty"`
	Limit      int64       `json:"limit,omitempty"`
	Sort       []SortField `json:"sort,omitempty"`
}

// Store is the generic CRUD surface over a single document database.
// Collections are addressed by name; one collection per resource type,
// plus the reserved HUB and TMPEVENTS collections.
type Store interface {
	InsertOne(ctx context.Context, collection string, doc model.Resource) error

	// FindOne returns the first document matching criteria, or
	// model.ErrNotFound.
	FindOne(ctx context.Context, collection string, criteria Criteria, opts *FindOptions) (model.Resource, error)

	Find(ctx context.Context, collection string, criteria Criteria, opts *FindOptions) ([]model.Resource, error)

	// Count returns the total number of documents in the collection,
	// ignoring paging options.
	Count(ctx context.Context, collection string, criteria Criteria) (int64, error)

	// UpdateOne applies a partial merge ($set semantics) to the first
	// matching document. Returns model.ErrNotFound when nothing matched.
	UpdateOne(ctx context.Context, collection string, criteria Criteria, patch model.Resource) error

	// DeleteOne removes the first matching document. Returns
	// model.ErrNotFound when nothing matched.
	DeleteOne(ctx context.Context, collection string, criteria Criteria) error

	Close(ctx context.Context) error
}

// Provider owns the store connection lifecycle. It is created once at
// startup and injected; there is no process-wide mutable handle.
type Provider interface {
	Store() Store
	Close(ctx context.Context) error
}

// Reserved collection names.
const (
	HubCollection   = "HUB"
	EventCollection = "TMPEVENTS"
)
