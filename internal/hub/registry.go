package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Internal field names on stored hub records.
const (
	fieldServiceGroup = "_serviceGroup"
	fieldQuery        = "_query"
)

// QueryValidator checks a subscriber's declared filter expression at
// registration time, before the registration is accepted. The CEL-backed
// validator in the notify package is the usual implementation.
type QueryValidator func(query string) error

// Registry provides CRUD over hub subscription records. All lookups are
// scoped by the service group of the calling request's path, so a hub
// registered under one API instance is invisible to another.
type Registry struct {
	store    storage.Store
	validate QueryValidator
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithQueryValidator installs a registration-time filter validator.
func WithQueryValidator(v QueryValidator) Option {
	return func(r *Registry) { r.validate = v }
}

// NewRegistry creates a hub registry over the given store.
func NewRegistry(store storage.Store, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		store:  store,
		logger: logger.With("component", "hub"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates a hub record from the registration payload. The id,
// service group and translated query are computed here; the returned
// record is cleaned of internal fields.
func (r *Registry) Register(ctx context.Context, path string, payload model.Resource) (model.Resource, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: missing hub registration data", model.ErrInvalidRequest)
	}
	callback, _ := payload["callback"].(string)
	if callback == "" {
		return nil, fmt.Errorf("%w: callback is required", model.ErrInvalidRequest)
	}

	record := payload.Copy()
	record.SetID(uuid.New().String())
	record[fieldServiceGroup] = ServiceGroup(path)

	query, _ := record["query"].(string)
	if _, ok := record["query"]; !ok {
		record["query"] = ""
	}

	if r.validate != nil {
		if err := r.validate(query); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidQuery, err)
		}
	}

	// The declared query is translated to the store's filter form once,
	// at registration, and cached on the record.
	translated, err := storage.ParseQueryString(query)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(translated)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidQuery, err)
	}
	record[fieldQuery] = string(encoded)

	if err := r.store.InsertOne(ctx, storage.HubCollection, record); err != nil {
		return nil, err
	}

	r.logger.Info("hub registered",
		"id", record.GetID(),
		"callback", callback,
		"service_group", record[fieldServiceGroup],
	)

	return record.Clean(), nil
}

// Get retrieves the hub matching (id, service group of path), cleaned of
// internal fields. Returns model.ErrNotFound when absent.
func (r *Registry) Get(ctx context.Context, path, id string) (model.Resource, error) {
	record, err := r.store.FindOne(ctx, storage.HubCollection, storage.Criteria{
		"id":              id,
		fieldServiceGroup: ServiceGroup(path),
	}, nil)
	if err != nil {
		return nil, err
	}
	return record.Clean(), nil
}

// Delete removes the hub matching (id, service group of path). Returns
// model.ErrNotFound when no record matches within the caller's scope.
func (r *Registry) Delete(ctx context.Context, path, id string) error {
	err := r.store.DeleteOne(ctx, storage.HubCollection, storage.Criteria{
		"id":              id,
		fieldServiceGroup: ServiceGroup(path),
	})
	if err != nil {
		return err
	}
	r.logger.Info("hub unregistered", "id", id)
	return nil
}

// Subscriber is a registered callback, as seen by the dispatcher.
type Subscriber struct {
	ID       string
	Callback string
	Query    string
}

// FindByServiceGroup returns every subscriber registered under the given
// service group.
func (r *Registry) FindByServiceGroup(ctx context.Context, group string) ([]Subscriber, error) {
	records, err := r.store.Find(ctx, storage.HubCollection, storage.Criteria{fieldServiceGroup: group}, nil)
	if err != nil {
		return nil, err
	}
	subs := make([]Subscriber, 0, len(records))
	for _, record := range records {
		sub := Subscriber{ID: record.GetID()}
		sub.Callback, _ = record["callback"].(string)
		sub.Query, _ = record["query"].(string)
		subs = append(subs, sub)
	}
	return subs, nil
}
