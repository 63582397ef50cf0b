package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmforum-oda/reference-example-components/internal/hub"
	pubsubmem "github.com/tmforum-oda/reference-example-components/internal/pubsub/memory"
	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/internal/storage/memory"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

const publishPath = "/acme/productCatalogManagement/v5/catalog"

func registerCallback(t *testing.T, reg *hub.Registry, url string) {
	t.Helper()
	_, err := reg.Register(context.Background(), "/acme/productCatalogManagement/v5/hub", model.Resource{
		"callback": url,
	})
	require.NoError(t, err)
}

func TestDispatcher_FanOutDeliversToAllSubscribers(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)

	var delivered int32
	var lastBody atomic.Value
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastBody.Store(body)
		atomic.AddInt32(&delivered, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer target.Close()

	for i := 0; i < 3; i++ {
		registerCallback(t, reg, target.URL)
	}

	d := NewDispatcher(store, reg, nil)
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1", "name": "X"},
	})
	d.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&delivered))

	body := lastBody.Load().(map[string]interface{})
	assert.Equal(t, "CatalogCreationNotification", body["eventType"])
	event := body["event"].(map[string]interface{})
	require.Contains(t, event, "catalog")
	assert.Equal(t, "X", event["catalog"].(map[string]interface{})["name"])
	for key := range body {
		assert.NotContains(t, key, "_")
	}

	// The transient event buffer is empty once the fan-out settled.
	n, err := store.Count(context.Background(), storage.EventCollection, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_PartialFailureDoesNotAffectOthers(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)

	var succeeded int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&succeeded, 1)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	// Simulate a network error for one subscriber.
	unreachable := bad.URL
	bad.Close()

	registerCallback(t, reg, good.URL)
	registerCallback(t, reg, unreachable)
	registerCallback(t, reg, good.URL)

	d := NewDispatcher(store, reg, nil)
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodDelete,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1"},
	})
	d.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&succeeded))

	n, err := store.Count(context.Background(), storage.EventCollection, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_NoSubscribersIsNotAnError(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)

	d := NewDispatcher(store, reg, nil)
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1"},
	})
	d.Wait()

	n, err := store.Count(context.Background(), storage.EventCollection, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_ScopedByServiceGroup(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)

	var delivered int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&delivered, 1)
	}))
	defer target.Close()

	// Subscriber registered under v4 must not see v5 events.
	_, err := reg.Register(context.Background(), "/acme/productCatalogManagement/v4/hub", model.Resource{
		"callback": target.URL,
	})
	require.NoError(t, err)

	d := NewDispatcher(store, reg, nil)
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1"},
	})
	d.Wait()

	assert.Zero(t, atomic.LoadInt32(&delivered))
}

func TestDispatcher_CELFilterSuppressesDelivery(t *testing.T) {
	store := memory.NewStore()
	filter, err := NewCELFilter()
	require.NoError(t, err)
	reg := hub.NewRegistry(store, nil, hub.WithQueryValidator(filter.Validate))

	var delivered int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&delivered, 1)
	}))
	defer target.Close()

	_, err = reg.Register(context.Background(), "/acme/productCatalogManagement/v5/hub", model.Resource{
		"callback": target.URL,
		"query":    `event.eventType == "CatalogRemoveNotification"`,
	})
	require.NoError(t, err)

	d := NewDispatcher(store, reg, nil, WithFilter(filter))

	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1"},
	})
	d.Wait()
	assert.Zero(t, atomic.LoadInt32(&delivered))

	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodDelete,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1"},
	})
	d.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))
}

func TestDispatcher_QueryStringSubscriberGetsBlanketDelivery(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)

	var delivered int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&delivered, 1)
	}))
	defer target.Close()

	// Queries in the original query-string form are accepted and, without
	// an installed filter, do not restrict delivery.
	_, err := reg.Register(context.Background(), "/acme/productCatalogManagement/v5/hub", model.Resource{
		"callback": target.URL,
		"query":    "status=Active",
	})
	require.NoError(t, err)

	d := NewDispatcher(store, reg, nil)
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1", "status": "Retired"},
	})
	d.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))
}

func TestDispatcher_MirrorsToEventBus(t *testing.T) {
	store := memory.NewStore()
	reg := hub.NewRegistry(store, nil)
	bus := pubsubmem.NewPublisher()

	d := NewDispatcher(store, reg, nil, WithEventBus(bus))
	d.Publish(Publication{
		Path:         publishPath,
		Method:       http.MethodPost,
		ResourceType: "Catalog",
		Resource:     model.Resource{"id": "1", "name": "X"},
	})
	d.Wait()

	msgs := bus.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "event.catalog", msgs[0].Subject)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &envelope))
	assert.Equal(t, "CatalogCreationNotification", envelope["eventType"])
}
