package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tmforum-oda/reference-example-components/internal/hub"
	"github.com/tmforum-oda/reference-example-components/internal/pubsub"
	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Publication describes a mutating operation to be announced: the HTTP
// request context it originated from (path and method), the resource type
// and the new and, for updates, previous state.
type Publication struct {
	Path         string
	Method       string
	ResourceType string
	Resource     model.Resource
	Previous     model.Resource
}

// Dispatcher performs best-effort fan-out of change events to registered
// hub callbacks. Publish is invoked after the HTTP response of the
// triggering request has been sent, so nothing here ever fails the
// primary request/response cycle: every error is logged and swallowed.
type Dispatcher struct {
	store    storage.Store
	registry *hub.Registry
	client   *http.Client
	filter   FilterEvaluator
	bus      pubsub.Publisher
	logger   *slog.Logger

	wg sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHTTPClient replaces the delivery HTTP client.
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) { d.client = client }
}

// WithFilter installs a per-subscriber filter evaluator. Without one,
// every event is delivered to every subscriber in scope.
func WithFilter(filter FilterEvaluator) DispatcherOption {
	return func(d *Dispatcher) { d.filter = filter }
}

// WithEventBus mirrors cleaned envelopes onto a message bus, subject
// "event.<lowerCamelResourceType>".
func WithEventBus(bus pubsub.Publisher) DispatcherOption {
	return func(d *Dispatcher) { d.bus = bus }
}

// NewDispatcher creates a dispatcher over the given store and registry.
func NewDispatcher(store storage.Store, registry *hub.Registry, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		store:    store,
		registry: registry,
		// Individual deliveries carry no timeout: a hung callback stalls
		// only its own delivery task.
		client: &http.Client{},
		filter: AcceptAll{},
		logger: logger.With("component", "notify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish announces a mutation to all subscribers in the publication's
// service group. It returns immediately; classification, persistence,
// fan-out and cleanup run in a background task. The outcome is not
// observable to the triggering request.
func (d *Dispatcher) Publish(pub Publication) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.publish(context.Background(), pub)
	}()
}

// Wait blocks until every in-flight publication has settled. Used on
// shutdown and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) publish(ctx context.Context, pub Publication) {
	eventType := Classify(pub.ResourceType, pub.Method, pub.Resource, pub.Previous)
	envelope := model.NewEventMessage(pub.ResourceType, eventType, pub.Resource.Clean())
	eventID := envelope.EventID()

	group := hub.ServiceGroup(pub.Path)
	logger := d.logger.With("event_id", eventID, "event_type", eventType, "service_group", group)

	subs, err := d.registry.FindByServiceGroup(ctx, group)
	if err != nil {
		logger.Error("failed to find subscribers", "error", err)
		return
	}
	if len(subs) == 0 {
		logger.Info("no listeners registered, event will not be delivered")
	}

	// The envelope is persisted as a scratch buffer for the duration of
	// the fan-out, then removed regardless of delivery outcome.
	if err := d.store.InsertOne(ctx, storage.EventCollection, envelope); err != nil {
		logger.Error("failed to store event", "error", err)
		return
	}
	defer func() {
		if err := d.store.DeleteOne(ctx, storage.EventCollection, storage.Criteria{"eventId": eventID}); err != nil {
			logger.Error("event clean-up failed", "error", err)
		}
	}()

	d.mirrorToBus(ctx, pub.ResourceType, envelope, logger)

	// One task per subscriber; the barrier keeps the stored envelope
	// alive until the slowest delivery has read it.
	var deliveries sync.WaitGroup
	for _, sub := range subs {
		deliveries.Add(1)
		go func(sub hub.Subscriber) {
			defer deliveries.Done()
			d.deliver(ctx, sub, eventID, logger)
		}(sub)
	}
	deliveries.Wait()

	logger.Info("notification fan-out settled", "subscribers", len(subs))
}

// deliver re-reads the stored envelope and posts it to one subscriber.
// Failures are logged only: no retry, no effect on other deliveries.
func (d *Dispatcher) deliver(ctx context.Context, sub hub.Subscriber, eventID string, logger *slog.Logger) {
	logger = logger.With("callback", sub.Callback, "hub_id", sub.ID)

	stored, err := d.store.FindOne(ctx, storage.EventCollection, storage.Criteria{"eventId": eventID}, nil)
	if err != nil {
		logger.Error("stored event lookup failed", "error", err)
		return
	}
	payload := stored.Clean()

	matched, err := d.filter.Matches(sub, payload)
	if err != nil {
		logger.Error("subscriber filter failed", "error", err)
		return
	}
	if !matched {
		logger.Info("event filtered out for subscriber")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to encode event payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Callback, bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to build delivery request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		logger.Warn("delivery failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("delivery rejected", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("delivery succeeded", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
}

func (d *Dispatcher) mirrorToBus(ctx context.Context, resourceType string, envelope model.Resource, logger *slog.Logger) {
	if d.bus == nil {
		return
	}
	data, err := json.Marshal(envelope.Clean())
	if err != nil {
		logger.Error("failed to encode bus message", "error", err)
		return
	}
	subject := "event." + model.LowerCamel(resourceType)
	if err := d.bus.Publish(ctx, subject, data); err != nil {
		logger.Warn("event bus publish failed", "subject", subject, "error", err)
	}
}
