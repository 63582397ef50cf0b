package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmforum-oda/reference-example-components/internal/config"
	"github.com/tmforum-oda/reference-example-components/internal/downstream"
	"github.com/tmforum-oda/reference-example-components/internal/gateway/rest"
	"github.com/tmforum-oda/reference-example-components/internal/hub"
	"github.com/tmforum-oda/reference-example-components/internal/logging"
	"github.com/tmforum-oda/reference-example-components/internal/notify"
	natspub "github.com/tmforum-oda/reference-example-components/internal/pubsub/nats"
	"github.com/tmforum-oda/reference-example-components/internal/server"
	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/internal/storage/memory"
	"github.com/tmforum-oda/reference-example-components/internal/storage/mongo"
)

func main() {
	configDir := flag.String("config", "config", "configuration directory")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Initialize logging
	logCloser, err := logging.Initialize(cfg.Logging)
	if err != nil {
		log.Fatalf("Logging error: %v", err)
	}
	defer logCloser.Close()

	logger := slog.Default()
	logger.Info("starting component",
		"name", cfg.Component.Name,
		"resource_types", cfg.Component.ResourceTypes,
		"storage", cfg.Storage.Backend,
	)

	// 3. Connect the document store
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()

	var provider storage.Provider
	switch cfg.Storage.Backend {
	case "memory":
		provider = memory.NewProvider()
	default:
		provider, err = mongo.NewProvider(initCtx, cfg.Storage.Mongo)
		if err != nil {
			logger.Error("failed to connect to storage", "error", err)
			os.Exit(1)
		}
	}
	store := provider.Store()

	// 4. Hub registry and event dispatcher. Delivery is blanket by
	// default: every subscriber in scope gets every event. CEL filtering
	// is an opt-in mode; it changes the query language subscribers must
	// register with, so it is never enabled implicitly.
	var registryOpts []hub.Option
	var dispatcherOpts []notify.DispatcherOption
	if cfg.Notification.FilterCEL() {
		filter, err := notify.NewCELFilter()
		if err != nil {
			logger.Error("failed to initialize event filter", "error", err)
			os.Exit(1)
		}
		registryOpts = append(registryOpts, hub.WithQueryValidator(filter.Validate))
		dispatcherOpts = append(dispatcherOpts, notify.WithFilter(filter))
	}

	registry := hub.NewRegistry(store, logger, registryOpts...)

	if cfg.Notification.NATS.Enabled {
		bus, err := natspub.NewPublisher(cfg.Notification.NATS.URL, cfg.Notification.NATS.SubjectPrefix)
		if err != nil {
			logger.Error("failed to connect to event bus", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		dispatcherOpts = append(dispatcherOpts, notify.WithEventBus(bus))
	}
	dispatcher := notify.NewDispatcher(store, registry, logger, dispatcherOpts...)

	// 5. Downstream catalog aggregation, when the canvas configured it
	var ds *downstream.Client
	if cfg.DownstreamEnabled() {
		ds = downstream.NewClient(cfg.Downstream, logger)
	}

	// 6. REST surface
	svc := server.New(cfg.Server, logger)
	handler := rest.NewHandler(store, registry, dispatcher, ds, logger)
	handler.RegisterRoutes(svc, cfg.Component.ResourceTypes)

	errChan, err := svc.Start(context.Background())
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errChan:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Let in-flight notification deliveries drain.
	dispatcher.Wait()

	if err := provider.Close(shutdownCtx); err != nil {
		logger.Error("storage shutdown failed", "error", err)
	}
	logger.Info("component stopped")
}
