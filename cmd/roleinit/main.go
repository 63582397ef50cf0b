package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmforum-oda/reference-example-components/internal/bootstrap"
)

// roleinit runs as a post-install job: it seeds the initial Admin role
// through the component API and exits once the API accepted it.
func main() {
	cfg := bootstrap.DefaultConfig()
	cfg.ApplyDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bootstrap.NewInitializer(cfg, slog.Default()).Run(ctx); err != nil {
		slog.Error("role initialization aborted", "error", err)
		os.Exit(1)
	}
}
