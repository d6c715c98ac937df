package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/authware/authority/internal/app"
	"github.com/authware/authority/internal/config"
)

// RunCleanEvents removes audit events older than the configured retention
// window. Supports text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanEvents(ctx context.Context, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("cleaning expired audit events",
		slog.Duration("retention", cfg.EventRetention),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get event use case from container
	events, err := container.EventEmitter()
	if err != nil {
		return fmt.Errorf("failed to initialize event use case: %w", err)
	}

	count, err := events.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired events: %w", err)
	}

	if format == "json" {
		outputCleanJSON("events", count)
	} else {
		fmt.Printf("Successfully deleted %d expired event(s)\n", count)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	return nil
}
