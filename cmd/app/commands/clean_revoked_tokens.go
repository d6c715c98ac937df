package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/authware/authority/internal/app"
	"github.com/authware/authority/internal/config"
)

// RunCleanRevokedTokens removes revocation records whose tokens expired past
// the configured retention window. Expired revocations are safe to drop: the
// token itself no longer verifies. Supports text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanRevokedTokens(ctx context.Context, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("cleaning expired revocation records",
		slog.Duration("retention", cfg.RevokedTokenRetention),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get token use case from container
	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	count, err := tokenUseCase.DeleteExpiredRevocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired revocations: %w", err)
	}

	if format == "json" {
		outputCleanJSON("revoked_tokens", count)
	} else {
		fmt.Printf("Successfully deleted %d expired revocation record(s)\n", count)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))

	return nil
}

// outputCleanJSON outputs a cleanup result in JSON format for machine consumption.
func outputCleanJSON(target string, count int64) {
	result := map[string]interface{}{
		"target": target,
		"count":  count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Println(string(jsonBytes))
}
