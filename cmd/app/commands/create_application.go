package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
)

// RunCreateApplication registers a machine principal inside a membership.
// The generated plain secret is shown once and never retrievable again.
// Outputs the application ID and secret in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateApplication(
	ctx context.Context,
	applicationUseCase identityUseCase.ApplicationUseCase,
	logger *slog.Logger,
	membershipID string,
	name string,
	role string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	parsedMembershipID, err := uuid.Parse(membershipID)
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}

	logger.Info("creating new application",
		slog.String("membership_id", membershipID),
		slog.String("name", name),
	)

	input := &identityDomain.CreateApplicationInput{
		MembershipID: parsedMembershipID,
		Name:         name,
		Role:         role,
		IsActive:     isActive,
	}

	output, err := applicationUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if format == "json" {
		outputApplicationJSON(output, io.Writer)
	} else {
		outputApplicationText(output, io.Writer)
	}

	logger.Info("application created successfully",
		slog.String("application_id", output.Application.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputApplicationText outputs the result in human-readable text format.
func outputApplicationText(output *identityDomain.CreateApplicationOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nApplication created successfully!")
	_, _ = fmt.Fprintf(writer, "Application ID: %s\n", output.Application.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}

// outputApplicationJSON outputs the result in JSON format for machine consumption.
func outputApplicationJSON(output *identityDomain.CreateApplicationOutput, writer io.Writer) {
	result := map[string]string{
		"application_id": output.Application.ID.String(),
		"secret":         output.PlainSecret,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
