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

// RunCreateUser provisions a user inside a membership. The referenced role
// must already exist. Outputs the user ID in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUseCase identityUseCase.UserUseCase,
	logger *slog.Logger,
	membershipID string,
	username string,
	email string,
	password string,
	firstName string,
	lastName string,
	role string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	parsedMembershipID, err := uuid.Parse(membershipID)
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}

	logger.Info("creating new user",
		slog.String("membership_id", membershipID),
		slog.String("username", username),
	)

	input := &identityDomain.CreateUserInput{
		MembershipID: parsedMembershipID,
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Password:     password,
		Role:         role,
		IsActive:     isActive,
	}

	user, err := userUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		outputUserJSON(user, io.Writer)
	} else {
		outputUserText(user, io.Writer)
	}

	logger.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", username),
	)

	return nil
}

// outputUserText outputs the result in human-readable text format.
func outputUserText(user *identityDomain.User, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nUser created successfully!")
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", user.ID.String())
	_, _ = fmt.Fprintf(writer, "Username: %s\n", user.Username)
	_, _ = fmt.Fprintf(writer, "Role: %s\n", user.Role)
}

// outputUserJSON outputs the result in JSON format for machine consumption.
func outputUserJSON(user *identityDomain.User, writer io.Writer) {
	result := map[string]string{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
