package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
)

// RunCreateRole creates a role inside a membership. Supports both interactive
// mode (when permissionsCSV is empty) and non-interactive mode (comma-separated
// permission expressions). Outputs the role ID in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateRole(
	ctx context.Context,
	roleUseCase identityUseCase.RoleUseCase,
	logger *slog.Logger,
	membershipID string,
	name string,
	description string,
	permissionsCSV string,
	forbiddenCSV string,
	format string,
	io IOTuple,
) error {
	parsedMembershipID, err := uuid.Parse(membershipID)
	if err != nil {
		return fmt.Errorf("invalid membership id: %w", err)
	}

	logger.Info("creating new role",
		slog.String("membership_id", membershipID),
		slog.String("name", name),
	)

	var permissions []string
	if permissionsCSV == "" {
		// Interactive mode
		permissions, err = promptForPermissions(io)
		if err != nil {
			return fmt.Errorf("failed to get permissions: %w", err)
		}
	} else {
		permissions = splitExpressions(permissionsCSV)
	}

	if len(permissions) == 0 {
		return fmt.Errorf("at least one permission is required")
	}

	input := &identityDomain.CreateRoleInput{
		MembershipID: parsedMembershipID,
		Name:         name,
		Description:  description,
		Permissions:  permissions,
		Forbidden:    splitExpressions(forbiddenCSV),
	}

	role, err := roleUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		outputRoleJSON(role, io.Writer)
	} else {
		outputRoleText(role, io.Writer)
	}

	logger.Info("role created successfully",
		slog.String("role_id", role.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// promptForPermissions interactively prompts the user to enter permission
// expressions until the user declines to add more.
func promptForPermissions(io IOTuple) ([]string, error) {
	reader := bufio.NewReader(io.Reader)
	writer := io.Writer
	var permissions []string

	_, _ = fmt.Fprintln(writer, "\nEnter permissions for the role")
	_, _ = fmt.Fprintln(writer, "Format: subject.resource.action.object (e.g., '*.users.read.*' or 'users.*')")
	_, _ = fmt.Fprintln(writer)

	permissionNum := 1
	for {
		_, _ = fmt.Fprintf(writer, "Permission #%d: ", permissionNum)
		expression, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read permission: %w", err)
		}
		expression = strings.TrimSpace(expression)

		if expression == "" {
			return nil, fmt.Errorf("permission cannot be empty")
		}

		permissions = append(permissions, expression)

		_, _ = fmt.Fprint(writer, "Add another permission? (y/n): ")
		addAnother, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		addAnother = strings.ToLower(strings.TrimSpace(addAnother))

		if addAnother != "y" && addAnother != "yes" {
			break
		}

		permissionNum++
	}

	return permissions, nil
}

// splitExpressions converts a comma-separated string into a slice of
// permission expressions, dropping empty entries.
func splitExpressions(input string) []string {
	if input == "" {
		return nil
	}

	parts := strings.Split(input, ",")
	expressions := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			expressions = append(expressions, trimmed)
		}
	}

	return expressions
}

// outputRoleText outputs the result in human-readable text format.
func outputRoleText(role *identityDomain.Role, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nRole created successfully!")
	_, _ = fmt.Fprintf(writer, "Role ID: %s\n", role.ID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", role.Name)
	_, _ = fmt.Fprintf(writer, "Permissions: %s\n", strings.Join(role.Permissions, ", "))
	if len(role.Forbidden) > 0 {
		_, _ = fmt.Fprintf(writer, "Forbidden: %s\n", strings.Join(role.Forbidden, ", "))
	}
}

// outputRoleJSON outputs the result in JSON format for machine consumption.
func outputRoleJSON(role *identityDomain.Role, writer io.Writer) {
	result := map[string]interface{}{
		"role_id":     role.ID.String(),
		"name":        role.Name,
		"permissions": role.Permissions,
		"forbidden":   role.Forbidden,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
