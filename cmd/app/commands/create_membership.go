package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
)

// RunCreateMembership provisions a new tenant with its admin role. When no
// secret key is provided a random signing key is generated and shown once.
// Outputs the membership ID and the generated key in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateMembership(
	ctx context.Context,
	membershipUseCase identityUseCase.MembershipUseCase,
	logger *slog.Logger,
	name string,
	slug string,
	expiresIn int64,
	refreshExpiresIn int64,
	secretKey string,
	algorithm string,
	encoding string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new membership", slog.String("slug", slug))

	hashAlgorithm, err := parseHashAlgorithm(algorithm)
	if err != nil {
		return err
	}

	secretEncoding, err := parseSecretEncoding(encoding)
	if err != nil {
		return err
	}

	input := &identityDomain.CreateMembershipInput{
		Name:                  name,
		Slug:                  slug,
		ExpiresIn:             expiresIn,
		RefreshTokenExpiresIn: refreshExpiresIn,
		SecretKey:             secretKey,
		HashAlgorithm:         hashAlgorithm,
		DefaultEncoding:       secretEncoding,
	}

	output, err := membershipUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	if format == "json" {
		outputMembershipJSON(output, io.Writer)
	} else {
		outputMembershipText(output, io.Writer)
	}

	logger.Info("membership created successfully",
		slog.String("membership_id", output.Membership.ID.String()),
		slog.String("slug", slug),
	)

	return nil
}

// parseHashAlgorithm converts an algorithm string to identityDomain.HashAlgorithm.
func parseHashAlgorithm(algorithm string) (identityDomain.HashAlgorithm, error) {
	alg := identityDomain.HashAlgorithm(algorithm)
	if !alg.IsValid() {
		return "", fmt.Errorf("invalid algorithm: %s (valid options: HS256, HS384, HS512)", algorithm)
	}
	return alg, nil
}

// parseSecretEncoding converts an encoding string to identityDomain.SecretEncoding.
func parseSecretEncoding(encoding string) (identityDomain.SecretEncoding, error) {
	enc := identityDomain.SecretEncoding(encoding)
	if !enc.IsValid() {
		return "", fmt.Errorf("invalid encoding: %s (valid options: utf8, base64)", encoding)
	}
	return enc, nil
}

// outputMembershipText outputs the result in human-readable text format.
func outputMembershipText(output *identityDomain.CreateMembershipOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nMembership created successfully!")
	_, _ = fmt.Fprintf(writer, "Membership ID: %s\n", output.Membership.ID.String())
	_, _ = fmt.Fprintf(writer, "Slug: %s\n", output.Membership.Slug)
	if output.PlainSecretKey != "" {
		_, _ = fmt.Fprintf(writer, "Secret Key: %s\n", output.PlainSecretKey)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret key is shown only once. Store it securely.")
	}
}

// outputMembershipJSON outputs the result in JSON format for machine consumption.
func outputMembershipJSON(output *identityDomain.CreateMembershipOutput, writer io.Writer) {
	result := map[string]string{
		"membership_id": output.Membership.ID.String(),
		"slug":          output.Membership.Slug,
	}
	if output.PlainSecretKey != "" {
		result["secret_key"] = output.PlainSecretKey
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
