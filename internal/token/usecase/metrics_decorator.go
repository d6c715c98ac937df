package usecase

import (
	"context"
	"time"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	"github.com/authware/authority/internal/metrics"
	tokenDomain "github.com/authware/authority/internal/token/domain"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Generate records metrics for token generation operations.
func (t *tokenUseCaseWithMetrics) Generate(
	ctx context.Context,
	input *tokenDomain.GenerateTokenInput,
) (*tokenDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Generate(ctx, input)
	t.record(ctx, "generate", start, err)
	return pair, err
}

// Verify records metrics for verification operations plus the validation
// outcome counter.
func (t *tokenUseCaseWithMetrics) Verify(
	ctx context.Context,
	rawToken string,
) (*tokenDomain.ValidationResult, error) {
	start := time.Now()
	result, err := t.next.Verify(ctx, rawToken)
	t.record(ctx, "verify", start, err)

	if err == nil {
		outcome := "validated"
		if !result.IsValidated {
			outcome = string(result.Reason)
		}
		t.metrics.RecordTokenValidation(ctx, outcome)
	}

	return result, err
}

// WhoAmI records metrics for principal resolution operations.
func (t *tokenUseCaseWithMetrics) WhoAmI(
	ctx context.Context,
	rawToken string,
) (*identityDomain.Principal, error) {
	start := time.Now()
	principal, err := t.next.WhoAmI(ctx, rawToken)
	t.record(ctx, "whoami", start, err)
	return principal, err
}

// Refresh records metrics for refresh rotation operations.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	rawRefreshToken string,
	revokeBefore bool,
) (*tokenDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Refresh(ctx, rawRefreshToken, revokeBefore)
	t.record(ctx, "refresh", start, err)
	return pair, err
}

// Revoke records metrics for revocation operations.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, rawToken string) (bool, error) {
	start := time.Now()
	revoked, err := t.next.Revoke(ctx, rawToken)
	t.record(ctx, "revoke", start, err)
	return revoked, err
}

// DeleteExpiredRevocations records metrics for revocation store cleanup.
func (t *tokenUseCaseWithMetrics) DeleteExpiredRevocations(ctx context.Context) (int64, error) {
	start := time.Now()
	deleted, err := t.next.DeleteExpiredRevocations(ctx)
	t.record(ctx, "delete_expired_revocations", start, err)
	return deleted, err
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordOperation(ctx, "token", operation, status)
	t.metrics.RecordDuration(ctx, "token", operation, time.Since(start), status)
}
