package domain

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the verified claim set carried by a token. Tokens themselves are
// ephemeral: only the TokenID ever reaches persistence, as a revocation key.
type Claims struct {
	// SubjectID is the principal (user or application) id.
	SubjectID uuid.UUID `json:"sub"`
	// MembershipID is the tenant whose policy signed this token.
	MembershipID uuid.UUID `json:"membership_id"`
	TokenType    TokenType `json:"token_type"`
	// TokenID is the unique token identifier used as the revocation key.
	TokenID   uuid.UUID `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// GenerateTokenInput carries the credentials presented for token generation.
// The membership is addressed by slug because callers authenticate before any
// id is known to them.
type GenerateTokenInput struct {
	MembershipSlug string
	Username       string
	Password       string
}

// TokenPair is the result of token generation or refresh. Access and refresh
// tokens are always issued together; RefreshToken is empty when the
// membership disables refresh issuance.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// ValidationResult is the structured outcome of token verification.
// Invalidity carries a reason instead of an error; only dependency failures
// (e.g., an unreachable revocation store) surface as errors.
type ValidationResult struct {
	IsValidated bool               `json:"is_validated"`
	Claims      *Claims            `json:"claims,omitempty"`
	Reason      InvalidationReason `json:"reason,omitempty"`
}

// Validated builds a successful validation result.
func Validated(claims *Claims) *ValidationResult {
	return &ValidationResult{IsValidated: true, Claims: claims}
}

// Unvalidated builds a failed validation result with its reason.
func Unvalidated(reason InvalidationReason) *ValidationResult {
	return &ValidationResult{IsValidated: false, Reason: reason}
}

// RevokedToken is the persisted record of an invalidated token id. Records
// are immutable; retention cleanup removes them once ExpiresAt has passed,
// at which point natural expiry makes the record redundant.
type RevokedToken struct {
	// TokenID is the jti of the revoked token.
	TokenID      uuid.UUID
	MembershipID uuid.UUID
	// ExpiresAt is the revoked token's natural expiry, kept for retention.
	ExpiresAt time.Time
	RevokedAt time.Time
}
