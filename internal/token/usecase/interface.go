// Package usecase defines business logic interfaces for the token lifecycle:
// generation, verification, refresh rotation and revocation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	eventDomain "github.com/authware/authority/internal/event/domain"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
)

// MembershipRepository is the read surface the token lifecycle needs from
// membership persistence. Memberships referenced by token claims are always
// resolved by id, never trusted from the token itself.
type MembershipRepository interface {
	// Get retrieves a membership by id. Returns ErrMembershipNotFound if not found.
	Get(ctx context.Context, membershipID uuid.UUID) (*identityDomain.Membership, error)

	// GetBySlug retrieves a membership by slug. Returns ErrMembershipNotFound if not found.
	GetBySlug(ctx context.Context, slug string) (*identityDomain.Membership, error)
}

// UserRepository is the read surface the token lifecycle needs from user
// persistence. Lookups are always membership-scoped.
type UserRepository interface {
	// Get retrieves a user by id within a membership. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, membershipID, userID uuid.UUID) (*identityDomain.User, error)

	// GetByUsername retrieves a user by username within a membership.
	// Returns ErrUserNotFound if not found.
	GetByUsername(ctx context.Context, membershipID uuid.UUID, username string) (*identityDomain.User, error)
}

// ApplicationRepository is the read surface the token lifecycle needs from
// application persistence.
type ApplicationRepository interface {
	// Get retrieves an application by id within a membership.
	// Returns ErrApplicationNotFound if not found.
	Get(ctx context.Context, membershipID, applicationID uuid.UUID) (*identityDomain.Application, error)
}

// RevokedTokenRepository defines persistence for the revocation store.
// Implementations must support transaction-aware operations via context propagation.
type RevokedTokenRepository interface {
	// Revoke inserts a revocation record. inserted reports whether this call
	// created the record; a duplicate token id is not an error. The insert is
	// the serialization point for concurrent refresh rotation.
	Revoke(ctx context.Context, revoked *tokenDomain.RevokedToken) (inserted bool, err error)

	// IsRevoked reports whether the token id is present in the store.
	IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error)

	// DeleteExpired removes records whose token expiry passed before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PasswordVerifier checks a plain password against a stored hash.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// KeyKeeper unseals membership signing keys that are stored sealed at rest.
type KeyKeeper interface {
	// Unseal recovers the plain signing key material from its sealed form.
	Unseal(ctx context.Context, sealed string) (string, error)
}

// EventEmitter records audit events. Emission is fire-and-forget: failures
// are logged by the implementation and never fail the calling operation.
type EventEmitter interface {
	Emit(ctx context.Context, event *eventDomain.Event)
}

// TokenUseCase defines the token lifecycle operations.
type TokenUseCase interface {
	// Generate authenticates a user against a membership and issues a fresh
	// access/refresh token pair under the membership's token policy.
	//
	// Returns ErrInvalidCredentials for an unknown membership slug, an unknown
	// username or a wrong password, so callers cannot enumerate accounts.
	// Returns ErrUserInactive when the credentials match a deactivated user.
	Generate(ctx context.Context, input *tokenDomain.GenerateTokenInput) (*tokenDomain.TokenPair, error)

	// Verify checks an access token and reports the outcome as a validation
	// result. An invalid token is a normal outcome, not an error: the result
	// carries the reason. An error is returned only when a dependency failed,
	// in particular ErrRevocationStoreUnavailable when revocation state could
	// not be checked; verification fails closed in that case.
	Verify(ctx context.Context, rawToken string) (*tokenDomain.ValidationResult, error)

	// WhoAmI verifies an access token and resolves the principal behind it.
	// Returns an ErrUnauthorized-wrapping error when the token does not
	// verify or its subject no longer exists.
	WhoAmI(ctx context.Context, rawToken string) (*identityDomain.Principal, error)

	// Refresh exchanges a verified refresh token for a new token pair. With
	// revokeBefore the presented refresh token is revoked first, making
	// rotation single-use: of two concurrent calls with the same token,
	// exactly one succeeds and the other fails with ErrTokenRevoked.
	Refresh(ctx context.Context, rawRefreshToken string, revokeBefore bool) (*tokenDomain.TokenPair, error)

	// Revoke invalidates a token by recording its id in the revocation store.
	// Returns true whenever the token was parseable, including when it was
	// already revoked; revocation is idempotent. Returns false with a nil
	// error for tokens that cannot be decoded at all.
	Revoke(ctx context.Context, rawToken string) (bool, error)

	// DeleteExpiredRevocations removes revocation records whose tokens have
	// been expired for longer than the configured retention.
	DeleteExpiredRevocations(ctx context.Context) (int64, error)
}
