// Package usecase implements business logic orchestration for the token lifecycle.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authware/authority/internal/config"
	eventDomain "github.com/authware/authority/internal/event/domain"
	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
	tokenService "github.com/authware/authority/internal/token/service"
)

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	config           *config.Config
	membershipRepo   MembershipRepository
	userRepo         UserRepository
	applicationRepo  ApplicationRepository
	revokedTokenRepo RevokedTokenRepository
	codec            tokenService.Codec
	passwordVerifier PasswordVerifier
	keyKeeper        KeyKeeper
	events           EventEmitter
	now              func() time.Time
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	membershipRepo MembershipRepository,
	userRepo UserRepository,
	applicationRepo ApplicationRepository,
	revokedTokenRepo RevokedTokenRepository,
	codec tokenService.Codec,
	passwordVerifier PasswordVerifier,
	keyKeeper KeyKeeper,
	events EventEmitter,
) TokenUseCase {
	return &tokenUseCase{
		config:           config,
		membershipRepo:   membershipRepo,
		userRepo:         userRepo,
		applicationRepo:  applicationRepo,
		revokedTokenRepo: revokedTokenRepo,
		codec:            codec,
		passwordVerifier: passwordVerifier,
		keyKeeper:        keyKeeper,
		events:           events,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Generate authenticates a user and issues a fresh token pair.
//
// This method:
// 1. Resolves the membership by slug and validates its token policy
// 2. Resolves the user by username within the membership
// 3. Verifies the password against the stored hash
// 4. Issues an access token, plus a refresh token when the policy enables it
// 5. Emits a token_generated audit event (fire-and-forget)
//
// Unknown slugs, unknown usernames and wrong passwords all collapse into
// ErrInvalidCredentials to prevent account enumeration.
func (t *tokenUseCase) Generate(
	ctx context.Context,
	input *tokenDomain.GenerateTokenInput,
) (*tokenDomain.TokenPair, error) {
	membership, err := t.membershipRepo.GetBySlug(ctx, input.MembershipSlug)
	if err != nil {
		if errors.Is(err, identityDomain.ErrMembershipNotFound) {
			return nil, identityDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := membership.Validate(); err != nil {
		return nil, err
	}

	user, err := t.userRepo.GetByUsername(ctx, membership.ID, input.Username)
	if err != nil {
		if errors.Is(err, identityDomain.ErrUserNotFound) {
			return nil, identityDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !t.passwordVerifier.Verify(input.Password, user.PasswordHash) {
		return nil, identityDomain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, identityDomain.ErrUserInactive
	}

	unsealed, err := t.unsealMembership(ctx, membership)
	if err != nil {
		return nil, err
	}

	pair, err := t.issuePair(user.ID, unsealed)
	if err != nil {
		return nil, err
	}

	t.emitTokenEvent(ctx, eventDomain.EventTokenGenerated, membership.ID, user.ID, pair)
	return pair, nil
}

// Verify checks an access token. See TokenUseCase.Verify for the contract.
func (t *tokenUseCase) Verify(ctx context.Context, rawToken string) (*tokenDomain.ValidationResult, error) {
	result, _, err := t.verify(ctx, rawToken, tokenDomain.AccessToken)
	return result, err
}

// WhoAmI verifies an access token and resolves its principal.
func (t *tokenUseCase) WhoAmI(ctx context.Context, rawToken string) (*identityDomain.Principal, error) {
	result, _, err := t.verify(ctx, rawToken, tokenDomain.AccessToken)
	if err != nil {
		return nil, err
	}
	if !result.IsValidated {
		return nil, fmt.Errorf("token not validated (%s): %w", result.Reason, identityDomain.ErrInvalidCredentials)
	}
	return t.resolvePrincipal(ctx, result.Claims)
}

// Refresh exchanges a refresh token for a new pair.
//
// With revokeBefore the presented token's id is inserted into the revocation
// store before the new pair is issued. The insert reports whether this call
// created the record, so of two concurrent rotations of the same token only
// the first writer proceeds; the loser fails with ErrTokenRevoked and no
// second pair is ever minted from the same refresh token.
func (t *tokenUseCase) Refresh(
	ctx context.Context,
	rawRefreshToken string,
	revokeBefore bool,
) (*tokenDomain.TokenPair, error) {
	result, membership, err := t.verify(ctx, rawRefreshToken, tokenDomain.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !result.IsValidated {
		switch result.Reason {
		case tokenDomain.ReasonExpired:
			return nil, tokenDomain.ErrTokenExpired
		case tokenDomain.ReasonRevoked:
			return nil, tokenDomain.ErrTokenRevoked
		default:
			return nil, fmt.Errorf("%w (%s)", tokenDomain.ErrInvalidRefreshToken, result.Reason)
		}
	}
	claims := result.Claims

	principal, err := t.resolvePrincipal(ctx, claims)
	if err != nil {
		return nil, err
	}

	if revokeBefore {
		inserted, err := t.revokedTokenRepo.Revoke(ctx, &tokenDomain.RevokedToken{
			TokenID:      claims.TokenID,
			MembershipID: claims.MembershipID,
			ExpiresAt:    claims.ExpiresAt,
			RevokedAt:    t.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tokenDomain.ErrRevocationStoreUnavailable, err)
		}
		if !inserted {
			// Lost the rotation race: another call already consumed this token.
			return nil, tokenDomain.ErrTokenRevoked
		}
	}

	pair, err := t.issuePair(principal.ID, membership)
	if err != nil {
		return nil, err
	}

	t.emitTokenEvent(ctx, eventDomain.EventTokenRefreshed, claims.MembershipID, principal.ID, pair)
	return pair, nil
}

// Revoke invalidates a token by recording its id. Revocation is idempotent:
// re-revoking an already revoked token still reports success, and only the
// first revocation emits an audit event.
func (t *tokenUseCase) Revoke(ctx context.Context, rawToken string) (bool, error) {
	claims, err := t.codec.Decode(rawToken)
	if err != nil {
		// Nothing addressable to revoke.
		return false, nil
	}

	inserted, err := t.revokedTokenRepo.Revoke(ctx, &tokenDomain.RevokedToken{
		TokenID:      claims.TokenID,
		MembershipID: claims.MembershipID,
		ExpiresAt:    claims.ExpiresAt,
		RevokedAt:    t.now(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", tokenDomain.ErrRevocationStoreUnavailable, err)
	}

	if inserted {
		t.emitTokenEvent(ctx, eventDomain.EventTokenRevoked, claims.MembershipID, claims.SubjectID, nil)
	}
	return true, nil
}

// DeleteExpiredRevocations prunes revocation records past the retention window.
func (t *tokenUseCase) DeleteExpiredRevocations(ctx context.Context) (int64, error) {
	before := t.now().Add(-t.config.RevokedTokenRetention)
	return t.revokedTokenRepo.DeleteExpired(ctx, before)
}

// verify runs the full verification pipeline for the expected token type and
// also returns the resolved membership (with its signing key unsealed) so
// callers can mint follow-up tokens without a second lookup.
func (t *tokenUseCase) verify(
	ctx context.Context,
	rawToken string,
	want tokenDomain.TokenType,
) (*tokenDomain.ValidationResult, *identityDomain.Membership, error) {
	untrusted, err := t.codec.Decode(rawToken)
	if err != nil {
		return tokenDomain.Unvalidated(tokenDomain.ReasonMalformed), nil, nil
	}

	// The membership is resolved independently from storage; nothing from the
	// token is trusted until the signature verifies against its key.
	membership, err := t.membershipRepo.Get(ctx, untrusted.MembershipID)
	if err != nil {
		if errors.Is(err, identityDomain.ErrMembershipNotFound) {
			return tokenDomain.Unvalidated(tokenDomain.ReasonMembershipNotFound), nil, nil
		}
		return nil, nil, err
	}

	unsealed, err := t.unsealMembership(ctx, membership)
	if err != nil {
		return nil, nil, err
	}

	claims, err := t.codec.Verify(rawToken, unsealed, t.now())
	if err != nil {
		switch {
		case errors.Is(err, tokenDomain.ErrTokenExpired):
			return tokenDomain.Unvalidated(tokenDomain.ReasonExpired), nil, nil
		case errors.Is(err, tokenDomain.ErrSignatureMismatch):
			return tokenDomain.Unvalidated(tokenDomain.ReasonSignatureMismatch), nil, nil
		default:
			return tokenDomain.Unvalidated(tokenDomain.ReasonMalformed), nil, nil
		}
	}

	if claims.TokenType != want {
		return tokenDomain.Unvalidated(tokenDomain.ReasonWrongTokenType), nil, nil
	}

	revoked, err := t.revokedTokenRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		// Fail closed: an unreachable revocation store never lets a token through.
		return nil, nil, fmt.Errorf("%w: %v", tokenDomain.ErrRevocationStoreUnavailable, err)
	}
	if revoked {
		return tokenDomain.Unvalidated(tokenDomain.ReasonRevoked), nil, nil
	}

	return tokenDomain.Validated(claims), unsealed, nil
}

// resolvePrincipal loads the subject behind verified claims, trying users
// first and applications second.
func (t *tokenUseCase) resolvePrincipal(
	ctx context.Context,
	claims *tokenDomain.Claims,
) (*identityDomain.Principal, error) {
	user, err := t.userRepo.Get(ctx, claims.MembershipID, claims.SubjectID)
	if err == nil {
		if !user.IsActive {
			return nil, identityDomain.ErrUserInactive
		}
		return identityDomain.UserPrincipal(user), nil
	}
	if !errors.Is(err, identityDomain.ErrUserNotFound) {
		return nil, err
	}

	application, err := t.applicationRepo.Get(ctx, claims.MembershipID, claims.SubjectID)
	if err != nil {
		if errors.Is(err, identityDomain.ErrApplicationNotFound) {
			return nil, fmt.Errorf("token subject no longer exists: %w", identityDomain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !application.IsActive {
		return nil, identityDomain.ErrApplicationInactive
	}
	return identityDomain.ApplicationPrincipal(application), nil
}

// issuePair mints an access token and, when the membership's policy enables
// refresh, a refresh token. The membership's signing key must already be unsealed.
func (t *tokenUseCase) issuePair(
	subjectID uuid.UUID,
	membership *identityDomain.Membership,
) (*tokenDomain.TokenPair, error) {
	now := t.now()

	accessToken, accessExpiresAt, err := t.codec.Issue(subjectID, membership, tokenDomain.AccessToken, now)
	if err != nil {
		return nil, err
	}

	pair := &tokenDomain.TokenPair{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExpiresAt,
	}

	if membership.RefreshEnabled() {
		refreshToken, refreshExpiresAt, err := t.codec.Issue(subjectID, membership, tokenDomain.RefreshToken, now)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = refreshToken
		pair.RefreshExpiresAt = refreshExpiresAt
	}

	return pair, nil
}

// unsealMembership returns a copy of the membership with its signing key
// recovered from the sealed form kept at rest.
func (t *tokenUseCase) unsealMembership(
	ctx context.Context,
	membership *identityDomain.Membership,
) (*identityDomain.Membership, error) {
	plain, err := t.keyKeeper.Unseal(ctx, membership.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("unseal membership signing key: %w", err)
	}
	unsealed := *membership
	unsealed.SecretKey = plain
	return &unsealed, nil
}

// tokenEventDocument is the audit payload for token lifecycle events. Raw
// token material never reaches the event store.
type tokenEventDocument struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// emitTokenEvent records a token lifecycle audit event. Emission never fails
// the calling operation.
func (t *tokenUseCase) emitTokenEvent(
	ctx context.Context,
	eventType eventDomain.EventType,
	membershipID, utilizerID uuid.UUID,
	pair *tokenDomain.TokenPair,
) {
	var document json.RawMessage
	if pair != nil {
		document, _ = json.Marshal(tokenEventDocument{
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshExpiresAt: pair.RefreshExpiresAt,
		})
	}

	t.events.Emit(ctx, &eventDomain.Event{
		ID:           uuid.Must(uuid.NewV7()),
		EventType:    eventType,
		MembershipID: membershipID,
		UtilizerID:   utilizerID,
		Document:     document,
		EventTime:    t.now(),
	})
}
