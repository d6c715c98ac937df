package domain

import (
	"github.com/authware/authority/internal/errors"
)

// Token lifecycle errors.
var (
	// ErrMalformedToken indicates the token string could not be decoded.
	ErrMalformedToken = errors.Wrap(errors.ErrInvalidInput, "malformed token")

	// ErrUnsupportedTokenType indicates an unknown token type was requested.
	ErrUnsupportedTokenType = errors.Wrap(errors.ErrInvalidInput, "unsupported token type")

	// ErrSignatureMismatch indicates the token signature did not verify.
	ErrSignatureMismatch = errors.Wrap(errors.ErrUnauthorized, "token signature mismatch")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenRevoked indicates the token id is present in the revocation store.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrInvalidRefreshToken indicates the presented refresh token failed
	// verification or is not a refresh token at all.
	ErrInvalidRefreshToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired refresh token")

	// ErrRevocationStoreUnavailable indicates the revocation store could not
	// be reached. Verification fails closed on this error instead of treating
	// the token as not revoked.
	ErrRevocationStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "revocation store unavailable")
)
