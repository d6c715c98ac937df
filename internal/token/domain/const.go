// Package domain defines the token lifecycle models: claims, token pairs,
// validation results and revocation records.
package domain

// TokenType distinguishes the two credentials issued as a pair.
type TokenType string

const (
	// AccessToken is the short-lived credential authorizing API calls.
	AccessToken TokenType = "access"

	// RefreshToken is the longer-lived credential whose sole purpose is
	// minting a new access/refresh pair.
	RefreshToken TokenType = "refresh"
)

// IsValid reports whether the token type is known.
func (t TokenType) IsValid() bool {
	return t == AccessToken || t == RefreshToken
}

// InvalidationReason explains why a token failed verification. Invalid tokens
// are a normal, reportable outcome of verification, not an error.
type InvalidationReason string

const (
	// ReasonMalformed means the token could not be decoded at all.
	ReasonMalformed InvalidationReason = "malformed"

	// ReasonSignatureMismatch means the signature did not verify against the
	// membership's signing material.
	ReasonSignatureMismatch InvalidationReason = "signature_mismatch"

	// ReasonExpired means the token's expiry has passed.
	ReasonExpired InvalidationReason = "expired"

	// ReasonRevoked means the token id is present in the revocation store.
	ReasonRevoked InvalidationReason = "revoked"

	// ReasonWrongTokenType means the token is valid but of the wrong type for
	// the requested operation (e.g., an access token presented as a refresh token).
	ReasonWrongTokenType InvalidationReason = "wrong_token_type"

	// ReasonMembershipNotFound means the membership referenced by the claims
	// does not exist, so no signing material could be resolved.
	ReasonMembershipNotFound InvalidationReason = "membership_not_found"
)
