package domain

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Membership is a tenant. It owns the token policy for every principal it
// contains: lifetimes, signing material, algorithm and secret encoding.
//
// Policy fields are read-only from the token engine's point of view. Updating
// a membership's secret key invalidates every token signed with the previous
// key; there is no key-id claim or multi-key lookup.
type Membership struct {
	ID   uuid.UUID
	Name string
	// Slug is the short alias presented by callers at token generation time.
	Slug string
	// ExpiresIn is the access token lifetime in seconds. Must be positive.
	ExpiresIn int64
	// RefreshTokenExpiresIn is the refresh token lifetime in seconds.
	// Zero disables refresh token issuance entirely.
	RefreshTokenExpiresIn int64
	// SecretKey is the signing secret. Sealed at rest when a KMS keeper is
	// configured; the token signer always receives it unsealed.
	SecretKey string
	// HashAlgorithm selects the HMAC variant used for token signatures.
	HashAlgorithm HashAlgorithm
	// DefaultEncoding describes how SecretKey decodes into key bytes.
	DefaultEncoding SecretEncoding
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateMembershipInput contains the parameters for provisioning a tenant.
// An empty SecretKey asks the use case to generate one.
type CreateMembershipInput struct {
	Name                  string
	Slug                  string
	ExpiresIn             int64
	RefreshTokenExpiresIn int64
	SecretKey             string
	HashAlgorithm         HashAlgorithm
	DefaultEncoding       SecretEncoding
}

// CreateMembershipOutput carries the created membership plus, when the input
// omitted a key, the generated plain signing key. The stored copy is sealed;
// the plain key is never retrievable again.
type CreateMembershipOutput struct {
	Membership     *Membership
	PlainSecretKey string
}

// UpdateMembershipInput contains the mutable membership fields. A non-empty
// SecretKey rotates the signing key, invalidating all outstanding tokens.
type UpdateMembershipInput struct {
	Name                  string
	ExpiresIn             int64
	RefreshTokenExpiresIn int64
	SecretKey             string
	HashAlgorithm         HashAlgorithm
	DefaultEncoding       SecretEncoding
}

// Validate checks the token policy invariants.
func (m *Membership) Validate() error {
	if m.ExpiresIn <= 0 {
		return fmt.Errorf("%w: expires_in must be positive, got %d", ErrInvalidTokenPolicy, m.ExpiresIn)
	}
	if m.RefreshTokenExpiresIn < 0 {
		return fmt.Errorf(
			"%w: refresh_token_expires_in must not be negative, got %d",
			ErrInvalidTokenPolicy, m.RefreshTokenExpiresIn,
		)
	}
	if !m.HashAlgorithm.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, m.HashAlgorithm)
	}
	if !m.DefaultEncoding.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, m.DefaultEncoding)
	}
	return nil
}

// AccessTokenTTL returns the access token lifetime as a duration.
func (m *Membership) AccessTokenTTL() time.Duration {
	return time.Duration(m.ExpiresIn) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime as a duration.
func (m *Membership) RefreshTokenTTL() time.Duration {
	return time.Duration(m.RefreshTokenExpiresIn) * time.Second
}

// RefreshEnabled reports whether this membership issues refresh tokens.
func (m *Membership) RefreshEnabled() bool {
	return m.RefreshTokenExpiresIn > 0
}

// SigningKey decodes the (unsealed) secret key into raw key bytes per the
// membership's configured encoding.
func (m *Membership) SigningKey() ([]byte, error) {
	switch m.DefaultEncoding {
	case EncodingUTF8:
		return []byte(m.SecretKey), nil
	case EncodingBase64:
		key, err := base64.StdEncoding.DecodeString(m.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("%w: secret key is not valid base64", ErrUnsupportedEncoding)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, m.DefaultEncoding)
	}
}
