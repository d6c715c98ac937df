// Package service implements the token codec: construction, signing and
// verification of the wire representation, independent of transport.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
)

// Codec builds and parses the signed token representation. Implementations
// are pure over their inputs and safe for concurrent use.
type Codec interface {
	// Issue builds and signs a token of the given type for the subject under
	// the membership's policy. Returns the encoded token and its expiry.
	// Fails with ErrUnsupportedAlgorithm when the membership's configured
	// algorithm is not implemented.
	Issue(
		subjectID uuid.UUID,
		membership *identityDomain.Membership,
		tokenType tokenDomain.TokenType,
		now time.Time,
	) (string, time.Time, error)

	// Decode structurally parses a token without checking its signature.
	// Fails with ErrMalformedToken. Claims returned by Decode are untrusted.
	Decode(raw string) (*tokenDomain.Claims, error)

	// Verify parses the token, verifies its signature against the given
	// membership's signing material and checks expiry, in that order. The
	// membership must be resolved independently by the caller before any
	// claim value is trusted. Fails with ErrMalformedToken,
	// ErrSignatureMismatch or ErrTokenExpired.
	Verify(raw string, membership *identityDomain.Membership, now time.Time) (*tokenDomain.Claims, error)
}

// jwtClaims is the wire-level claim set. Membership and token type travel as
// private claims next to the registered ones.
type jwtClaims struct {
	MembershipID string `json:"membership_id"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

// jwtCodec implements Codec on top of github.com/golang-jwt/jwt/v5 using the
// membership's HMAC variant.
type jwtCodec struct{}

// NewJWTCodec creates the JWT-based token codec.
func NewJWTCodec() Codec {
	return &jwtCodec{}
}

// signingMethod maps the membership's hash algorithm onto a JWT signing method.
func signingMethod(alg identityDomain.HashAlgorithm) (jwt.SigningMethod, error) {
	switch alg {
	case identityDomain.HS256:
		return jwt.SigningMethodHS256, nil
	case identityDomain.HS384:
		return jwt.SigningMethodHS384, nil
	case identityDomain.HS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", identityDomain.ErrUnsupportedAlgorithm, alg)
	}
}

func (c *jwtCodec) Issue(
	subjectID uuid.UUID,
	membership *identityDomain.Membership,
	tokenType tokenDomain.TokenType,
	now time.Time,
) (string, time.Time, error) {
	if !tokenType.IsValid() {
		return "", time.Time{}, fmt.Errorf("%w: %q", tokenDomain.ErrUnsupportedTokenType, tokenType)
	}

	method, err := signingMethod(membership.HashAlgorithm)
	if err != nil {
		return "", time.Time{}, err
	}
	key, err := membership.SigningKey()
	if err != nil {
		return "", time.Time{}, err
	}

	ttl := membership.AccessTokenTTL()
	if tokenType == tokenDomain.RefreshToken {
		ttl = membership.RefreshTokenTTL()
	}
	expiresAt := now.Add(ttl)

	claims := jwtClaims{
		MembershipID: membership.ID.String(),
		TokenType:    string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			ID:        uuid.Must(uuid.NewV7()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (c *jwtCodec) Decode(raw string) (*tokenDomain.Claims, error) {
	var claims jwtClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %s", tokenDomain.ErrMalformedToken, err)
	}
	return toDomainClaims(&claims)
}

func (c *jwtCodec) Verify(
	raw string,
	membership *identityDomain.Membership,
	now time.Time,
) (*tokenDomain.Claims, error) {
	method, err := signingMethod(membership.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	key, err := membership.SigningKey()
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	var claims jwtClaims
	_, err = parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, tokenDomain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, tokenDomain.ErrSignatureMismatch
		default:
			return nil, fmt.Errorf("%w: %s", tokenDomain.ErrMalformedToken, err)
		}
	}

	return toDomainClaims(&claims)
}

// toDomainClaims validates the wire claim set structurally and converts it.
func toDomainClaims(claims *jwtClaims) (*tokenDomain.Claims, error) {
	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject claim", tokenDomain.ErrMalformedToken)
	}
	membershipID, err := uuid.Parse(claims.MembershipID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid membership claim", tokenDomain.ErrMalformedToken)
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token id claim", tokenDomain.ErrMalformedToken)
	}
	tokenType := tokenDomain.TokenType(claims.TokenType)
	if !tokenType.IsValid() {
		return nil, fmt.Errorf("%w: invalid token type claim", tokenDomain.ErrMalformedToken)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing timestamps", tokenDomain.ErrMalformedToken)
	}

	return &tokenDomain.Claims{
		SubjectID:    subjectID,
		MembershipID: membershipID,
		TokenType:    tokenType,
		TokenID:      tokenID,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
