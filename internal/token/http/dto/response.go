package dto

import (
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	tokenDomain "github.com/authware/authority/internal/token/domain"
)

// TokenPairResponse carries issued tokens back to the caller. RefreshToken is
// omitted when the membership disables refresh issuance.
type TokenPairResponse struct {
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	TokenType        string     `json:"token_type"`
	AccessExpiresAt  time.Time  `json:"access_expires_at"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
}

// NewTokenPairResponse builds a TokenPairResponse from a domain token pair.
func NewTokenPairResponse(pair *tokenDomain.TokenPair) TokenPairResponse {
	response := TokenPairResponse{
		AccessToken:     pair.AccessToken,
		TokenType:       "bearer",
		AccessExpiresAt: pair.AccessExpiresAt,
	}
	if pair.RefreshToken != "" {
		response.RefreshToken = pair.RefreshToken
		response.RefreshExpiresAt = &pair.RefreshExpiresAt
	}
	return response
}

// ClaimsResponse is the claim set exposed on successful verification.
type ClaimsResponse struct {
	SubjectID    uuid.UUID `json:"sub"`
	MembershipID uuid.UUID `json:"membership_id"`
	TokenType    string    `json:"token_type"`
	TokenID      uuid.UUID `json:"jti"`
	IssuedAt     time.Time `json:"iat"`
	ExpiresAt    time.Time `json:"exp"`
}

// VerifyTokenResponse is the structured verification outcome. An invalid token
// is a 200 response with IsValidated false and a reason, not an error.
type VerifyTokenResponse struct {
	IsValidated bool            `json:"is_validated"`
	Reason      string          `json:"reason,omitempty"`
	Claims      *ClaimsResponse `json:"claims,omitempty"`
}

// NewVerifyTokenResponse builds a VerifyTokenResponse from a validation result.
func NewVerifyTokenResponse(result *tokenDomain.ValidationResult) VerifyTokenResponse {
	response := VerifyTokenResponse{
		IsValidated: result.IsValidated,
		Reason:      string(result.Reason),
	}
	if result.Claims != nil {
		response.Claims = &ClaimsResponse{
			SubjectID:    result.Claims.SubjectID,
			MembershipID: result.Claims.MembershipID,
			TokenType:    string(result.Claims.TokenType),
			TokenID:      result.Claims.TokenID,
			IssuedAt:     result.Claims.IssuedAt,
			ExpiresAt:    result.Claims.ExpiresAt,
		}
	}
	return response
}

// RevokeTokenResponse reports whether a revocation record was written.
type RevokeTokenResponse struct {
	Revoked bool `json:"revoked"`
}

// PrincipalResponse describes the authenticated token subject.
type PrincipalResponse struct {
	Kind         string               `json:"kind"`
	ID           uuid.UUID            `json:"id"`
	MembershipID uuid.UUID            `json:"membership_id"`
	Role         string               `json:"role"`
	User         *UserResponse        `json:"user,omitempty"`
	Application  *ApplicationResponse `json:"application,omitempty"`
}

// UserResponse is the user payload of a principal. Credential hashes are
// never exposed.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	IsActive  bool      `json:"is_active"`
}

// ApplicationResponse is the application payload of a principal.
type ApplicationResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}

// NewPrincipalResponse builds a PrincipalResponse from a domain principal.
func NewPrincipalResponse(principal *identityDomain.Principal) PrincipalResponse {
	response := PrincipalResponse{
		Kind:         string(principal.Kind),
		ID:           principal.ID,
		MembershipID: principal.MembershipID,
		Role:         principal.Role,
	}
	if principal.User != nil {
		response.User = &UserResponse{
			ID:        principal.User.ID,
			Username:  principal.User.Username,
			Email:     principal.User.Email,
			FirstName: principal.User.FirstName,
			LastName:  principal.User.LastName,
			IsActive:  principal.User.IsActive,
		}
	}
	if principal.Application != nil {
		response.Application = &ApplicationResponse{
			ID:       principal.Application.ID,
			Name:     principal.Application.Name,
			IsActive: principal.Application.IsActive,
		}
	}
	return response
}
