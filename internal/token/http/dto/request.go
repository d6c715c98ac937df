// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/authware/authority/internal/validation"
)

// GenerateTokenRequest contains the credentials presented for token generation.
type GenerateTokenRequest struct {
	MembershipSlug string `json:"membership_slug"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

// Validate checks if the generate token request is valid.
func (r *GenerateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MembershipSlug,
			validation.Required,
			customValidation.Slug,
		),
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required,
		),
	)
}

// VerifyTokenRequest contains the raw token to verify.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the verify token request is valid.
func (r *VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}

// RefreshTokenRequest contains the refresh token to rotate. RevokeBefore
// controls whether the presented refresh token is revoked as part of the
// rotation; defaults to false for backwards compatible single-use callers.
type RefreshTokenRequest struct {
	Token        string `json:"token"`
	RevokeBefore bool   `json:"revoke_before"`
}

// Validate checks if the refresh token request is valid.
func (r *RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}

// RevokeTokenRequest contains the raw token to revoke.
type RevokeTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the revoke token request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}
