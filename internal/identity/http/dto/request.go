// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	identityDomain "github.com/authware/authority/internal/identity/domain"
	customValidation "github.com/authware/authority/internal/validation"
)

// CreateMembershipRequest contains the parameters for provisioning a tenant.
// SecretKey is optional; when omitted a signing key is generated server-side.
type CreateMembershipRequest struct {
	Name                  string `json:"name"`
	Slug                  string `json:"slug"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	SecretKey             string `json:"secret_key"`
	HashAlgorithm         string `json:"hash_algorithm"`
	DefaultEncoding       string `json:"default_encoding"`
}

// Validate checks if the create membership request is valid.
func (r *CreateMembershipRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Slug,
			validation.Required,
			customValidation.Slug,
			validation.Length(1, 64),
		),
		validation.Field(&r.ExpiresIn,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&r.RefreshTokenExpiresIn,
			validation.Min(0),
		),
	)
}

// ToInput converts the request to a domain input, applying defaults for the
// optional policy fields.
func (r *CreateMembershipRequest) ToInput() *identityDomain.CreateMembershipInput {
	hashAlgorithm := identityDomain.HashAlgorithm(r.HashAlgorithm)
	if r.HashAlgorithm == "" {
		hashAlgorithm = identityDomain.HS256
	}
	defaultEncoding := identityDomain.SecretEncoding(r.DefaultEncoding)
	if r.DefaultEncoding == "" {
		defaultEncoding = identityDomain.EncodingUTF8
	}

	return &identityDomain.CreateMembershipInput{
		Name:                  r.Name,
		Slug:                  r.Slug,
		ExpiresIn:             r.ExpiresIn,
		RefreshTokenExpiresIn: r.RefreshTokenExpiresIn,
		SecretKey:             r.SecretKey,
		HashAlgorithm:         hashAlgorithm,
		DefaultEncoding:       defaultEncoding,
	}
}

// UpdateMembershipRequest contains the mutable membership fields.
type UpdateMembershipRequest struct {
	Name                  string `json:"name"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	SecretKey             string `json:"secret_key"`
	HashAlgorithm         string `json:"hash_algorithm"`
	DefaultEncoding       string `json:"default_encoding"`
}

// Validate checks if the update membership request is valid.
func (r *UpdateMembershipRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ExpiresIn, validation.Min(0)),
		validation.Field(&r.RefreshTokenExpiresIn, validation.Min(0)),
	)
}

// ToInput converts the request to a domain input.
func (r *UpdateMembershipRequest) ToInput() *identityDomain.UpdateMembershipInput {
	return &identityDomain.UpdateMembershipInput{
		Name:                  r.Name,
		ExpiresIn:             r.ExpiresIn,
		RefreshTokenExpiresIn: r.RefreshTokenExpiresIn,
		SecretKey:             r.SecretKey,
		HashAlgorithm:         identityDomain.HashAlgorithm(r.HashAlgorithm),
		DefaultEncoding:       identityDomain.SecretEncoding(r.DefaultEncoding),
	}
}

// CreateUserRequest contains the parameters for provisioning a user.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

// Validate checks if the create user request is valid.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(&r.Role,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// UpdateUserRequest contains the mutable user fields. An empty password keeps
// the stored credential.
type UpdateUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

// Validate checks if the update user request is valid.
func (r *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password,
			validation.Length(8, 128),
		),
	)
}

// CreateApplicationRequest contains the parameters for registering an
// application. The secret is generated server-side and returned once.
type CreateApplicationRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Validate checks if the create application request is valid.
func (r *CreateApplicationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Role,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// CreateRoleRequest contains the parameters for creating a role.
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Forbidden   []string `json:"forbidden"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 64),
		),
		validation.Field(&r.Permissions,
			validation.Required,
			customValidation.Permissions,
		),
		validation.Field(&r.Forbidden,
			customValidation.Permissions,
		),
	)
}

// UpdateRoleRequest contains the mutable role fields. The name is immutable.
type UpdateRoleRequest struct {
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Forbidden   []string `json:"forbidden"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permissions,
			validation.Required,
			customValidation.Permissions,
		),
		validation.Field(&r.Forbidden,
			customValidation.Permissions,
		),
	)
}
