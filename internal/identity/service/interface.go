// Package service provides technical services for identity operations:
// password hashing, application secret generation and signing key sealing.
package service

import "context"

// PasswordService defines operations for user password hashing and validation.
// Implementations must use industry-standard hashing (argon2id) while still
// accepting hashes imported from legacy systems.
type PasswordService interface {
	// Hash hashes a plain text password for storage.
	Hash(password string) (hashedPassword string, err error)

	// Verify compares a plain text password against a stored hash.
	// Returns true if the password matches, false otherwise. The comparison
	// is constant-time to prevent timing attacks.
	Verify(password, hash string) bool
}

// SecretService defines operations for application secret generation.
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (shown once to the caller) and the
	// hashed version (stored in the database).
	GenerateSecret() (plainSecret string, hashedSecret string, err error)
}

// KeyKeeper seals and unseals membership signing keys. Keys are kept sealed
// at rest so a database leak alone does not expose token signing material.
type KeyKeeper interface {
	// Seal encrypts plain key material into its storable form.
	Seal(ctx context.Context, plain string) (string, error)

	// Unseal recovers plain key material from its sealed form.
	Unseal(ctx context.Context, sealed string) (string, error)
}
