package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/authware/authority/internal/errors"
)

// passwordService implements PasswordService and SecretService using Argon2id,
// with bcrypt accepted on verification for hashes imported from legacy systems.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a password service using Argon2id hashing with
// the Moderate policy.
func NewPasswordService() *passwordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}

// Hash hashes a plain text password using Argon2id. New hashes are always
// Argon2id; bcrypt only ever appears on the verification path.
func (p *passwordService) Hash(password string) (string, error) {
	hashed, err := p.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// Verify performs a constant-time comparison between a plain password and its
// stored hash. Bcrypt-formatted hashes from migrated accounts verify through
// bcrypt; everything else goes through Argon2id.
func (p *passwordService) Verify(password, hash string) bool {
	if isBcryptHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	ok, err := p.hasher.Verify([]byte(password), hash)
	if err != nil {
		return false
	}
	return ok
}

// GenerateSecret creates a new cryptographically secure 32-byte random secret
// for application credentials. The secret is base64-encoded for transmission;
// only the Argon2id hash is meant to be stored.
func (p *passwordService) GenerateSecret() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret := base64.URLEncoding.EncodeToString(randomBytes)
	hashedSecret, err := p.Hash(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// isBcryptHash detects the bcrypt modular crypt prefixes.
func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
