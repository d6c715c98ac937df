// Package domain defines the identity domain models: memberships (tenants),
// users, applications and roles.
package domain

// HashAlgorithm identifies the signature algorithm a membership uses for its
// tokens. Values map directly onto JWT HMAC signing methods.
type HashAlgorithm string

const (
	// HS256 signs tokens with HMAC-SHA256.
	HS256 HashAlgorithm = "HS256"

	// HS384 signs tokens with HMAC-SHA384.
	HS384 HashAlgorithm = "HS384"

	// HS512 signs tokens with HMAC-SHA512.
	HS512 HashAlgorithm = "HS512"
)

// IsValid reports whether the algorithm is one of the supported HMAC variants.
func (a HashAlgorithm) IsValid() bool {
	switch a {
	case HS256, HS384, HS512:
		return true
	default:
		return false
	}
}

// SecretEncoding describes how a membership's secret key text is decoded
// into signing key bytes.
type SecretEncoding string

const (
	// EncodingUTF8 uses the secret key text bytes directly.
	EncodingUTF8 SecretEncoding = "utf8"

	// EncodingBase64 decodes the secret key text as standard base64.
	EncodingBase64 SecretEncoding = "base64"
)

// IsValid reports whether the encoding is supported.
func (e SecretEncoding) IsValid() bool {
	switch e {
	case EncodingUTF8, EncodingBase64:
		return true
	default:
		return false
	}
}

// PrincipalKind distinguishes the two token subject variants.
type PrincipalKind string

const (
	// PrincipalUser is a human identity authenticating with username/password.
	PrincipalUser PrincipalKind = "user"

	// PrincipalApplication is a machine identity authenticating with id/secret.
	PrincipalApplication PrincipalKind = "application"
)
