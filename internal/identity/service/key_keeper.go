package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register KMS provider drivers for key sealing
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsKeyKeeper implements KeyKeeper on top of a gocloud.dev secrets keeper.
// Sealed values are base64-encoded KMS ciphertexts.
type kmsKeyKeeper struct {
	keeper *secrets.Keeper
}

// NewKMSKeyKeeper opens a keeper for the configured KMS provider URI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewKMSKeyKeeper(ctx context.Context, keyURI string) (*kmsKeyKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return &kmsKeyKeeper{keeper: keeper}, nil
}

// Seal encrypts the plain key material through the KMS keeper.
func (k *kmsKeyKeeper) Seal(ctx context.Context, plain string) (string, error) {
	ciphertext, err := k.keeper.Encrypt(ctx, []byte(plain))
	if err != nil {
		return "", fmt.Errorf("failed to seal key material: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unseal decrypts the sealed key material through the KMS keeper.
func (k *kmsKeyKeeper) Unseal(ctx context.Context, sealed string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed key material: %w", err)
	}
	plain, err := k.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to unseal key material: %w", err)
	}
	return string(plain), nil
}

// Close releases the underlying keeper. Call during application shutdown.
func (k *kmsKeyKeeper) Close() error {
	return k.keeper.Close()
}

// plainKeyKeeper is the pass-through KeyKeeper used when no KMS key URI is
// configured: keys are stored as-is.
type plainKeyKeeper struct{}

// NewPlainKeyKeeper creates the pass-through key keeper.
func NewPlainKeyKeeper() KeyKeeper {
	return plainKeyKeeper{}
}

// Seal returns the key material unchanged.
func (plainKeyKeeper) Seal(ctx context.Context, plain string) (string, error) {
	return plain, nil
}

// Unseal returns the key material unchanged.
func (plainKeyKeeper) Unseal(ctx context.Context, sealed string) (string, error) {
	return sealed, nil
}
