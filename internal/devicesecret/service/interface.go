// Package service provides the cryptographic services of the device secret: the
// AES-256-GCM cipher, the envelope engine that wraps and unwraps the 48-byte
// application secret, and the trust anchors that hold the non-exportable master key.
package service

import (
	"context"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// TrustAnchor holds non-exportable master keys and performs AES-256-GCM with them.
//
// Implementations never return key material. Error contract:
//   - deviceDomain.ErrKeystoreUnavailable when the backing keystore cannot be reached
//   - deviceDomain.ErrKeyNotFound when the alias does not exist
//   - deviceDomain.ErrUnwrapFailed when Decrypt fails authentication
//   - deviceDomain.ErrEntropyUnavailable when the random source fails
//
// Available implementations:
//   - SoftwareTrustAnchor: in-memory keys, for tests and development
//   - KeeperTrustAnchor: master key sealed by a gocloud.dev secrets keeper (cloud KMS, Vault)
//   - VaultTransitTrustAnchor: master key inside a Vault transit engine, never leaves Vault
type TrustAnchor interface {
	// HasKey reports whether a master key exists under alias.
	HasKey(ctx context.Context, alias string) (bool, error)

	// CreateKey creates a master key under alias. Creating an existing alias is a no-op.
	CreateKey(ctx context.Context, alias string, spec deviceDomain.KeySpec) error

	// Encrypt seals plaintext under alias with a fresh random nonce.
	// The returned ciphertext has the 16-byte tag appended.
	Encrypt(ctx context.Context, alias string, plaintext []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext under alias. The tag is verified before any plaintext is returned.
	Decrypt(ctx context.Context, alias string, ciphertext, nonce []byte) ([]byte, error)
}

// Envelope is the envelope crypto engine: it generates the application secret and
// wraps/unwraps it with the master key held by a trust anchor.
type Envelope interface {
	// GenerateSecret returns 48 bytes from a cryptographically secure random source.
	GenerateSecret() (deviceDomain.Secret, error)

	// Wrap encrypts secret under the master key alias with a fresh nonce.
	Wrap(ctx context.Context, alias string, secret deviceDomain.Secret) (*deviceDomain.WrappedRecord, error)

	// Unwrap authenticates and decrypts record under the master key alias.
	Unwrap(ctx context.Context, alias string, record *deviceDomain.WrappedRecord) (deviceDomain.Secret, error)
}

// SealedKeyStore persists sealed master keys for trust anchors that keep them outside
// the keystore. Every key-value store in the repository package satisfies it.
type SealedKeyStore interface {
	// Get returns the value for namespace/key or deviceDomain.ErrKeyNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Put stores value under namespace/key, replacing any previous value.
	Put(ctx context.Context, namespace, key string, value []byte) error
}
