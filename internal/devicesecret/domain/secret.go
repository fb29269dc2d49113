// Package domain defines the device secret model used by envelope encryption.
//
// A device installation owns exactly one master key (KEK), held by a trust anchor and
// never exported, and exactly one application secret (DEK) of 48 bytes: a 32-byte key
// followed by a 16-byte initialization value. Only the wrapped form of the secret,
// a WrappedRecord, is ever persisted.
package domain

import (
	"fmt"
)

// Secret is the 48-byte application secret (key ‖ IV).
//
// A Secret is plaintext key material. Callers should hold it only as long as needed
// and call Zero when done.
type Secret []byte

// Validate checks the secret length.
func (s Secret) Validate() error {
	if len(s) != SecretSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSecretSize, SecretSize, len(s))
	}
	return nil
}

// Key returns a copy of the 32-byte key half.
func (s Secret) Key() []byte {
	key := make([]byte, SecretKeySize)
	copy(key, s[:SecretKeySize])
	return key
}

// IV returns a copy of the 16-byte initialization value half.
func (s Secret) IV() []byte {
	iv := make([]byte, SecretIVSize)
	copy(iv, s[SecretKeySize:SecretSize])
	return iv
}

// Split returns copies of the key and IV halves. It fails when the secret is not 48 bytes.
func (s Secret) Split() (key, iv []byte, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	return s.Key(), s.IV(), nil
}

// Zero clears the secret in place.
func (s Secret) Zero() {
	Zero(s)
}

// JoinSecret builds a Secret from a 32-byte key and a 16-byte IV.
func JoinSecret(key, iv []byte) (Secret, error) {
	if len(key) != SecretKeySize || len(iv) != SecretIVSize {
		return nil, fmt.Errorf(
			"%w: expected %d byte key and %d byte iv, got %d and %d",
			ErrInvalidSecretSize,
			SecretKeySize,
			SecretIVSize,
			len(key),
			len(iv),
		)
	}

	secret := make(Secret, SecretSize)
	copy(secret, key)
	copy(secret[SecretKeySize:], iv)
	return secret, nil
}
