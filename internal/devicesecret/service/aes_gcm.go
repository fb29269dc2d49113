package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM
// (Advanced Encryption Standard with Galois/Counter Mode).
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce (96 bits, randomly generated per encryption, never all-zero)
//   - 16-byte authentication tag (128 bits, appended to ciphertext)
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from multiple
//	goroutines. Each encryption operation generates a unique nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
	rand io.Reader
}

var _ AEAD = (*AESGCMCipher)(nil)

// NewAESGCM creates a new AES-256-GCM cipher instance drawing nonces from crypto/rand.
//
// The key must be exactly 32 bytes (256 bits) for AES-256. The key slice is not
// retained past the call, so callers may zero it afterwards.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	return NewAESGCMWithRand(key, rand.Reader)
}

// NewAESGCMWithRand is like NewAESGCM but draws nonces from r.
func NewAESGCMWithRand(key []byte, r io.Reader) (*AESGCMCipher, error) {
	if len(key) != deviceDomain.MasterKeySize {
		return nil, fmt.Errorf("key must be exactly %d bytes", deviceDomain.MasterKeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, deviceDomain.TagSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead, rand: r}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with optional additional authenticated data.
//
// A 12-byte nonce is read from the cipher's random source for every call. A failing
// source, or one returning an all-zero nonce, yields deviceDomain.ErrEntropyUnavailable.
// The returned ciphertext includes the 16-byte authentication tag appended to the end.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(a.rand, nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate nonce: %v", deviceDomain.ErrEntropyUnavailable, err)
	}
	if deviceDomain.IsZero(nonce) {
		return nil, nil, fmt.Errorf("%w: random source returned an all-zero nonce", deviceDomain.ErrEntropyUnavailable)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using AES-256-GCM with the provided nonce and AAD.
//
// The tag is verified before any plaintext is returned. Every failure, including a
// nonce of the wrong length, returns deviceDomain.ErrUnwrapFailed and no plaintext.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, deviceDomain.ErrUnwrapFailed
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, deviceDomain.ErrUnwrapFailed
	}
	return plaintext, nil
}
