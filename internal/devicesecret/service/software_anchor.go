package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// SoftwareTrustAnchor keeps master keys in process memory and performs the same
// AES-256-GCM operations a hardware keystore would. It is meant for tests and
// development; keys do not survive the process.
type SoftwareTrustAnchor struct {
	mu          sync.RWMutex
	keys        map[string]AEAD
	rand        io.Reader
	generations int
}

// NewSoftwareTrustAnchor creates an empty anchor using crypto/rand.
func NewSoftwareTrustAnchor() *SoftwareTrustAnchor {
	return NewSoftwareTrustAnchorWithRand(rand.Reader)
}

// NewSoftwareTrustAnchorWithRand creates an empty anchor drawing keys and nonces from r.
func NewSoftwareTrustAnchorWithRand(r io.Reader) *SoftwareTrustAnchor {
	return &SoftwareTrustAnchor{
		keys: make(map[string]AEAD),
		rand: r,
	}
}

// HasKey reports whether alias exists.
func (s *SoftwareTrustAnchor) HasKey(ctx context.Context, alias string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.keys[alias]
	return ok, nil
}

// CreateKey generates a random 256-bit key under alias unless one already exists.
func (s *SoftwareTrustAnchor) CreateKey(ctx context.Context, alias string, spec deviceDomain.KeySpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[alias]; ok {
		return nil
	}

	key := make([]byte, deviceDomain.MasterKeySize)
	defer deviceDomain.Zero(key)
	if _, err := io.ReadFull(s.rand, key); err != nil {
		return fmt.Errorf("%w: %v", deviceDomain.ErrEntropyUnavailable, err)
	}

	aead, err := NewAESGCMWithRand(key, s.rand)
	if err != nil {
		return err
	}

	s.keys[alias] = aead
	s.generations++
	return nil
}

// Encrypt seals plaintext under alias.
func (s *SoftwareTrustAnchor) Encrypt(
	ctx context.Context,
	alias string,
	plaintext []byte,
) (ciphertext, nonce []byte, err error) {
	aead, err := s.get(alias)
	if err != nil {
		return nil, nil, err
	}
	return aead.Encrypt(plaintext, nil)
}

// Decrypt opens ciphertext under alias.
func (s *SoftwareTrustAnchor) Decrypt(ctx context.Context, alias string, ciphertext, nonce []byte) ([]byte, error) {
	aead, err := s.get(alias)
	if err != nil {
		return nil, err
	}
	return aead.Decrypt(ciphertext, nonce, nil)
}

// DeleteKey removes alias, simulating a keystore reset that invalidates the master key.
func (s *SoftwareTrustAnchor) DeleteKey(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, alias)
}

// KeyGenerations returns how many keys CreateKey has generated.
func (s *SoftwareTrustAnchor) KeyGenerations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generations
}

func (s *SoftwareTrustAnchor) get(alias string) (AEAD, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	aead, ok := s.keys[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", deviceDomain.ErrKeyNotFound, alias)
	}
	return aead, nil
}
