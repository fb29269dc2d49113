package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// KeeperTrustAnchor protects master keys with a KMS keeper.
//
// CreateKey generates a 256-bit master key locally, seals it with the keeper and
// stores only the sealed blob under namespace/alias. Every Encrypt or Decrypt unseals
// the key, uses it once and zeroes it. The plaintext key is never returned, and an
// attacker holding the store alone cannot recover it without the KMS.
type KeeperTrustAnchor struct {
	keeper    Keeper
	store     SealedKeyStore
	namespace string
	rand      io.Reader
	mu        sync.Mutex
}

// NewKeeperTrustAnchor creates an anchor that keeps sealed keys in store under namespace.
func NewKeeperTrustAnchor(keeper Keeper, store SealedKeyStore, namespace string) *KeeperTrustAnchor {
	return NewKeeperTrustAnchorWithRand(keeper, store, namespace, rand.Reader)
}

// NewKeeperTrustAnchorWithRand is like NewKeeperTrustAnchor but draws keys and nonces from r.
func NewKeeperTrustAnchorWithRand(
	keeper Keeper,
	store SealedKeyStore,
	namespace string,
	r io.Reader,
) *KeeperTrustAnchor {
	return &KeeperTrustAnchor{
		keeper:    keeper,
		store:     store,
		namespace: namespace,
		rand:      r,
	}
}

// HasKey reports whether a sealed key exists for alias.
func (k *KeeperTrustAnchor) HasKey(ctx context.Context, alias string) (bool, error) {
	_, err := k.store.Get(ctx, k.namespace, alias)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, deviceDomain.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: failed to read sealed key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
}

// CreateKey generates and seals a master key for alias unless one already exists.
func (k *KeeperTrustAnchor) CreateKey(ctx context.Context, alias string, spec deviceDomain.KeySpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	exists, err := k.HasKey(ctx, alias)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	key := make([]byte, deviceDomain.MasterKeySize)
	defer deviceDomain.Zero(key)
	if _, err := io.ReadFull(k.rand, key); err != nil {
		return fmt.Errorf("%w: %v", deviceDomain.ErrEntropyUnavailable, err)
	}

	sealed, err := k.keeper.Encrypt(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: failed to seal master key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}

	if err := k.store.Put(ctx, k.namespace, alias, sealed); err != nil {
		return fmt.Errorf("%w: failed to store sealed key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	return nil
}

// Encrypt seals plaintext with the unsealed master key for alias.
func (k *KeeperTrustAnchor) Encrypt(
	ctx context.Context,
	alias string,
	plaintext []byte,
) (ciphertext, nonce []byte, err error) {
	aead, err := k.open(ctx, alias)
	if err != nil {
		return nil, nil, err
	}
	return aead.Encrypt(plaintext, nil)
}

// Decrypt opens ciphertext with the unsealed master key for alias.
func (k *KeeperTrustAnchor) Decrypt(ctx context.Context, alias string, ciphertext, nonce []byte) ([]byte, error) {
	aead, err := k.open(ctx, alias)
	if err != nil {
		return nil, err
	}
	return aead.Decrypt(ciphertext, nonce, nil)
}

// open unseals the master key and returns a cipher bound to it. The key bytes are
// zeroed before returning; the cipher keeps only the expanded AES schedule.
func (k *KeeperTrustAnchor) open(ctx context.Context, alias string) (AEAD, error) {
	sealed, err := k.store.Get(ctx, k.namespace, alias)
	if err != nil {
		if errors.Is(err, deviceDomain.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", deviceDomain.ErrKeyNotFound, alias)
		}
		return nil, fmt.Errorf("%w: failed to read sealed key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}

	key, err := k.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unseal master key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	defer deviceDomain.Zero(key)

	aead, err := NewAESGCMWithRand(key, k.rand)
	if err != nil {
		return nil, fmt.Errorf("%w: unsealed master key is invalid: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	return aead, nil
}
