package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

const testKekNamespace = "DevianCrypto.kek"

func newTestKeeper(t *testing.T) Keeper {
	t.Helper()
	keeper, err := NewKMSService().OpenKeeper(context.Background(), generateLocalSecretsURI(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = keeper.Close()
	})
	return keeper
}

// brokenKeeper fails every operation, like an unreachable KMS.
type brokenKeeper struct{}

func (brokenKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return nil, errors.New("kms unreachable")
}

func (brokenKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return nil, errors.New("kms unreachable")
}

func (brokenKeeper) Close() error { return nil }

func TestKeeperTrustAnchor_CreateKey(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresOnlySealedKey", func(t *testing.T) {
		store := newMemSealedStore()
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), store, testKekNamespace)

		exists, err := anchor.HasKey(ctx, testAlias)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		exists, err = anchor.HasKey(ctx, testAlias)
		require.NoError(t, err)
		assert.True(t, exists)

		sealed, err := store.Get(ctx, testKekNamespace, testAlias)
		require.NoError(t, err)
		assert.Greater(t, len(sealed), deviceDomain.MasterKeySize)
	})

	t.Run("ExistingAliasKeepsKey", func(t *testing.T) {
		store := newMemSealedStore()
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), store, testKekNamespace)
		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		before, err := store.Get(ctx, testKekNamespace, testAlias)
		require.NoError(t, err)

		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		after, err := store.Get(ctx, testKekNamespace, testAlias)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(before, after))
	})

	t.Run("Error_InvalidKeySpec", func(t *testing.T) {
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), newMemSealedStore(), testKekNamespace)

		err := anchor.CreateKey(ctx, testAlias, deviceDomain.KeySpec{SizeBits: 256, Algorithm: "chacha20"})
		assert.ErrorIs(t, err, deviceDomain.ErrInvalidKeySpec)
	})

	t.Run("Error_KeeperUnavailable", func(t *testing.T) {
		anchor := NewKeeperTrustAnchor(brokenKeeper{}, newMemSealedStore(), testKekNamespace)

		err := anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec)
		assert.ErrorIs(t, err, deviceDomain.ErrKeystoreUnavailable)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		store := newMemSealedStore()
		store.offline = true
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), store, testKekNamespace)

		_, err := anchor.HasKey(ctx, testAlias)
		assert.ErrorIs(t, err, deviceDomain.ErrKeystoreUnavailable)

		err = anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec)
		assert.ErrorIs(t, err, deviceDomain.ErrKeystoreUnavailable)
	})

	t.Run("Error_EntropyUnavailable", func(t *testing.T) {
		anchor := NewKeeperTrustAnchorWithRand(newTestKeeper(t), newMemSealedStore(), testKekNamespace, failingReader{})

		err := anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec)
		assert.ErrorIs(t, err, deviceDomain.ErrEntropyUnavailable)
	})
}

func TestKeeperTrustAnchor_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTripAcrossInstances", func(t *testing.T) {
		keeper := newTestKeeper(t)
		store := newMemSealedStore()

		first := NewKeeperTrustAnchor(keeper, store, testKekNamespace)
		require.NoError(t, first.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		plaintext := bytes.Repeat([]byte{0x7f}, deviceDomain.SecretSize)
		ciphertext, nonce, err := first.Encrypt(ctx, testAlias, plaintext)
		require.NoError(t, err)
		assert.Len(t, ciphertext, deviceDomain.WrappedSize)
		assert.Len(t, nonce, deviceDomain.NonceSize)

		second := NewKeeperTrustAnchor(keeper, store, testKekNamespace)
		decrypted, err := second.Decrypt(ctx, testAlias, ciphertext, nonce)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("EnvelopeRoundTrip", func(t *testing.T) {
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), newMemSealedStore(), testKekNamespace)
		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))
		envelope := NewEnvelope(anchor)

		secret, err := envelope.GenerateSecret()
		require.NoError(t, err)
		record, err := envelope.Wrap(ctx, testAlias, secret)
		require.NoError(t, err)

		unwrapped, err := envelope.Unwrap(ctx, testAlias, record)
		require.NoError(t, err)
		assert.Equal(t, secret, unwrapped)
	})

	t.Run("Error_DifferentKeeperCannotUnseal", func(t *testing.T) {
		store := newMemSealedStore()
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), store, testKekNamespace)
		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		ciphertext, nonce, err := anchor.Encrypt(ctx, testAlias, []byte("payload"))
		require.NoError(t, err)

		other := NewKeeperTrustAnchor(newTestKeeper(t), store, testKekNamespace)
		_, err = other.Decrypt(ctx, testAlias, ciphertext, nonce)
		assert.ErrorIs(t, err, deviceDomain.ErrKeystoreUnavailable)
	})

	t.Run("Error_UnknownAlias", func(t *testing.T) {
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), newMemSealedStore(), testKekNamespace)

		_, _, err := anchor.Encrypt(ctx, testAlias, []byte("payload"))
		assert.ErrorIs(t, err, deviceDomain.ErrKeyNotFound)
	})

	t.Run("Error_Tampered", func(t *testing.T) {
		anchor := NewKeeperTrustAnchor(newTestKeeper(t), newMemSealedStore(), testKekNamespace)
		require.NoError(t, anchor.CreateKey(ctx, testAlias, deviceDomain.DefaultKeySpec))

		ciphertext, nonce, err := anchor.Encrypt(ctx, testAlias, []byte("payload"))
		require.NoError(t, err)
		ciphertext[0] ^= 0xff

		_, err = anchor.Decrypt(ctx, testAlias, ciphertext, nonce)
		assert.ErrorIs(t, err, deviceDomain.ErrUnwrapFailed)
	})
}
