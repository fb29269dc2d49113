package repository

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

type kvStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
}

type atomicKVStore interface {
	kvStore
	PutAll(ctx context.Context, namespace string, values map[string][]byte) error
}

// runStoreContract exercises the behavior every store shares.
func runStoreContract(t *testing.T, store kvStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("MissingKey", func(t *testing.T) {
		value, err := store.Get(ctx, "DevianCrypto", "missing")
		assert.ErrorIs(t, err, deviceDomain.ErrKeyNotFound)
		assert.Nil(t, value)
	})

	t.Run("PutGet", func(t *testing.T) {
		value := []byte{0x01, 0x00, 0xff, 0x10}
		require.NoError(t, store.Put(ctx, "DevianCrypto", "wrappedDEK", value))

		got, err := store.Get(ctx, "DevianCrypto", "wrappedDEK")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "DevianCrypto", "wrappedIV", []byte("first")))
		require.NoError(t, store.Put(ctx, "DevianCrypto", "wrappedIV", []byte("second")))

		got, err := store.Get(ctx, "DevianCrypto", "wrappedIV")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "first", "shared", []byte("a")))
		require.NoError(t, store.Put(ctx, "second", "shared", []byte("b")))

		got, err := store.Get(ctx, "first", "shared")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), got)

		got, err = store.Get(ctx, "second", "shared")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), got)
	})

	t.Run("CallerBufferNotRetained", func(t *testing.T) {
		value := bytes.Repeat([]byte{0x42}, 16)
		require.NoError(t, store.Put(ctx, "DevianCrypto", "buffer", value))
		deviceDomain.Zero(value)

		got, err := store.Get(ctx, "DevianCrypto", "buffer")
		require.NoError(t, err)
		assert.Equal(t, bytes.Repeat([]byte{0x42}, 16), got)
	})

	if atomic, ok := store.(atomicKVStore); ok {
		t.Run("PutAll", func(t *testing.T) {
			err := atomic.PutAll(ctx, "batch", map[string][]byte{
				"wrappedIV":  []byte("nonce"),
				"wrappedDEK": []byte("ciphertext"),
			})
			require.NoError(t, err)

			got, err := store.Get(ctx, "batch", "wrappedIV")
			require.NoError(t, err)
			assert.Equal(t, []byte("nonce"), got)

			got, err = store.Get(ctx, "batch", "wrappedDEK")
			require.NoError(t, err)
			assert.Equal(t, []byte("ciphertext"), got)
		})
	}
}
