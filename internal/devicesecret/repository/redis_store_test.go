package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

func newTestRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisStore(client, prefix), server
}

func TestRedisStore(t *testing.T) {
	store, _ := newTestRedisStore(t, "devicesecret:")
	runStoreContract(t, store)
}

func TestRedisStore_HashLayout(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t, "devicesecret:")

	err := store.PutAll(ctx, "DevianCrypto", map[string][]byte{
		"wrappedIV":  []byte("nonce"),
		"wrappedDEK": []byte("ciphertext"),
	})
	require.NoError(t, err)

	assert.True(t, server.Exists("devicesecret:DevianCrypto"))
	assert.Equal(t, "nonce", server.HGet("devicesecret:DevianCrypto", "wrappedIV"))
	assert.Equal(t, "ciphertext", server.HGet("devicesecret:DevianCrypto", "wrappedDEK"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t, "")
	server.Close()

	_, err := store.Get(ctx, "DevianCrypto", "wrappedDEK")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, deviceDomain.ErrKeyNotFound)

	err = store.Put(ctx, "DevianCrypto", "wrappedDEK", []byte("value"))
	assert.Error(t, err)
}
