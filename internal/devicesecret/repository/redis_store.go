package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	apperrors "github.com/allisson/devicesecret/internal/errors"
)

// RedisStore keeps each namespace in one Redis hash named <prefix><namespace>, with one
// field per key. PutAll is a single HSET, which Redis applies atomically.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a RedisStore. prefix is prepended to every hash name and may be empty.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the value stored under namespace/key.
func (r *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := r.client.HGet(ctx, r.hash(namespace), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, deviceDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get redis hash field")
	}
	return value, nil
}

// Put sets the value stored under namespace/key.
func (r *RedisStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := r.client.HSet(ctx, r.hash(namespace), key, value).Err(); err != nil {
		return apperrors.Wrap(err, "failed to set redis hash field")
	}
	return nil
}

// PutAll sets every entry of values in one HSET command.
func (r *RedisStore) PutAll(ctx context.Context, namespace string, values map[string][]byte) error {
	fields := make(map[string]interface{}, len(values))
	for key, value := range values {
		fields[key] = value
	}
	if err := r.client.HSet(ctx, r.hash(namespace), fields).Err(); err != nil {
		return apperrors.Wrap(err, "failed to set redis hash fields")
	}
	return nil
}

func (r *RedisStore) hash(namespace string) string {
	return r.prefix + namespace
}
