// Package usecase implements the device secret lifecycle: make sure the master key
// exists, then return the application secret, generating and persisting it the first
// time and unwrapping the persisted record on every later call.
package usecase

import (
	"context"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// KeyValueStore persists opaque values by namespace and key.
type KeyValueStore interface {
	// Get returns the value for namespace/key or deviceDomain.ErrKeyNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Put stores value under namespace/key, replacing any previous value.
	Put(ctx context.Context, namespace, key string, value []byte) error
}

// AtomicStore is implemented by stores able to write several keys all-or-nothing.
// When available it is used to persist the wrapped record in one step.
type AtomicStore interface {
	KeyValueStore
	PutAll(ctx context.Context, namespace string, values map[string][]byte) error
}

// SecretUseCase defines the device secret lifecycle operations.
type SecretUseCase interface {
	// GetOrCreate returns the 48-byte application secret of the installation.
	//
	// Security Note: the returned Secret is plaintext key material. Callers MUST call
	// Zero on it once done.
	GetOrCreate(ctx context.Context) (deviceDomain.Secret, error)

	// Status reports the lifecycle state without creating or unwrapping anything.
	Status(ctx context.Context) (deviceDomain.State, error)
}
