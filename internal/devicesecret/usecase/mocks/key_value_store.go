package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockKeyValueStore is a mock implementation of KeyValueStore for testing.
type MockKeyValueStore struct {
	mock.Mock
}

// Get mocks the Get method of KeyValueStore.
func (m *MockKeyValueStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	args := m.Called(ctx, namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Put mocks the Put method of KeyValueStore.
func (m *MockKeyValueStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	args := m.Called(ctx, namespace, key, value)
	return args.Error(0)
}
