// Package mocks provides mock implementations of the device secret services for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// MockTrustAnchor is a mock implementation of TrustAnchor for testing.
type MockTrustAnchor struct {
	mock.Mock
}

// HasKey mocks the HasKey method of TrustAnchor.
func (m *MockTrustAnchor) HasKey(ctx context.Context, alias string) (bool, error) {
	args := m.Called(ctx, alias)
	return args.Bool(0), args.Error(1)
}

// CreateKey mocks the CreateKey method of TrustAnchor.
func (m *MockTrustAnchor) CreateKey(ctx context.Context, alias string, spec deviceDomain.KeySpec) error {
	args := m.Called(ctx, alias, spec)
	return args.Error(0)
}

// Encrypt mocks the Encrypt method of TrustAnchor.
func (m *MockTrustAnchor) Encrypt(
	ctx context.Context,
	alias string,
	plaintext []byte,
) (ciphertext, nonce []byte, err error) {
	args := m.Called(ctx, alias, plaintext)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).([]byte), args.Error(2)
}

// Decrypt mocks the Decrypt method of TrustAnchor.
func (m *MockTrustAnchor) Decrypt(ctx context.Context, alias string, ciphertext, nonce []byte) ([]byte, error) {
	args := m.Called(ctx, alias, ciphertext, nonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
