// Package mocks provides mock implementations of the device secret use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

// GetOrCreate mocks the GetOrCreate method of SecretUseCase.
func (m *MockSecretUseCase) GetOrCreate(ctx context.Context) (deviceDomain.Secret, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(deviceDomain.Secret), args.Error(1)
}

// Status mocks the Status method of SecretUseCase.
func (m *MockSecretUseCase) Status(ctx context.Context) (deviceDomain.State, error) {
	args := m.Called(ctx)
	return args.Get(0).(deviceDomain.State), args.Error(1)
}
