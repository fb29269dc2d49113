package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// MockEnvelope is a mock implementation of Envelope for testing.
type MockEnvelope struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method of Envelope.
func (m *MockEnvelope) GenerateSecret() (deviceDomain.Secret, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(deviceDomain.Secret), args.Error(1)
}

// Wrap mocks the Wrap method of Envelope.
func (m *MockEnvelope) Wrap(
	ctx context.Context,
	alias string,
	secret deviceDomain.Secret,
) (*deviceDomain.WrappedRecord, error) {
	args := m.Called(ctx, alias, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deviceDomain.WrappedRecord), args.Error(1)
}

// Unwrap mocks the Unwrap method of Envelope.
func (m *MockEnvelope) Unwrap(
	ctx context.Context,
	alias string,
	record *deviceDomain.WrappedRecord,
) (deviceDomain.Secret, error) {
	args := m.Called(ctx, alias, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(deviceDomain.Secret), args.Error(1)
}
