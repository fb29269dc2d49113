package usecase

import (
	"context"
	"time"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	"github.com/allisson/devicesecret/internal/metrics"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// GetOrCreate records metrics for secret retrieval and provisioning.
func (s *secretUseCaseWithMetrics) GetOrCreate(ctx context.Context) (deviceDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.GetOrCreate(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "devicesecret", "secret_get_or_create", status)
	s.metrics.RecordDuration(ctx, "devicesecret", "secret_get_or_create", time.Since(start), status)

	return secret, err
}

// Status records metrics for lifecycle state queries.
func (s *secretUseCaseWithMetrics) Status(ctx context.Context) (deviceDomain.State, error) {
	start := time.Now()
	state, err := s.next.Status(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "devicesecret", "secret_status", status)
	s.metrics.RecordDuration(ctx, "devicesecret", "secret_status", time.Since(start), status)

	return state, err
}
