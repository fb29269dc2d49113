package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	deviceService "github.com/allisson/devicesecret/internal/devicesecret/service"
)

// secretUseCase implements SecretUseCase for one installation.
type secretUseCase struct {
	installation deviceDomain.Installation
	anchor       deviceService.TrustAnchor
	envelope     deviceService.Envelope
	store        KeyValueStore
	locks        *lockRegistry
	logger       *slog.Logger
}

// GetOrCreate returns the application secret, provisioning the master key and the
// wrapped record on first use.
//
// The whole check-then-create sequence runs under the installation lock, so concurrent
// callers never generate two different secrets. Failures are returned as they are
// found; nothing is retried.
func (s *secretUseCase) GetOrCreate(ctx context.Context) (deviceDomain.Secret, error) {
	if err := s.installation.Validate(); err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(ctx, s.installation.String())
	if err != nil {
		return nil, err
	}
	defer release()

	logger := s.logger.With(
		slog.String("operation_id", newOperationID()),
		slog.String("namespace", s.installation.Namespace),
		slog.String("alias", s.installation.Alias),
	)

	if err := s.ensureMasterKey(ctx, logger); err != nil {
		return nil, err
	}

	record, err := s.loadRecord(ctx)
	if err != nil {
		logger.Error("failed to load wrapped secret", slog.Any("error", err))
		return nil, err
	}

	if record != nil {
		secret, err := s.envelope.Unwrap(ctx, s.installation.Alias, record)
		if err != nil {
			if errors.Is(err, deviceDomain.ErrUnwrapFailed) {
				err = fmt.Errorf("%w: %w", deviceDomain.ErrCorruptRecord, err)
			}
			logger.Error("failed to unwrap secret", slog.Any("error", err))
			return nil, err
		}
		logger.Debug("secret unwrapped", slog.Int("record_version", int(record.Version)))
		return secret, nil
	}

	secret, err := s.provision(ctx)
	if err != nil {
		logger.Error("failed to provision secret", slog.Any("error", err))
		return nil, err
	}
	logger.Info("secret provisioned")
	return secret, nil
}

// Status reports NoKey, KeyReady or Provisioned. It only reads: no key is created and
// the record is not unwrapped.
func (s *secretUseCase) Status(ctx context.Context) (deviceDomain.State, error) {
	if err := s.installation.Validate(); err != nil {
		return deviceDomain.StateNoKey, err
	}

	release, err := s.locks.acquire(ctx, s.installation.String())
	if err != nil {
		return deviceDomain.StateNoKey, err
	}
	defer release()

	exists, err := s.anchor.HasKey(ctx, s.installation.Alias)
	if err != nil {
		return deviceDomain.StateNoKey, keystoreError(err)
	}
	if !exists {
		return deviceDomain.StateNoKey, nil
	}

	record, err := s.loadRecord(ctx)
	if err != nil {
		return deviceDomain.StateKeyReady, err
	}
	if record == nil {
		return deviceDomain.StateKeyReady, nil
	}
	return deviceDomain.StateProvisioned, nil
}

// ensureMasterKey creates the master key when the trust anchor does not have it yet.
func (s *secretUseCase) ensureMasterKey(ctx context.Context, logger *slog.Logger) error {
	exists, err := s.anchor.HasKey(ctx, s.installation.Alias)
	if err != nil {
		logger.Error("failed to check master key", slog.Any("error", err))
		return keystoreError(err)
	}
	if exists {
		return nil
	}

	if err := s.anchor.CreateKey(ctx, s.installation.Alias, deviceDomain.DefaultKeySpec); err != nil {
		logger.Error("failed to create master key", slog.Any("error", err))
		return keystoreError(err)
	}
	logger.Info("master key provisioned")
	return nil
}

// loadRecord reads the wrapped record. It returns nil when no secret has been
// provisioned yet, including the case of a nonce left behind by an interrupted first
// write, whose secret was never handed out.
func (s *secretUseCase) loadRecord(ctx context.Context) (*deviceDomain.WrappedRecord, error) {
	ciphertext, err := s.get(ctx, deviceDomain.WrappedDEKKey)
	if err != nil {
		return nil, err
	}
	if ciphertext == nil {
		return nil, nil
	}

	nonce, err := s.get(ctx, deviceDomain.WrappedIVKey)
	if err != nil {
		return nil, err
	}
	if nonce == nil {
		return nil, fmt.Errorf("%w: wrapped secret has no nonce", deviceDomain.ErrCorruptRecord)
	}

	return deviceDomain.DecodeWrappedRecord(ciphertext, nonce)
}

// provision generates, wraps and persists a new secret.
func (s *secretUseCase) provision(ctx context.Context) (deviceDomain.Secret, error) {
	secret, err := s.envelope.GenerateSecret()
	if err != nil {
		return nil, err
	}

	record, err := s.envelope.Wrap(ctx, s.installation.Alias, secret)
	if err != nil {
		secret.Zero()
		return nil, err
	}

	if err := s.persist(ctx, record); err != nil {
		secret.Zero()
		return nil, fmt.Errorf("%w: %w", deviceDomain.ErrStorageError, err)
	}
	return secret, nil
}

// persist writes the record. Without an atomic store the nonce goes first, so an
// interrupted write leaves a lone nonce that reads as not provisioned.
func (s *secretUseCase) persist(ctx context.Context, record *deviceDomain.WrappedRecord) error {
	if atomic, ok := s.store.(AtomicStore); ok {
		return atomic.PutAll(ctx, s.installation.Namespace, map[string][]byte{
			deviceDomain.WrappedIVKey:  record.EncodeNonce(),
			deviceDomain.WrappedDEKKey: record.EncodeCiphertext(),
		})
	}

	if err := s.store.Put(ctx, s.installation.Namespace, deviceDomain.WrappedIVKey, record.EncodeNonce()); err != nil {
		return err
	}
	return s.store.Put(ctx, s.installation.Namespace, deviceDomain.WrappedDEKKey, record.EncodeCiphertext())
}

// get reads one key, returning nil for an absent key and ErrStorageError for failures.
func (s *secretUseCase) get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.store.Get(ctx, s.installation.Namespace, key)
	if err != nil {
		if errors.Is(err, deviceDomain.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", deviceDomain.ErrStorageError, err)
	}
	return value, nil
}

// keystoreError keeps typed anchor errors and reports anything else as a keystore outage.
func keystoreError(err error) error {
	if errors.Is(err, deviceDomain.ErrKeystoreUnavailable) ||
		errors.Is(err, deviceDomain.ErrEntropyUnavailable) ||
		errors.Is(err, deviceDomain.ErrInvalidKeySpec) {
		return err
	}
	return fmt.Errorf("%w: %w", deviceDomain.ErrKeystoreUnavailable, err)
}

func newOperationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewSecretUseCase creates the lifecycle controller for installation.
func NewSecretUseCase(
	installation deviceDomain.Installation,
	anchor deviceService.TrustAnchor,
	envelope deviceService.Envelope,
	store KeyValueStore,
	logger *slog.Logger,
) SecretUseCase {
	return &secretUseCase{
		installation: installation,
		anchor:       anchor,
		envelope:     envelope,
		store:        store,
		locks:        installationLocks,
		logger:       logger,
	}
}
