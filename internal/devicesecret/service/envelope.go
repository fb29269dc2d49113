package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

// EnvelopeService implements the Envelope interface on top of a TrustAnchor.
//
// The application secret is generated here and handed to the trust anchor for
// encryption; the master key never leaves the anchor.
type EnvelopeService struct {
	anchor TrustAnchor
	rand   io.Reader
}

// NewEnvelope creates an EnvelopeService drawing secrets from crypto/rand.
func NewEnvelope(anchor TrustAnchor) *EnvelopeService {
	return NewEnvelopeWithRand(anchor, rand.Reader)
}

// NewEnvelopeWithRand creates an EnvelopeService drawing secrets from r.
func NewEnvelopeWithRand(anchor TrustAnchor, r io.Reader) *EnvelopeService {
	return &EnvelopeService{anchor: anchor, rand: r}
}

// GenerateSecret fills a new 48-byte secret from the random source.
func (e *EnvelopeService) GenerateSecret() (deviceDomain.Secret, error) {
	secret := make(deviceDomain.Secret, deviceDomain.SecretSize)
	if _, err := io.ReadFull(e.rand, secret); err != nil {
		return nil, fmt.Errorf("%w: %v", deviceDomain.ErrEntropyUnavailable, err)
	}
	return secret, nil
}

// Wrap encrypts the secret under the master key alias.
//
// Keystore and entropy outages are returned as they are; any other anchor error is a
// cipher failure and is reported as deviceDomain.ErrWrapFailed.
func (e *EnvelopeService) Wrap(
	ctx context.Context,
	alias string,
	secret deviceDomain.Secret,
) (*deviceDomain.WrappedRecord, error) {
	if err := secret.Validate(); err != nil {
		return nil, err
	}

	ciphertext, nonce, err := e.anchor.Encrypt(ctx, alias, secret)
	if err != nil {
		if isOutage(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", deviceDomain.ErrWrapFailed, err)
	}

	record, err := deviceDomain.NewWrappedRecord(ciphertext, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: trust anchor returned %w", deviceDomain.ErrWrapFailed, err)
	}
	return record, nil
}

// Unwrap authenticates and decrypts the record under the master key alias.
//
// Malformed records, wrong keys, tampered data and missing keys all yield the same
// deviceDomain.ErrUnwrapFailed with no further detail. Only a keystore outage is
// reported differently, since it is not a property of the record.
func (e *EnvelopeService) Unwrap(
	ctx context.Context,
	alias string,
	record *deviceDomain.WrappedRecord,
) (deviceDomain.Secret, error) {
	if record == nil || record.Validate() != nil {
		return nil, deviceDomain.ErrUnwrapFailed
	}

	plaintext, err := e.anchor.Decrypt(ctx, alias, record.Ciphertext, record.Nonce)
	if err != nil {
		if errors.Is(err, deviceDomain.ErrKeystoreUnavailable) {
			return nil, err
		}
		return nil, deviceDomain.ErrUnwrapFailed
	}

	secret := deviceDomain.Secret(plaintext)
	if secret.Validate() != nil {
		deviceDomain.Zero(plaintext)
		return nil, deviceDomain.ErrUnwrapFailed
	}
	return secret, nil
}

// isOutage reports errors that say nothing about the data being processed.
func isOutage(err error) bool {
	return errors.Is(err, deviceDomain.ErrKeystoreUnavailable) ||
		errors.Is(err, deviceDomain.ErrEntropyUnavailable)
}
