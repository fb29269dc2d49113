package domain

import (
	"github.com/allisson/devicesecret/internal/errors"
)

// Device secret error definitions.
//
// Each failure class of the get-or-create protocol has its own sentinel so callers can
// branch with errors.Is. They wrap the shared sentinels from internal/errors, which
// lets generic code treat e.g. keystore and storage outages alike as ErrUnavailable.
var (
	// ErrEntropyUnavailable indicates the platform random source failed. Fatal.
	ErrEntropyUnavailable = errors.Wrap(errors.ErrInternal, "entropy unavailable")

	// ErrKeystoreUnavailable indicates the trust anchor could not be reached.
	ErrKeystoreUnavailable = errors.Wrap(errors.ErrUnavailable, "keystore unavailable")

	// ErrStorageError indicates the key-value store could not be read or written.
	ErrStorageError = errors.Wrap(errors.ErrUnavailable, "storage error")

	// ErrWrapFailed indicates the trust anchor reported a cipher error while wrapping.
	ErrWrapFailed = errors.Wrap(errors.ErrInternal, "wrap failed")

	// ErrUnwrapFailed indicates a wrapped secret could not be recovered.
	//
	// Authentication tag mismatch, wrong master key, tampered nonce and truncated
	// ciphertext all produce this same error.
	ErrUnwrapFailed = errors.Wrap(errors.ErrInvalidInput, "unwrap failed")

	// ErrCorruptRecord indicates a persisted record is malformed or fails authentication.
	ErrCorruptRecord = errors.Wrap(errors.ErrInvalidInput, "corrupt record")

	// ErrKeyNotFound indicates that a master key alias or a store key does not exist.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrInvalidKeySpec indicates a request for anything but a non-exportable AES-256-GCM key.
	ErrInvalidKeySpec = errors.Wrap(errors.ErrInvalidInput, "invalid key spec")

	// ErrInvalidSecretSize indicates a secret that is not exactly 48 bytes.
	ErrInvalidSecretSize = errors.Wrap(errors.ErrInvalidInput, "invalid secret size")

	// ErrInvalidNonceSize indicates a nonce that is not 12 bytes or is all zero.
	ErrInvalidNonceSize = errors.Wrap(errors.ErrInvalidInput, "invalid nonce")

	// ErrInvalidCiphertextSize indicates a wrapped secret that is not 64 bytes.
	ErrInvalidCiphertextSize = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext size")

	// ErrUnsupportedRecordVersion indicates a record written by an unknown format version.
	ErrUnsupportedRecordVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported record version")

	// ErrInvalidInstallation indicates an empty or unsafe alias or namespace.
	ErrInvalidInstallation = errors.Wrap(errors.ErrInvalidInput, "invalid installation")
)
