package domain

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Record format versions.
const (
	// RecordVersionLegacy marks a ciphertext stored without a version prefix,
	// raw or base64 encoded, as written by the mobile plugin.
	RecordVersionLegacy uint8 = 0

	// RecordVersion1 marks a ciphertext stored as 0x01 ‖ AES-256-GCM ciphertext ‖ tag.
	RecordVersion1 uint8 = 1

	// CurrentRecordVersion is the version written by this package.
	CurrentRecordVersion = RecordVersion1
)

// WrappedRecord is the persisted form of the application secret: the secret encrypted
// under the master key, and the nonce used for that single encryption.
type WrappedRecord struct {
	Version    uint8  // Format version the record was read with
	Ciphertext []byte // 48-byte secret encrypted with AES-256-GCM, 16-byte tag appended
	Nonce      []byte // 12-byte random nonce, unique per wrap
}

// NewWrappedRecord builds a current-version record and validates it.
func NewWrappedRecord(ciphertext, nonce []byte) (*WrappedRecord, error) {
	r := &WrappedRecord{
		Version:    CurrentRecordVersion,
		Ciphertext: bytes.Clone(ciphertext),
		Nonce:      bytes.Clone(nonce),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks ciphertext and nonce lengths. An all-zero nonce is rejected since
// it can only come from a broken generator or a zeroed record.
func (r *WrappedRecord) Validate() error {
	if len(r.Ciphertext) != WrappedSize {
		return fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidCiphertextSize,
			WrappedSize,
			len(r.Ciphertext),
		)
	}
	return ValidateNonce(r.Nonce)
}

// EncodeCiphertext returns the stored form of the ciphertext: version byte then ciphertext.
func (r *WrappedRecord) EncodeCiphertext() []byte {
	out := make([]byte, 0, 1+len(r.Ciphertext))
	out = append(out, CurrentRecordVersion)
	return append(out, r.Ciphertext...)
}

// EncodeNonce returns the stored form of the nonce (raw bytes).
func (r *WrappedRecord) EncodeNonce() []byte {
	return bytes.Clone(r.Nonce)
}

// ValidateNonce checks that nonce is 12 bytes and not all zero.
func ValidateNonce(nonce []byte) error {
	if len(nonce) != NonceSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidNonceSize, NonceSize, len(nonce))
	}
	if IsZero(nonce) {
		return fmt.Errorf("%w: all-zero nonce", ErrInvalidNonceSize)
	}
	return nil
}

// DecodeWrappedRecord parses the two stored values of a record.
//
// Accepted ciphertext layouts:
//   - 65 bytes starting with 0x01 (current)
//   - 64 raw bytes (legacy, no prefix)
//   - base64 text of 64 bytes (legacy mobile layout)
//
// Accepted nonce layouts are 12 raw bytes or base64 text of 12 bytes. Every failure
// wraps ErrCorruptRecord. A full-length ciphertext with an unknown prefix also wraps
// ErrUnwrapFailed, the same as a flipped byte anywhere else in the stored value.
func DecodeWrappedRecord(ciphertextBlob, nonceBlob []byte) (*WrappedRecord, error) {
	version, ciphertext, err := decodeCiphertext(ciphertextBlob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	nonce, err := decodeFixed(nonceBlob, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, ErrInvalidNonceSize)
	}

	r := &WrappedRecord{Version: version, Ciphertext: ciphertext, Nonce: nonce}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return r, nil
}

func decodeCiphertext(blob []byte) (uint8, []byte, error) {
	switch {
	case len(blob) == WrappedSize+1:
		if blob[0] != RecordVersion1 {
			return 0, nil, fmt.Errorf("%w: %w: %d", ErrUnwrapFailed, ErrUnsupportedRecordVersion, blob[0])
		}
		return RecordVersion1, bytes.Clone(blob[1:]), nil
	case len(blob) == WrappedSize:
		return RecordVersionLegacy, bytes.Clone(blob), nil
	}

	ciphertext, err := decodeFixed(blob, WrappedSize)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: got %d bytes", ErrInvalidCiphertextSize, len(blob))
	}
	return RecordVersionLegacy, ciphertext, nil
}

// decodeFixed returns blob when it is already size bytes long, or its base64 decoding
// when that decodes to exactly size bytes.
func decodeFixed(blob []byte, size int) ([]byte, error) {
	if len(blob) == size {
		return bytes.Clone(blob), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(blob)))
	if err != nil {
		return nil, err
	}
	if len(decoded) != size {
		return nil, fmt.Errorf("decoded %d bytes, want %d", len(decoded), size)
	}
	return decoded, nil
}
