package domain

// Sizes of the protected secret and of its wrapped form, in bytes.
const (
	// SecretKeySize is the length of the key half of the application secret.
	SecretKeySize = 32

	// SecretIVSize is the length of the initialization value half of the application secret.
	SecretIVSize = 16

	// SecretSize is the length of the whole application secret (key ‖ IV).
	SecretSize = SecretKeySize + SecretIVSize

	// MasterKeySize is the length of the AES-256 master key held by a trust anchor.
	MasterKeySize = 32

	// NonceSize is the AES-GCM nonce length (96 bits).
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag length (128 bits).
	TagSize = 16

	// WrappedSize is the length of a wrapped secret: ciphertext plus appended tag.
	WrappedSize = SecretSize + TagSize
)

// Names used by existing mobile installations. Keeping them lets a migrated device
// resolve to the same master key and record.
const (
	// DefaultAlias is the master key alias used when none is configured.
	DefaultAlias = "DevianLocalDEK"

	// DefaultNamespace is the key-value namespace holding the wrapped record.
	DefaultNamespace = "DevianCrypto"

	// WrappedDEKKey is the store key holding the (version-prefixed) ciphertext.
	WrappedDEKKey = "wrappedDEK"

	// WrappedIVKey is the store key holding the nonce.
	WrappedIVKey = "wrappedIV"
)

// Algorithm identifies the wrapping cipher. Only AES-256-GCM is supported.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM with a 96-bit nonce and a 128-bit tag.
	AESGCM Algorithm = "aes-gcm"
)

// KeySpec describes the master key a trust anchor is asked to create.
type KeySpec struct {
	SizeBits      int
	Algorithm     Algorithm
	NonExportable bool
}

// DefaultKeySpec is the only key specification accepted by trust anchors.
var DefaultKeySpec = KeySpec{
	SizeBits:      MasterKeySize * 8,
	Algorithm:     AESGCM,
	NonExportable: true,
}

// Validate rejects any key specification other than a non-exportable AES-256-GCM key.
func (k KeySpec) Validate() error {
	if k != DefaultKeySpec {
		return ErrInvalidKeySpec
	}
	return nil
}
