package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
)

const (
	vaultKeyType          = "aes256-gcm96"
	vaultCiphertextPrefix = "vault:v1:"
)

// VaultConfig holds the settings used to reach a Vault transit engine.
type VaultConfig struct {
	Address    string
	Token      string
	MountPath  string
	Timeout    time.Duration
	MaxRetries int
}

// NewVaultClient creates a Vault API client from cfg.
func NewVaultClient(cfg VaultConfig) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = cfg.Address
	config.MaxRetries = cfg.MaxRetries
	if cfg.Timeout > 0 {
		config.Timeout = cfg.Timeout
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	return client, nil
}

// VaultTransitTrustAnchor keeps master keys inside a Vault transit engine.
//
// Keys are created as aes256-gcm96 with exportable and plaintext backup disabled, so
// key material never leaves Vault. The transit encrypt endpoint creates missing keys on
// the fly; the Vault policy for this client should deny the "create" capability on
// transit/encrypt paths so CreateKey stays the only way to materialize a key.
type VaultTransitTrustAnchor struct {
	client    *api.Client
	mountPath string
}

// NewVaultTransitTrustAnchor creates an anchor backed by the transit engine mounted at mountPath.
func NewVaultTransitTrustAnchor(client *api.Client, mountPath string) *VaultTransitTrustAnchor {
	mountPath = strings.Trim(mountPath, "/")
	if mountPath == "" {
		mountPath = "transit"
	}
	return &VaultTransitTrustAnchor{client: client, mountPath: mountPath}
}

// HasKey reports whether a transit key exists for alias. An existing key that is
// exportable or of the wrong type is rejected with ErrInvalidKeySpec.
func (v *VaultTransitTrustAnchor) HasKey(ctx context.Context, alias string) (bool, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path("keys", alias))
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to read transit key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return false, nil
	}

	if keyType, _ := secret.Data["type"].(string); keyType != vaultKeyType {
		return false, fmt.Errorf("%w: transit key %q has type %q", deviceDomain.ErrInvalidKeySpec, alias, keyType)
	}
	if exportable, _ := secret.Data["exportable"].(bool); exportable {
		return false, fmt.Errorf("%w: transit key %q is exportable", deviceDomain.ErrInvalidKeySpec, alias)
	}
	return true, nil
}

// CreateKey creates a non-exportable transit key for alias unless one already exists.
func (v *VaultTransitTrustAnchor) CreateKey(ctx context.Context, alias string, spec deviceDomain.KeySpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	exists, err := v.HasKey(ctx, alias)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = v.client.Logical().WriteWithContext(ctx, v.path("keys", alias), map[string]interface{}{
		"type":                   vaultKeyType,
		"exportable":             false,
		"allow_plaintext_backup": false,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create transit key: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	return nil
}

// Encrypt seals plaintext with the transit key and splits the Vault ciphertext into
// the nonce and the ciphertext with its trailing tag.
func (v *VaultTransitTrustAnchor) Encrypt(
	ctx context.Context,
	alias string,
	plaintext []byte,
) (ciphertext, nonce []byte, err error) {
	secret, err := v.client.Logical().WriteWithContext(ctx, v.path("encrypt", alias), map[string]interface{}{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: transit encrypt failed: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, nil, fmt.Errorf("%w: empty transit encrypt response", deviceDomain.ErrWrapFailed)
	}

	encoded, _ := secret.Data["ciphertext"].(string)
	if !strings.HasPrefix(encoded, vaultCiphertextPrefix) {
		return nil, nil, fmt.Errorf("%w: unexpected transit ciphertext version", deviceDomain.ErrWrapFailed)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, vaultCiphertextPrefix))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed transit ciphertext: %v", deviceDomain.ErrWrapFailed, err)
	}
	if len(raw) < deviceDomain.NonceSize+deviceDomain.TagSize {
		return nil, nil, fmt.Errorf("%w: transit ciphertext too short", deviceDomain.ErrWrapFailed)
	}

	return raw[deviceDomain.NonceSize:], raw[:deviceDomain.NonceSize], nil
}

// Decrypt reassembles the Vault ciphertext and opens it with the transit key.
// Authentication failures reported by Vault map to ErrUnwrapFailed.
func (v *VaultTransitTrustAnchor) Decrypt(ctx context.Context, alias string, ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != deviceDomain.NonceSize {
		return nil, deviceDomain.ErrUnwrapFailed
	}

	raw := make([]byte, 0, len(nonce)+len(ciphertext))
	raw = append(raw, nonce...)
	raw = append(raw, ciphertext...)

	secret, err := v.client.Logical().WriteWithContext(ctx, v.path("decrypt", alias), map[string]interface{}{
		"ciphertext": vaultCiphertextPrefix + base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		if statusCode(err) == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %v", deviceDomain.ErrUnwrapFailed, err)
		}
		return nil, fmt.Errorf("%w: transit decrypt failed: %v", deviceDomain.ErrKeystoreUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, deviceDomain.ErrUnwrapFailed
	}

	encoded, _ := secret.Data["plaintext"].(string)
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, deviceDomain.ErrUnwrapFailed
	}
	return plaintext, nil
}

func (v *VaultTransitTrustAnchor) path(op, alias string) string {
	return fmt.Sprintf("%s/%s/%s", v.mountPath, op, alias)
}

func statusCode(err error) int {
	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}
