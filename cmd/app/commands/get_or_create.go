package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	deviceUseCase "github.com/allisson/devicesecret/internal/devicesecret/usecase"
)

// getOrCreateOutput is the JSON shape of the get-or-create command.
type getOrCreateOutput struct {
	Installation string `json:"installation"`
	Fingerprint  string `json:"fingerprint"`
	Key          string `json:"key,omitempty"`
	IV           string `json:"iv,omitempty"`
}

// RunGetOrCreate returns the application secret of the installation, provisioning the
// master key and the wrapped record on first use.
//
// Only a SHA-256 fingerprint of the secret is printed unless reveal is set, in which
// case the 32-byte key and 16-byte IV are printed as hex. The secret is zeroed before
// returning.
func RunGetOrCreate(
	ctx context.Context,
	secretUseCase deviceUseCase.SecretUseCase,
	logger *slog.Logger,
	writer io.Writer,
	installation deviceDomain.Installation,
	reveal bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	secret, err := secretUseCase.GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("failed to get or create secret: %w", err)
	}
	defer secret.Zero()

	key, iv, err := secret.Split()
	if err != nil {
		return err
	}
	defer deviceDomain.Zero(key)
	defer deviceDomain.Zero(iv)

	sum := sha256.Sum256(secret)
	output := getOrCreateOutput{
		Installation: installation.String(),
		Fingerprint:  hex.EncodeToString(sum[:]),
	}
	if reveal {
		output.Key = hex.EncodeToString(key)
		output.IV = hex.EncodeToString(iv)
		logger.Warn("secret revealed on standard output", slog.String("installation", installation.String()))
	}

	if format == formatJSON {
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "Installation: %s\n", output.Installation)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", output.Fingerprint)
	if reveal {
		_, _ = fmt.Fprintf(writer, "Key: %s\n", output.Key)
		_, _ = fmt.Fprintf(writer, "IV: %s\n", output.IV)
	}
	return nil
}
