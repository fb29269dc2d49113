package commands

import (
	"context"
	"fmt"
	"io"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	deviceUseCase "github.com/allisson/devicesecret/internal/devicesecret/usecase"
)

// RunStatus prints the lifecycle state of the installation without creating anything.
func RunStatus(
	ctx context.Context,
	secretUseCase deviceUseCase.SecretUseCase,
	writer io.Writer,
	installation deviceDomain.Installation,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	state, err := secretUseCase.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if format == formatJSON {
		return writeJSON(writer, map[string]string{
			"installation": installation.String(),
			"state":        state.String(),
		})
	}

	_, _ = fmt.Fprintf(writer, "Installation: %s\n", installation.String())
	_, _ = fmt.Fprintf(writer, "State: %s\n", state.String())
	return nil
}
