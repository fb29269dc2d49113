package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicesecret/internal/app"
	"github.com/allisson/devicesecret/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSecretCommands()...)
	cmds = append(cmds, getSystemCommands(version)...)
	return cmds
}

// withContainer loads and validates the configuration, then runs fn with a container
// that is shut down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	container := app.NewContainer(cfg)
	defer closeContainer(ctx, container)

	return fn(container)
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(ctx context.Context, container *app.Container) {
	if err := container.Shutdown(ctx); err != nil {
		container.Logger().Error("failed to shutdown container", slog.Any("error", err))
	}
}
