package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicesecret/cmd/app/commands"
	"github.com/allisson/devicesecret/internal/app"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "get-or-create",
			Usage: "Return the device secret, provisioning the master key and the secret on first use",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "reveal",
					Value: false,
					Usage: "Print the key and IV as hex instead of only the fingerprint",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					secretUseCase, err := container.SecretUseCase()
					if err != nil {
						return err
					}

					return commands.RunGetOrCreate(
						ctx,
						secretUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						container.Installation(),
						cmd.Bool("reveal"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "status",
			Usage: "Show whether the master key and the wrapped secret exist",
			Flags: []cli.Flag{
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					secretUseCase, err := container.SecretUseCase()
					if err != nil {
						return err
					}

					return commands.RunStatus(
						ctx,
						secretUseCase,
						commands.DefaultIO().Writer,
						container.Installation(),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
