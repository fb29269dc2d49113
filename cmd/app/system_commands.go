package main

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicesecret/cmd/app/commands"
	"github.com/allisson/devicesecret/internal/app"
	"github.com/allisson/devicesecret/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Run database migrations for the postgres and mysql store drivers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if cfg.StoreDriver != config.StoreDriverPostgres && cfg.StoreDriver != config.StoreDriverMySQL {
					return fmt.Errorf("store driver %q has no migrations", cfg.StoreDriver)
				}

				// Create container just for logger
				container := app.NewContainer(cfg)
				defer closeContainer(ctx, container)

				return commands.RunMigrations(container.Logger(), cfg.StoreDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "create-keeper-uri",
			Usage: "Generate a local base64key:// keeper URI for development",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer closeContainer(ctx, container)

				return commands.RunCreateKeeperURI(ctx, container.KMSService(), rand.Reader, commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "version",
			Usage: "Print the application version",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				_, err := fmt.Fprintln(commands.DefaultIO().Writer, version)
				return err
			},
		},
	}
}
