// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// Build information, set with -ldflags at release time.
var (
	version = "dev"
)

func main() {
	cmd := &cli.Command{
		Name:     "devicesecret",
		Usage:    "Device-bound application secret protected by a non-exportable master key",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
