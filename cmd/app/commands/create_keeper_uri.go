package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	deviceService "github.com/allisson/devicesecret/internal/devicesecret/service"
)

// RunCreateKeeperURI generates a local base64key:// keeper URI for the "keeper" trust
// anchor and checks that it opens before printing it.
//
// Security: the URI is the sealing key itself. Use it for local development only and
// prefer awskms://, gcpkms://, azurekeyvault:// or hashivault:// in production.
func RunCreateKeeperURI(ctx context.Context, kmsService deviceService.KMSService, random io.Reader, writer io.Writer) error {
	key := make([]byte, deviceDomain.SecretKeySize)
	if _, err := io.ReadFull(random, key); err != nil {
		return fmt.Errorf("failed to generate keeper key: %w", err)
	}
	uri := "base64key://" + base64.URLEncoding.EncodeToString(key)
	deviceDomain.Zero(key)

	keeper, err := kmsService.OpenKeeper(ctx, uri)
	if err != nil {
		return err
	}
	if err := keeper.Close(); err != nil {
		return fmt.Errorf("failed to close keeper: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Keeper configuration (local development only)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, `TRUST_ANCHOR="keeper"`)
	_, _ = fmt.Fprintf(writer, "KEEPER_URI=\"%s\"\n", uri)
	return nil
}
