package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize <client_id>",
	Short: "Run the one-time browser authorization flow",
	Long: `Runs the OAuth2 authorization flow for the given Fitbit client ID.

A local TLS callback server is started on https://localhost:5000. Two
browser windows open in sequence: first to accept the server's
self-signed certificate, then to approve the application with the
provider. On success the credential is stored and printed.

The flow waits indefinitely for the certificate step (it needs you) and
up to five minutes for the provider redirect.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorize,
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	if services.Authorizer == nil {
		return errors.New("authorizer not configured")
	}

	record, err := services.Authorizer.Authorize(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println("Authorization complete. Stored credential:")
	cmd.Println(string(encoded))
	return nil
}
