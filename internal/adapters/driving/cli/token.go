package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect or import the stored credential",
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored credential with secrets truncated",
	RunE:  runTokenShow,
}

var tokenImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a credential from JSON on stdin",
	Long: `Reads a token record as JSON from stdin and stores it, replacing any
existing credential. Useful for migrating a credential issued on
another machine without re-running the browser flow.

Expected shape:
  {"client_id": "...", "access_token": "...", "refresh_token": "...",
   "expires_at": 1700000000, "scope": "...", "token_type": "Bearer"}`,
	RunE: runTokenImport,
}

func init() {
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenImportCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenShow(cmd *cobra.Command, _ []string) error {
	if services.Tokens == nil {
		return errors.New("token manager not configured")
	}

	record, err := services.Tokens.Get(context.Background())
	if err != nil {
		return err
	}

	cmd.Printf("client_id:     %s\n", record.ClientID)
	cmd.Printf("access_token:  %s\n", truncateSecret(record.AccessToken))
	cmd.Printf("refresh_token: %s\n", truncateSecret(record.RefreshToken))
	cmd.Printf("expires_at:    %d\n", record.ExpiresAt)
	cmd.Printf("scope:         %s\n", record.Scope)
	cmd.Printf("token_type:    %s\n", record.TokenType)
	if record.UserID != nil {
		cmd.Printf("user_id:       %s\n", *record.UserID)
	}
	return nil
}

func runTokenImport(cmd *cobra.Command, _ []string) error {
	if services.Tokens == nil {
		return errors.New("token manager not configured")
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	var record domain.TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("parsing token record: %w", err)
	}

	if err := services.Tokens.Put(context.Background(), record); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return errors.New("token record must include client_id and access_token")
		}
		return err
	}

	cmd.Println("Credential imported.")
	return nil
}

// truncateSecret keeps enough of a secret to recognise it without
// exposing it in terminal history.
func truncateSecret(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:8] + "..."
}
