package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
)

// tokenStore implements driven.TokenStore over a single-row table: a
// deployment bridges exactly one account.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Get retrieves the stored token record.
func (s *tokenStore) Get(ctx context.Context) (*domain.TokenRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT client_id, access_token, refresh_token, expires_at, scope, token_type, user_id
		FROM token_record WHERE id = 1
	`)

	var record domain.TokenRecord
	var userID sql.NullString
	if err := row.Scan(&record.ClientID, &record.AccessToken, &record.RefreshToken,
		&record.ExpiresAt, &record.Scope, &record.TokenType, &userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrMissingCredential
		}
		return nil, fmt.Errorf("scanning token record: %w", err)
	}

	if userID.Valid {
		record.UserID = &userID.String
	}
	return &record, nil
}

// Put stores the record, replacing any previous one.
func (s *tokenStore) Put(ctx context.Context, record domain.TokenRecord) error {
	var userID interface{}
	if record.UserID != nil {
		userID = *record.UserID
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO token_record (id, client_id, access_token, refresh_token, expires_at, scope, token_type, user_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			scope = excluded.scope,
			token_type = excluded.token_type,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at
	`, record.ClientID, record.AccessToken, record.RefreshToken,
		record.ExpiresAt, record.Scope, record.TokenType, userID)

	if err != nil {
		return fmt.Errorf("saving token record: %w", err)
	}
	return nil
}
