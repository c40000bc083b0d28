package driven

import (
	"context"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// TokenStore persists the deployment's single token record.
// Exactly one record exists; Put is an idempotent overwrite.
type TokenStore interface {
	// Get retrieves the stored record.
	// Returns domain.ErrMissingCredential when nothing has been stored.
	Get(ctx context.Context) (*domain.TokenRecord, error)

	// Put stores the record, replacing any previous one.
	Put(ctx context.Context, record domain.TokenRecord) error
}
