package driving

import (
	"context"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// Authorizer runs the one-shot, human-in-the-loop authorization flow:
// PKCE generation, the two browser hops, the bounded wait for the
// callback, and the code exchange. On success the completed token record
// has been persisted and is returned for display.
type Authorizer interface {
	Authorize(ctx context.Context, clientID string) (*domain.TokenRecord, error)
}

// TokenManager owns the persisted token record and its lifecycle.
type TokenManager interface {
	// Get retrieves the stored record.
	// Returns domain.ErrMissingCredential when nothing has been stored.
	Get(ctx context.Context) (*domain.TokenRecord, error)

	// Put stores the record, replacing any previous one.
	Put(ctx context.Context, record domain.TokenRecord) error

	// ValidAccessToken returns an access token that is valid at call
	// time, refreshing and persisting the record first when it has
	// expired. Refresh rejection surfaces as domain.ErrRefreshFailed.
	ValidAccessToken(ctx context.Context) (string, error)
}

// Poller is the steady-state poll-dedupe-publish loop.
type Poller interface {
	// Run blocks, executing cycles on a fixed cadence until ctx is
	// cancelled or a fatal error (credential or fetch failure) occurs.
	Run(ctx context.Context) error
}
