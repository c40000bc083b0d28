package driven

import (
	"context"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// CursorStore persists the poll cursor across restarts.
type CursorStore interface {
	// GetCursor retrieves the cursor. A deployment that has never polled
	// returns a zero-valued cursor, not an error.
	GetCursor(ctx context.Context) (domain.PollCursor, error)

	// SaveCursor stores the cursor, replacing the previous one.
	SaveCursor(ctx context.Context, cursor domain.PollCursor) error
}

// ResultStore records poll run history for diagnostics.
type ResultStore interface {
	// RecordResult logs one cycle's outcome.
	RecordResult(ctx context.Context, result *domain.PollResult) error

	// ListResults returns recent results, most recent first.
	ListResults(ctx context.Context, limit int) ([]domain.PollResult, error)

	// PruneResults removes old results beyond the retention limit,
	// keeping the most recent 'keep'.
	PruneResults(ctx context.Context, keep int) error
}
