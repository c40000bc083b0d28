package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
)

// cursorStore implements driven.CursorStore over a single-row table.
type cursorStore struct {
	store *Store
}

var _ driven.CursorStore = (*cursorStore)(nil)

// GetCursor retrieves the poll cursor. A deployment that has never
// polled gets a zero-valued cursor, not an error.
func (s *cursorStore) GetCursor(ctx context.Context) (domain.PollCursor, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT last_fetch_end, last_seen FROM poll_cursor WHERE id = 1
	`)

	var lastFetchEnd, lastSeen sql.NullString
	if err := row.Scan(&lastFetchEnd, &lastSeen); err != nil {
		if err == sql.ErrNoRows {
			return domain.PollCursor{}, nil
		}
		return domain.PollCursor{}, fmt.Errorf("scanning poll cursor: %w", err)
	}

	return domain.PollCursor{
		LastFetchEnd: parseNullableTime(lastFetchEnd),
		LastSeen:     parseNullableTime(lastSeen),
	}, nil
}

// SaveCursor stores the cursor, replacing the previous one.
func (s *cursorStore) SaveCursor(ctx context.Context, cursor domain.PollCursor) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO poll_cursor (id, last_fetch_end, last_seen)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_fetch_end = excluded.last_fetch_end,
			last_seen = excluded.last_seen
	`, formatNullableTime(cursor.LastFetchEnd), formatNullableTime(cursor.LastSeen))

	if err != nil {
		return fmt.Errorf("saving poll cursor: %w", err)
	}
	return nil
}

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// RecordResult logs one cycle's outcome.
func (s *resultStore) RecordResult(ctx context.Context, result *domain.PollResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO poll_results (id, started_at, ended_at, published, sample_time, sample_value, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID,
		result.StartedAt.Format(time.RFC3339),
		result.EndedAt.Format(time.RFC3339),
		boolToInt(result.Published),
		formatNullableTime(result.SampleTime),
		result.SampleValue,
		nullString(result.Error))

	if err != nil {
		return fmt.Errorf("recording poll result: %w", err)
	}
	return nil
}

// ListResults returns recent results, most recent first.
func (s *resultStore) ListResults(ctx context.Context, limit int) ([]domain.PollResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, published, sample_time, sample_value, error
		FROM poll_results
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying poll results: %w", err)
	}
	defer rows.Close()

	var results []domain.PollResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var result domain.PollResult
		var startedAt, endedAt string
		var sampleTime, errMsg sql.NullString
		var published int

		if err := rows.Scan(&result.ID, &startedAt, &endedAt,
			&published, &sampleTime, &result.SampleValue, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning poll result: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			result.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, endedAt); err == nil {
			result.EndedAt = t
		}
		result.Published = published == 1
		result.SampleTime = parseNullableTime(sampleTime)
		if errMsg.Valid {
			result.Error = errMsg.String
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating poll results: %w", err)
	}

	return results, nil
}

// PruneResults removes old results beyond the retention limit, keeping
// the most recent 'keep'.
func (s *resultStore) PruneResults(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM poll_results
		WHERE id NOT IN (
			SELECT id FROM poll_results ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning poll results: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// formatNullableTime formats a time to RFC3339 string, or returns nil for zero time.
func formatNullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
