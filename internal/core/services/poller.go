package services

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

const (
	// pollInterval is the fixed cadence between cycle starts.
	pollInterval = 3 * time.Minute

	// fetchWindowSpan is how far back each fetch window reaches. Wide
	// enough to survive long outages without losing the latest sample,
	// narrow enough to stay within one provider-local calendar day in
	// most timezones.
	fetchWindowSpan = 23 * time.Hour

	// resultHistoryKeep bounds the retained run history.
	resultHistoryKeep = 100
)

// Ensure PollService implements the interface.
var _ driving.Poller = (*PollService)(nil)

// PollService is the steady-state loop: fetch the latest heart-rate
// sample, publish it when strictly newer than the last observed one,
// advance the cursor. Publish failures are retried then swallowed so a
// flaky broker cannot kill the loop; credential and fetch failures are
// fatal because every subsequent cycle would fail the same way.
type PollService struct {
	tokens  driving.TokenManager
	fetcher driven.HeartRateFetcher
	pub     driven.Publisher
	cursors driven.CursorStore
	results driven.ResultStore

	topic  string
	detail domain.DetailLevel
	retry  domain.RetryPolicy

	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPollService creates the poll loop. topic is the broker topic
// (without prefix) the latest sample is published to.
func NewPollService(
	tokens driving.TokenManager,
	fetcher driven.HeartRateFetcher,
	pub driven.Publisher,
	cursors driven.CursorStore,
	results driven.ResultStore,
	topic string,
	detail domain.DetailLevel,
) *PollService {
	return &PollService{
		tokens:   tokens,
		fetcher:  fetcher,
		pub:      pub,
		cursors:  cursors,
		results:  results,
		topic:    topic,
		detail:   detail,
		retry:    domain.DefaultPublishRetry,
		interval: pollInterval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Run executes cycles on a fixed cadence, the first one immediately.
// It returns on context cancellation or on the first fatal error.
func (s *PollService) Run(ctx context.Context) error {
	if err := s.cycle(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.cycle(ctx); err != nil {
				return err
			}
		}
	}
}

// cycle runs one fetch-dedupe-publish pass. A non-nil return is fatal
// for the loop; publish exhaustion is recorded and swallowed.
func (s *PollService) cycle(ctx context.Context) error {
	started := s.now()
	result := &domain.PollResult{
		ID:        uuid.New().String(),
		StartedAt: started,
	}

	// Surface credential problems before touching the provider: a
	// missing or unrefreshable credential needs operator action, not
	// another cycle.
	if _, err := s.tokens.ValidAccessToken(ctx); err != nil {
		return err
	}

	cursor, err := s.cursors.GetCursor(ctx)
	if err != nil {
		return err
	}

	window := domain.FetchWindow{Start: started.Add(-fetchWindowSpan), End: started}
	series, err := s.fetcher.FetchHeartRate(ctx, window, s.detail)
	if err != nil {
		return err
	}

	latest, ok := series.Latest()
	if !ok {
		logger.Info("no intraday data in window, nothing to publish")
		return s.finish(ctx, cursor, window, result)
	}
	result.SampleTime = latest.Time
	result.SampleValue = latest.Value

	if !cursor.ShouldPublish(latest.Time) {
		logger.Debug("latest sample %s not newer than %s, skipping",
			latest.Time.Format(time.RFC3339), cursor.LastSeen.Format(time.RFC3339))
		return s.finish(ctx, cursor, window, result)
	}

	// Advance the marker before attempting delivery. A publish that
	// reached the broker but lost its ack must not be repeated: each
	// observed timestamp gets at most one publish cycle.
	cursor.LastSeen = latest.Time

	if err := s.publishWithRetry(ctx, latest); err != nil {
		// Swallowed: the sample is dropped and the loop carries on.
		logger.Error("publish failed after %d attempts: %v", s.retry.MaxAttempts, err)
		result.Error = err.Error()
		return s.finish(ctx, cursor, window, result)
	}

	logger.Info("published heart rate %d at %s", latest.Value, latest.Time.Format(time.RFC3339))
	result.Published = true
	return s.finish(ctx, cursor, window, result)
}

// publishWithRetry attempts delivery up to the policy's limit with a
// fixed delay between attempts. Context cancellation aborts the wait.
func (s *PollService) publishWithRetry(ctx context.Context, sample domain.HeartRateSample) error {
	payload := strconv.Itoa(sample.Value)
	attributes := map[string]any{
		"last_updated": sample.Time.Format(time.RFC3339),
	}

	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		lastErr = s.pub.Publish(ctx, s.topic, payload, attributes)
		if lastErr == nil {
			return nil
		}
		logger.Warn("publish attempt %d/%d failed: %v", attempt, s.retry.MaxAttempts, lastErr)
		if attempt < s.retry.MaxAttempts {
			if err := s.sleep(ctx, s.retry.Delay); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// finish persists the cursor and records the cycle outcome. The fetch
// cursor always advances; the dedupe marker was moved by the caller
// whenever a latest sample existed, publish outcome notwithstanding.
func (s *PollService) finish(ctx context.Context, cursor domain.PollCursor, window domain.FetchWindow, result *domain.PollResult) error {
	cursor.LastFetchEnd = window.End
	if err := s.cursors.SaveCursor(ctx, cursor); err != nil {
		return err
	}

	result.EndedAt = s.now()
	if err := s.results.RecordResult(ctx, result); err != nil {
		logger.Warn("recording poll result: %v", err)
	}
	if err := s.results.PruneResults(ctx, resultHistoryKeep); err != nil {
		logger.Warn("pruning poll results: %v", err)
	}
	return nil
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
