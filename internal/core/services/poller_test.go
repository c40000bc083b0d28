package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

type pollFixture struct {
	svc     *PollService
	tokens  *fakeTokenManager
	fetcher *fakeFetcher
	pub     *fakePublisher
	cursors *fakeCursorStore
	results *fakeResultStore
	slept   []time.Duration
}

func newPollFixture(series *domain.HeartRateSeries) *pollFixture {
	f := &pollFixture{
		tokens:  &fakeTokenManager{token: "access"},
		pub:     &fakePublisher{err: assert.AnError},
		cursors: &fakeCursorStore{},
		results: &fakeResultStore{},
	}
	f.fetcher = &fakeFetcher{
		fn: func(_ domain.FetchWindow, _ domain.DetailLevel) (*domain.HeartRateSeries, error) {
			return series, nil
		},
	}
	f.svc = NewPollService(f.tokens, f.fetcher, f.pub, f.cursors, f.results,
		"pulse-heart-rate", domain.DetailOneMinute)
	f.svc.now = func() time.Time { return time.Unix(100000, 0) }
	f.svc.sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	return f
}

func TestPollServiceCycle(t *testing.T) {
	sampleAt := func(sec int64, value int) domain.HeartRateSample {
		return domain.HeartRateSample{Time: time.Unix(sec, 0), Value: value}
	}

	t.Run("publishes latest sample and advances both cursors", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99000, 61),
			sampleAt(99900, 72),
		}})
		f.pub.failures = 0

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		require.Len(t, f.pub.calls, 1)
		assert.Equal(t, "pulse-heart-rate", f.pub.calls[0].topic)
		assert.Equal(t, "72", f.pub.calls[0].payload, "latest sample wins")
		assert.Equal(t, time.Unix(99900, 0).Format(time.RFC3339), f.pub.calls[0].attributes["last_updated"])

		assert.Equal(t, time.Unix(99900, 0), f.cursors.cursor.LastSeen)
		assert.Equal(t, time.Unix(100000, 0), f.cursors.cursor.LastFetchEnd)

		require.Len(t, f.results.results, 1)
		assert.True(t, f.results.results[0].Published)
		assert.NotEmpty(t, f.results.results[0].ID)
		assert.Equal(t, 1, f.results.pruneCalls)
	})

	t.Run("fetch window reaches back 23 hours from now", func(t *testing.T) {
		var gotWindow domain.FetchWindow
		f := newPollFixture(nil)
		f.fetcher.fn = func(window domain.FetchWindow, detail domain.DetailLevel) (*domain.HeartRateSeries, error) {
			gotWindow = window
			assert.Equal(t, domain.DetailOneMinute, detail)
			return &domain.HeartRateSeries{}, nil
		}

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		assert.Equal(t, time.Unix(100000, 0), gotWindow.End)
		assert.Equal(t, time.Unix(100000, 0).Add(-23*time.Hour), gotWindow.Start)
	})

	t.Run("skips sample not newer than the dedupe marker", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99900, 72),
		}})
		f.cursors.cursor = domain.PollCursor{LastSeen: time.Unix(99900, 0)}

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		assert.Empty(t, f.pub.calls, "equal timestamp must not republish")
		// Fetch cursor still advances; dedupe marker untouched.
		assert.Equal(t, time.Unix(100000, 0), f.cursors.cursor.LastFetchEnd)
		assert.Equal(t, time.Unix(99900, 0), f.cursors.cursor.LastSeen)
		require.Len(t, f.results.results, 1)
		assert.False(t, f.results.results[0].Published)
	})

	t.Run("publishes strictly newer sample after a skip", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99960, 75),
		}})
		f.cursors.cursor = domain.PollCursor{LastSeen: time.Unix(99900, 0)}
		f.pub.failures = 0

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		require.Len(t, f.pub.calls, 1)
		assert.Equal(t, time.Unix(99960, 0), f.cursors.cursor.LastSeen)
	})

	t.Run("empty series is a no-op that still advances the fetch cursor", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{})

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		assert.Empty(t, f.pub.calls)
		assert.Equal(t, time.Unix(100000, 0), f.cursors.cursor.LastFetchEnd)
		assert.True(t, f.cursors.cursor.LastSeen.IsZero())
	})

	t.Run("retries publish with fixed delay and succeeds", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99900, 72),
		}})
		f.pub.failures = 3

		err := f.svc.cycle(context.Background())

		require.NoError(t, err)
		assert.Len(t, f.pub.calls, 4, "three failures then one success")
		assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second}, f.slept)
		assert.Equal(t, time.Unix(99900, 0), f.cursors.cursor.LastSeen)
		assert.True(t, f.results.results[0].Published)
	})

	t.Run("publish exhaustion is swallowed and still advances the marker", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99900, 72),
		}})
		f.pub.failures = 10

		err := f.svc.cycle(context.Background())

		require.NoError(t, err, "exhaustion must not kill the loop")
		assert.Len(t, f.pub.calls, 10)
		assert.Len(t, f.slept, 9, "no delay after the final attempt")

		// Both cursors advance so the sample is not re-attempted; the
		// failure is on record.
		assert.Equal(t, time.Unix(99900, 0), f.cursors.cursor.LastSeen)
		assert.Equal(t, time.Unix(100000, 0), f.cursors.cursor.LastFetchEnd)
		require.Len(t, f.results.results, 1)
		assert.False(t, f.results.results[0].Published)
		assert.NotEmpty(t, f.results.results[0].Error)
	})

	t.Run("exhausted sample is not republished by the next cycle", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{Samples: []domain.HeartRateSample{
			sampleAt(99900, 72),
		}})
		f.pub.failures = 10

		require.NoError(t, f.svc.cycle(context.Background()))
		require.NoError(t, f.svc.cycle(context.Background()))

		assert.Len(t, f.pub.calls, 10,
			"at most one publish cycle per observed timestamp")
		require.Len(t, f.results.results, 2)
		assert.False(t, f.results.results[1].Published)
		assert.Empty(t, f.results.results[1].Error, "second cycle is a dedupe skip")
	})

	t.Run("credential failure is fatal", func(t *testing.T) {
		f := newPollFixture(nil)
		f.tokens.err = domain.ErrRefreshFailed

		err := f.svc.cycle(context.Background())

		assert.ErrorIs(t, err, domain.ErrRefreshFailed)
		assert.Zero(t, f.fetcher.calls, "no fetch without a valid token")
		assert.Empty(t, f.results.results)
	})

	t.Run("fetch failure is fatal and persists nothing", func(t *testing.T) {
		f := newPollFixture(nil)
		f.fetcher.fn = func(_ domain.FetchWindow, _ domain.DetailLevel) (*domain.HeartRateSeries, error) {
			return nil, assert.AnError
		}

		err := f.svc.cycle(context.Background())

		require.Error(t, err)
		assert.Empty(t, f.cursors.saves)
		assert.Empty(t, f.results.results)
	})
}

func TestPollServiceRun(t *testing.T) {
	t.Run("runs the first cycle immediately and stops on cancellation", func(t *testing.T) {
		f := newPollFixture(&domain.HeartRateSeries{})
		f.svc.interval = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := f.svc.Run(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, f.fetcher.calls, "first cycle runs before the ticker")
	})

	t.Run("fatal cycle error terminates the loop", func(t *testing.T) {
		f := newPollFixture(nil)
		f.tokens.err = domain.ErrMissingCredential

		err := f.svc.Run(context.Background())

		assert.ErrorIs(t, err, domain.ErrMissingCredential)
	})
}
