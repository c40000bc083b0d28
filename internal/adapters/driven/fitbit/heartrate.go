package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

// The provider allows 150 requests per hour per user. The limiter sits
// well inside that so other tooling sharing the quota is not starved.
func newRateLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(30*time.Second), 5)
}

// Ensure APIClient implements the interface.
var _ driven.HeartRateFetcher = (*APIClient)(nil)

// APIError is a non-2xx provider response. It carries everything the
// operator needs to diagnose the rejection, since a failed fetch
// usually means an authorization or quota problem rather than a
// transient fault.
type APIError struct {
	StatusCode int
	Header     http.Header
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status=%d headers=%v body=%s",
		e.StatusCode, e.Header, e.Body)
}

// APIClient fetches intraday heart-rate data. Bearer tokens are
// injected by the transport via the token manager, so callers never
// handle credentials directly.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIClient creates an API client against the production endpoint.
func NewAPIClient(tokens driving.TokenManager) *APIClient {
	return NewAPIClientWithBaseURL(tokens, DefaultAPIBaseURL)
}

// NewAPIClientWithBaseURL creates an API client against a specific base
// URL. Used by tests.
func NewAPIClientWithBaseURL(tokens driving.TokenManager, baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(context.Background(), NewTokenSource(context.Background(), tokens)),
		limiter:    newRateLimiter(),
	}
}

// intradayResponse is the provider's dataset envelope. Only the
// intraday series matters here; the daily summary alongside it is
// ignored.
type intradayResponse struct {
	Intraday struct {
		Dataset []struct {
			Time  string `json:"time"`
			Value int    `json:"value"`
		} `json:"dataset"`
	} `json:"activities-heart-intraday"`
}

// FetchHeartRate retrieves the intraday series for the window. The
// provider addresses data by date plus time-of-day, so the window is
// split into those parts and sample timestamps are rebuilt against the
// window's end date afterwards.
func (c *APIClient) FetchHeartRate(ctx context.Context, window domain.FetchWindow, detail domain.DetailLevel) (*domain.HeartRateSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/1/user/-/activities/heart/date/%s/%s/%s/time/%s/%s.json",
		c.baseURL,
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"),
		detail,
		window.Start.Format("15:04"),
		window.End.Format("15:04"),
	)
	logger.Debug("fetching %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("heart rate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       string(body),
		}
	}

	var decoded intradayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode heart rate response: %w", err)
	}

	series := &domain.HeartRateSeries{}
	for _, entry := range decoded.Intraday.Dataset {
		ts, err := joinSampleTime(window.End, entry.Time)
		if err != nil {
			return nil, fmt.Errorf("parse sample time %q: %w", entry.Time, err)
		}
		series.Samples = append(series.Samples, domain.HeartRateSample{
			Time:  ts,
			Value: entry.Value,
		})
	}
	return series, nil
}

// joinSampleTime rebuilds a full timestamp from the provider's bare
// time-of-day. Samples belong to the window's end date except when the
// window straddles midnight, in which case a time-of-day later than the
// window end fell on the previous day.
func joinSampleTime(windowEnd time.Time, timeOfDay string) (time.Time, error) {
	tod, err := time.Parse("15:04:05", timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	ts := time.Date(
		windowEnd.Year(), windowEnd.Month(), windowEnd.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0,
		windowEnd.Location(),
	)
	if ts.After(windowEnd) {
		ts = ts.AddDate(0, 0, -1)
	}
	return ts, nil
}
