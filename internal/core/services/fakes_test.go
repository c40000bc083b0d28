package services

import (
	"context"
	"sync"
	"time"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// In-memory test doubles for the driven ports.

type fakeTokenStore struct {
	mu  sync.Mutex
	rec *domain.TokenRecord

	putCalls int
}

func (f *fakeTokenStore) Get(_ context.Context) (*domain.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return nil, domain.ErrMissingCredential
	}
	rec := *f.rec
	return &rec, nil
}

func (f *fakeTokenStore) Put(_ context.Context, record domain.TokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = &record
	f.putCalls++
	return nil
}

type fakeTokenEndpoint struct {
	exchangeFn func(clientID, code, redirectURI, verifier string) (*domain.TokenPayload, error)
	refreshFn  func(clientID, refreshToken string) (*domain.TokenPayload, error)

	exchangeCalls int
	refreshCalls  int
}

func (f *fakeTokenEndpoint) ExchangeCode(_ context.Context, clientID, code, redirectURI, verifier string) (*domain.TokenPayload, error) {
	f.exchangeCalls++
	return f.exchangeFn(clientID, code, redirectURI, verifier)
}

func (f *fakeTokenEndpoint) Refresh(_ context.Context, clientID, refreshToken string) (*domain.TokenPayload, error) {
	f.refreshCalls++
	return f.refreshFn(clientID, refreshToken)
}

type fakeListener struct {
	startErr   error
	certErr    error
	code       string
	codeErr    error
	started    bool
	stopped    bool
	certWaited bool
}

func (f *fakeListener) Start() error { f.started = true; return f.startErr }

func (f *fakeListener) WaitForCertAccept(_ context.Context) error {
	f.certWaited = true
	return f.certErr
}

func (f *fakeListener) WaitForCode(_ context.Context, _ time.Duration) (string, error) {
	return f.code, f.codeErr
}

func (f *fakeListener) RedirectURI() string { return "https://localhost:5000/callback" }
func (f *fakeListener) RootURL() string     { return "https://localhost:5000/" }
func (f *fakeListener) Stop() error         { f.stopped = true; return nil }

type fakeTokenManager struct {
	token string
	err   error
	calls int
}

func (f *fakeTokenManager) Get(_ context.Context) (*domain.TokenRecord, error) { return nil, nil }
func (f *fakeTokenManager) Put(_ context.Context, _ domain.TokenRecord) error  { return nil }

func (f *fakeTokenManager) ValidAccessToken(_ context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

type fakeFetcher struct {
	fn    func(window domain.FetchWindow, detail domain.DetailLevel) (*domain.HeartRateSeries, error)
	calls int
}

func (f *fakeFetcher) FetchHeartRate(_ context.Context, window domain.FetchWindow, detail domain.DetailLevel) (*domain.HeartRateSeries, error) {
	f.calls++
	return f.fn(window, detail)
}

type publishCall struct {
	topic      string
	payload    string
	attributes map[string]any
}

type fakePublisher struct {
	// failures is how many leading attempts return an error.
	failures int
	err      error
	calls    []publishCall
}

func (f *fakePublisher) Publish(_ context.Context, topic, payload string, attributes map[string]any) error {
	f.calls = append(f.calls, publishCall{topic: topic, payload: payload, attributes: attributes})
	if len(f.calls) <= f.failures {
		return f.err
	}
	return nil
}

func (f *fakePublisher) Close() {}

type fakeCursorStore struct {
	cursor domain.PollCursor
	saves  []domain.PollCursor
}

func (f *fakeCursorStore) GetCursor(_ context.Context) (domain.PollCursor, error) {
	return f.cursor, nil
}

func (f *fakeCursorStore) SaveCursor(_ context.Context, cursor domain.PollCursor) error {
	f.cursor = cursor
	f.saves = append(f.saves, cursor)
	return nil
}

type fakeResultStore struct {
	results    []domain.PollResult
	pruneCalls int
}

func (f *fakeResultStore) RecordResult(_ context.Context, result *domain.PollResult) error {
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeResultStore) ListResults(_ context.Context, limit int) ([]domain.PollResult, error) {
	if limit > len(f.results) {
		limit = len(f.results)
	}
	out := make([]domain.PollResult, limit)
	copy(out, f.results[len(f.results)-limit:])
	return out, nil
}

func (f *fakeResultStore) PruneResults(_ context.Context, _ int) error {
	f.pruneCalls++
	return nil
}
