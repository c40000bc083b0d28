package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
)

// Ensure TokenService implements the interface.
var _ driving.TokenManager = (*TokenService)(nil)

// TokenService owns the single persisted token record. It is the only
// mutator of the record after initial authorization: ValidAccessToken
// refreshes and persists transparently when the record has expired.
// Refresh is serialized with a mutex because the provider invalidates a
// refresh token on first use - two racing refreshes would strand the
// credential.
type TokenService struct {
	store    driven.TokenStore
	endpoint driven.TokenEndpoint

	mu  sync.Mutex
	now func() time.Time
}

// NewTokenService creates a token service over the given store and
// provider token endpoint.
func NewTokenService(store driven.TokenStore, endpoint driven.TokenEndpoint) *TokenService {
	return &TokenService{
		store:    store,
		endpoint: endpoint,
		now:      time.Now,
	}
}

// Get retrieves the stored record.
func (s *TokenService) Get(ctx context.Context) (*domain.TokenRecord, error) {
	return s.store.Get(ctx)
}

// Put stores the record, replacing any previous one.
func (s *TokenService) Put(ctx context.Context, record domain.TokenRecord) error {
	if record.AccessToken == "" || record.ClientID == "" {
		return domain.ErrInvalidInput
	}
	return s.store.Put(ctx, record)
}

// ValidAccessToken returns an access token valid at call time. When the
// stored record has expired it performs a refresh_token grant, persists
// the replacement record (preserving ClientID), and returns the new
// token. This is the only mutation path outside initial authorization.
func (s *TokenService) ValidAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.Get(ctx)
	if err != nil {
		return "", err
	}

	if !record.IsExpired(s.now()) {
		return record.AccessToken, nil
	}

	refreshed, err := s.refresh(ctx, record)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// refresh performs the refresh_token grant and persists the replacement
// record. Caller holds s.mu.
func (s *TokenService) refresh(ctx context.Context, record *domain.TokenRecord) (*domain.TokenRecord, error) {
	payload, err := s.endpoint.Refresh(ctx, record.ClientID, record.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	refreshed := payload.Record(record.ClientID, s.now())
	// Some providers omit the refresh token when it is unchanged.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = record.RefreshToken
	}
	if refreshed.UserID == nil {
		refreshed.UserID = record.UserID
	}

	if err := s.store.Put(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("persisting refreshed record: %w", err)
	}
	return &refreshed, nil
}
