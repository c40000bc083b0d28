package driven

import (
	"context"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// TokenEndpoint is the provider's OAuth2 token endpoint.
// Both grants are form-encoded POSTs without a client secret (PKCE
// public client).
type TokenEndpoint interface {
	// ExchangeCode redeems a single-use authorization code together with
	// the PKCE verifier. A non-2xx response is terminal for the
	// authorization attempt.
	ExchangeCode(ctx context.Context, clientID, code, redirectURI, codeVerifier string) (*domain.TokenPayload, error)

	// Refresh redeems a refresh token for a new token pair. The provider
	// invalidates the refresh token on first use, so callers must persist
	// the returned payload before issuing another refresh.
	Refresh(ctx context.Context, clientID, refreshToken string) (*domain.TokenPayload, error)
}

// HeartRateFetcher retrieves the intraday heart-rate dataset for a time
// window at the requested granularity. An empty series is not an error;
// a non-2xx response is (and its error carries status, headers and body,
// since it usually signals an authorization or quota problem).
type HeartRateFetcher interface {
	FetchHeartRate(ctx context.Context, window domain.FetchWindow, detail domain.DetailLevel) (*domain.HeartRateSeries, error)
}
