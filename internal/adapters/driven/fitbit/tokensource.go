package fitbit

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
)

// tokenSource adapts the token manager to oauth2.TokenSource so the
// API client's transport injects a valid bearer token on every request,
// refreshing transparently through the manager when needed.
type tokenSource struct {
	tokens driving.TokenManager
	ctx    context.Context
}

// NewTokenSource creates an oauth2.TokenSource backed by the token
// manager.
func NewTokenSource(ctx context.Context, tokens driving.TokenManager) oauth2.TokenSource {
	return &tokenSource{tokens: tokens, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := t.tokens.ValidAccessToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
