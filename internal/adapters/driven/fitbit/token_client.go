package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
)

// Ensure TokenClient implements the interface.
var _ driven.TokenEndpoint = (*TokenClient)(nil)

// TokenClient talks to the provider's OAuth2 token endpoint. Both
// grants are form-encoded POSTs carrying no client secret: this is a
// PKCE public client, so possession of the verifier (or refresh token)
// is the whole proof.
type TokenClient struct {
	tokenURL   string
	httpClient *http.Client
}

// NewTokenClient creates a token endpoint client against the production
// endpoint.
func NewTokenClient() *TokenClient {
	return NewTokenClientWithURL(DefaultTokenURL)
}

// NewTokenClientWithURL creates a token endpoint client against a
// specific URL. Used by tests.
func NewTokenClientWithURL(tokenURL string) *TokenClient {
	return &TokenClient{
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExchangeCode redeems an authorization code with its PKCE verifier.
func (c *TokenClient) ExchangeCode(ctx context.Context, clientID, code, redirectURI, codeVerifier string) (*domain.TokenPayload, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", clientID)
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("code_verifier", codeVerifier)

	return c.post(ctx, data)
}

// Refresh redeems a refresh token for a new token pair. The provider
// invalidates the old refresh token on success.
func (c *TokenClient) Refresh(ctx context.Context, clientID, refreshToken string) (*domain.TokenPayload, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	data.Set("refresh_token", refreshToken)

	return c.post(ctx, data)
}

func (c *TokenClient) post(ctx context.Context, data url.Values) (*domain.TokenPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Errors []struct {
				ErrorType string `json:"errorType"`
				Message   string `json:"message"`
			} `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && len(errResp.Errors) > 0 {
			return nil, fmt.Errorf("token error: %s - %s", errResp.Errors[0].ErrorType, errResp.Errors[0].Message)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var payload domain.TokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &payload, nil
}
