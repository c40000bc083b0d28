package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

// codeWaitTimeout bounds the wait for the authorization redirect. The
// certificate-acceptance wait is unbounded because it requires human
// action; this one is bounded because a missing redirect means the
// operator or provider is unavailable and the attempt cannot succeed.
const codeWaitTimeout = 5 * time.Minute

// Ensure AuthorizeService implements the interface.
var _ driving.Authorizer = (*AuthorizeService)(nil)

// AuthorizeService drives the human-in-the-loop authorization flow:
//
//	INIT -> AWAITING_CERT_ACCEPT -> AWAITING_CODE -> EXCHANGING -> DONE
//
// The double browser hop exists because the provider requires an HTTPS
// redirect URI: the operator must first accept the listener's
// self-signed certificate at the root URL before the redirect to
// /callback can succeed silently.
type AuthorizeService struct {
	listener    driven.CallbackListener
	endpoint    driven.TokenEndpoint
	store       driven.TokenStore
	openBrowser driven.BrowserOpener

	authURL string
	scopes  []string

	codeTimeout time.Duration
	now         func() time.Time
}

// NewAuthorizeService creates the authorization orchestrator. authURL is
// the provider's browser-facing authorization endpoint; scopes are
// requested verbatim.
func NewAuthorizeService(
	listener driven.CallbackListener,
	endpoint driven.TokenEndpoint,
	store driven.TokenStore,
	openBrowser driven.BrowserOpener,
	authURL string,
	scopes []string,
) *AuthorizeService {
	return &AuthorizeService{
		listener:    listener,
		endpoint:    endpoint,
		store:       store,
		openBrowser: openBrowser,
		authURL:     authURL,
		scopes:      scopes,
		codeTimeout: codeWaitTimeout,
		now:         time.Now,
	}
}

// Authorize runs one authorization attempt end to end. The PKCE pair is
// fresh per attempt and discarded afterwards; failures require
// restarting the whole flow because codes and verifiers are single-use.
func (s *AuthorizeService) Authorize(ctx context.Context, clientID string) (*domain.TokenRecord, error) {
	if clientID == "" {
		return nil, domain.ErrInvalidInput
	}

	verifier := GenerateCodeVerifier()
	challenge, err := DeriveCodeChallenge(verifier)
	if err != nil {
		return nil, err
	}

	if err := s.listener.Start(); err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}
	defer s.listener.Stop()

	authorizeURL := s.buildAuthURL(clientID, challenge)
	logger.Debug("authorization URL: %s", authorizeURL)

	logger.Info("opening browser to accept the TLS certificate at %s", s.listener.RootURL())
	if err := s.openBrowser(s.listener.RootURL()); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}
	if err := s.listener.WaitForCertAccept(ctx); err != nil {
		return nil, err
	}
	logger.Info("certificate accepted")

	logger.Info("opening browser to authorize the application")
	if err := s.openBrowser(authorizeURL); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}
	code, err := s.listener.WaitForCode(ctx, s.codeTimeout)
	if err != nil {
		return nil, err
	}
	logger.Debug("authorization code received")

	payload, err := s.endpoint.ExchangeCode(ctx, clientID, code, s.listener.RedirectURI(), verifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExchangeFailed, err)
	}

	record := payload.Record(clientID, s.now())
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting token record: %w", err)
	}
	return &record, nil
}

// buildAuthURL constructs the provider authorization URL carrying the
// S256 challenge.
func (s *AuthorizeService) buildAuthURL(clientID, challenge string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: s.authURL},
		RedirectURL: s.listener.RedirectURI(),
		Scopes:      s.scopes,
	}
	return cfg.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}
