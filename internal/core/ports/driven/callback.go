package driven

import (
	"context"
	"time"
)

// CallbackListener is the local TLS endpoint that captures the
// provider's browser redirect during one authorization attempt. Its two
// signals are one-shot and level-triggered: once raised they stay
// raised, and waiters are woken rather than polling.
type CallbackListener interface {
	// Start begins serving. Non-blocking.
	Start() error

	// WaitForCertAccept blocks until the operator's browser has loaded
	// the root page (accepting the self-signed certificate), or ctx is
	// cancelled. There is no timeout: this step requires human action.
	WaitForCertAccept(ctx context.Context) error

	// WaitForCode blocks until an authorization code arrives or the
	// timeout elapses, whichever is first. Timeout returns
	// domain.ErrAuthTimeout.
	WaitForCode(ctx context.Context, timeout time.Duration) (string, error)

	// RedirectURI returns the HTTPS redirect URI served by this listener.
	RedirectURI() string

	// RootURL returns the HTTPS root URL the operator must visit first.
	RootURL() string

	// Stop shuts the listener down. Safe to call more than once.
	Stop() error
}

// BrowserOpener opens a URL in the operator's default browser.
type BrowserOpener func(url string) error
