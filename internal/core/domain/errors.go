package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates no token record has been stored yet.
	// The operator must run the authorization flow first.
	ErrMissingCredential = errors.New("no stored credential: run 'pulsebridge authorize <client_id>' first")

	// ErrRefreshFailed indicates the refresh_token grant was rejected.
	// An expired or revoked refresh token requires re-running the full
	// authorization flow; this is fatal for the current poll cycle.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrAuthTimeout indicates the authorization callback did not arrive
	// within the bounded wait. The code and verifier are single-use, so
	// the whole flow must be restarted.
	ErrAuthTimeout = errors.New("timed out waiting for authorization callback")

	// ErrExchangeFailed indicates the authorization_code grant was
	// rejected. The code is single-use and cannot be retried.
	ErrExchangeFailed = errors.New("token exchange failed")
)
