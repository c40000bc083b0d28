package domain

import "time"

// TokenRecord is the single persisted OAuth credential for a deployment.
// It is created once by the authorization flow and afterwards mutated only
// by the refresh path, which replaces the whole record while preserving
// ClientID. ExpiresAt is authoritative for validity.
type TokenRecord struct {
	// ClientID is the OAuth client this credential was issued to.
	ClientID string `json:"client_id"`
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the access token expiry as absolute epoch seconds.
	ExpiresAt int64 `json:"expires_at"`
	// Scope is the space-separated scope list granted by the provider.
	Scope string `json:"scope"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// UserID is the provider-side account id. Optional: some token
	// responses omit it.
	UserID *string `json:"user_id,omitempty"`
}

// IsExpired reports whether the access token has expired at the given
// instant. Expiry is inclusive: a token whose ExpiresAt equals now must
// be refreshed before use.
func (r TokenRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}

// TokenPayload is a token endpoint response (authorization_code or
// refresh_token grant) before it is folded into a TokenRecord.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
}

// Record converts the payload into a TokenRecord owned by clientID,
// computing ExpiresAt from the relative ExpiresIn at the given instant.
func (p TokenPayload) Record(clientID string, now time.Time) TokenRecord {
	rec := TokenRecord{
		ClientID:     clientID,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    now.Unix() + p.ExpiresIn,
		Scope:        p.Scope,
		TokenType:    p.TokenType,
	}
	if p.UserID != "" {
		uid := p.UserID
		rec.UserID = &uid
	}
	return rec
}
