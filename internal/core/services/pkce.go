package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
)

// PKCE code verifier entropy in bytes. 96 bytes of base64url is 128
// characters, the RFC 7636 maximum (valid range is 43-128).
const codeVerifierBytes = 96

// GenerateCodeVerifier creates a cryptographically random code verifier
// for PKCE. A fresh verifier is generated per authorization attempt and
// never persisted.
func GenerateCodeVerifier() string {
	b := make([]byte, codeVerifierBytes)
	rand.Read(b)
	// Use base64url encoding without padding
	return base64.RawURLEncoding.EncodeToString(b)
}

// DeriveCodeChallenge computes the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding, always 43 characters.
// Deterministic and side-effect free; an empty verifier is a caller
// error.
func DeriveCodeChallenge(verifier string) (string, error) {
	if verifier == "" {
		return "", domain.ErrInvalidInput
	}
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:]), nil
}
