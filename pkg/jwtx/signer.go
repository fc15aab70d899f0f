package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACKeySize is the smallest HS256 key accepted (256 bits).
const MinHMACKeySize = 32

// Signer is our interface for anything that can sign WOPI access tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer signs tokens with a shared HMAC-SHA256 key. The host is the
// only party that both mints and checks access tokens, so a symmetric key
// is enough.
type HS256Signer struct {
	kid string
	key []byte
}

// NewSignerHS256 creates an HS256 signer. The key is copied.
func NewSignerHS256(kid string, key []byte) (*HS256Signer, error) {
	if len(key) < MinHMACKeySize {
		return nil, fmt.Errorf("jwtx: HS256 key must be at least %d bytes, got %d", MinHMACKeySize, len(key))
	}
	return &HS256Signer{kid: kid, key: append([]byte(nil), key...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

// Sign serializes and signs claims.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.key)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if len(s.key) < MinHMACKeySize {
		return errors.New("jwtx: HS256 key missing or too short")
	}
	return nil
}

// Verifier returns a verifier sharing this signer's key.
func (s *HS256Signer) Verifier(opts VerifyOptions) *HS256Verifier {
	return NewVerifierHS256(s.key, opts)
}
