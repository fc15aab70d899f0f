package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of a WOPI access token. The editing
// client is handed the expiry (access_token_ttl) and re-requests a session
// before it runs out.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims are the claims carried by a WOPI access token. The subject is the
// user id; the token is only good for the single file named in FileID.
type Claims struct {
	jwt.RegisteredClaims

	// FileID binds the token to one WOPI file. Changing it breaks the signature.
	FileID string `json:"fid"`

	// Role is "editor" or "viewer".
	Role string `json:"role"`

	// Name is the display name shown by the editor for this user.
	Name string `json:"name,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, fileID, role, name string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		FileID: fileID,
		Role:   role,
		Name:   name,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Validate checks the claims every WOPI access token must carry.
func (c Claims) Validate() error {
	if c.FileID == "" || c.Role == "" || c.Subject == "" {
		return ErrInvalidClaim
	}
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	return nil
}

// ExpiresAtTime returns the expiry as a time.Time (zero if missing).
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAtTime returns the issue time as a time.Time (zero if missing).
func (c Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
