package domain

import "time"

// AccessClaims is the validated content of a WOPI access token.
type AccessClaims struct {
	UserID      string
	DisplayName string
	FileID      string
	Role        Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IssuedToken is a freshly minted access token plus its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TTLMillis is the access_token_ttl value handed to the editor: the expiry
// as unix milliseconds.
func (t IssuedToken) TTLMillis() int64 {
	return t.ExpiresAt.UnixMilli()
}
