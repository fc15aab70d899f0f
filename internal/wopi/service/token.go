package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/pkg/jwtx"
)

var (
	ErrTokenInvalid  = errors.New("invalid_token")
	ErrTokenExpired  = errors.New("token_expired")
	ErrFileMismatch  = errors.New("token_file_mismatch")
	ErrMissingUserID = errors.New("missing_user_id")
)

// TokenValidator is what the Dispatcher needs from the token service.
type TokenValidator interface {
	Validate(token, fileID string) (domain.AccessClaims, error)
}

// AccessTokenService issues and validates file-scoped WOPI access tokens.
// It holds no state beyond its key, so Validate is safe for concurrent use.
type AccessTokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

// NewAccessTokenService builds an HS256 token service from a derived key.
func NewAccessTokenService(key []byte, issuer string, ttl time.Duration, now func() time.Time) (*AccessTokenService, error) {
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	if now == nil {
		now = time.Now
	}

	signer, err := jwtx.NewSignerHS256("wopi", key)
	if err != nil {
		return nil, err
	}

	return &AccessTokenService{
		Signer:   signer,
		Verifier: signer.Verifier(jwtx.VerifyOptions{Issuer: issuer, Now: now}),
		Issuer:   issuer,
		TTL:      ttl,
		Now:      now,
	}, nil
}

// Issue mints a token for userID that is only valid for fileID.
func (s *AccessTokenService) Issue(userID, displayName, fileID string, role domain.Role) (domain.IssuedToken, error) {
	if userID == "" {
		return domain.IssuedToken{}, ErrMissingUserID
	}
	if fileID == "" {
		return domain.IssuedToken{}, ErrFileMismatch
	}
	if role != domain.RoleEditor && role != domain.RoleViewer {
		return domain.IssuedToken{}, domain.ErrUnknownRole
	}

	// Truncate so the expiry we report matches the second-precision exp claim.
	now := s.Now().UTC().Truncate(time.Second)
	claims := jwtx.NewAccessClaims(userID, fileID, role.String(), displayName, s.TTL, s.Issuer, now)

	tok, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return domain.IssuedToken{Token: tok, ExpiresAt: claims.ExpiresAtTime()}, nil
}

// Validate checks the token signature and expiry and that it was issued for
// fileID. A token is accepted up to and including its expiresAt and rejected
// once now is after it. Every failure wraps ErrTokenInvalid.
func (s *AccessTokenService) Validate(token, fileID string) (domain.AccessClaims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.AccessClaims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrTokenExpired)
		}
		return domain.AccessClaims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if fileID == "" || claims.FileID != fileID {
		return domain.AccessClaims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrFileMismatch)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.AccessClaims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return domain.AccessClaims{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		FileID:      claims.FileID,
		Role:        role,
		IssuedAt:    claims.IssuedAtTime(),
		ExpiresAt:   claims.ExpiresAtTime(),
	}, nil
}
