package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/pkg/cryptox"
	"github.com/immor75/MeetingsDecisions/pkg/jwtx"
)

// tokenKeyPurpose binds the derived key to access token signing.
const tokenKeyPurpose = "wopihost/access-token/hs256"

var ErrNoTokenSecret = errors.New("WOPI_TOKEN_SECRET is not set")

// TokenKey derives the HS256 signing key from the configured secret.
//
// Without a secret a random one is generated. Tokens then only verify
// against this process and every open editor loses access on restart,
// which is acceptable for development only.
func TokenKey(cfg Config, logger *slog.Logger) ([]byte, error) {
	secret := cfg.TokenSecret
	if secret == "" {
		logger.Warn("WOPI_TOKEN_SECRET not set, using an ephemeral signing key; tokens will not survive a restart")
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		secret = generated
	}

	key, err := cryptox.DeriveKey([]byte(secret), tokenKeyPurpose, jwtx.MinHMACKeySize)
	if err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}
	return key, nil
}

// NewTokenService builds the access token service for cfg. Offline callers
// (token minting) require a configured secret.
func NewTokenService(cfg Config, logger *slog.Logger, requireSecret bool) (*service.AccessTokenService, error) {
	if requireSecret && cfg.TokenSecret == "" {
		return nil, ErrNoTokenSecret
	}
	key, err := TokenKey(cfg, logger)
	if err != nil {
		return nil, err
	}
	return service.NewAccessTokenService(key, cfg.TokenIssuer, jwtx.DefaultAccessTokenTTL, nil)
}
