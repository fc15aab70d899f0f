package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp. WOPI tokens are
	// minted and checked by the same host, so this is normally zero.
	Leeway time.Duration

	// Now overrides the clock used for expiry checks. Nil means time.Now.
	Now func() time.Time
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates tokens produced by an HS256Signer.
type HS256Verifier struct {
	key    []byte
	parser *jwt.Parser
	opts   VerifyOptions
}

// NewVerifierHS256 creates a verifier for the given key.
func NewVerifierHS256(key []byte, opts VerifyOptions) *HS256Verifier {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// Registered claims are checked in validate: the parser's exp check
	// rejects a token at exactly its expiry second.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	return &HS256Verifier{
		key:    append([]byte(nil), key...),
		parser: parser,
		opts:   opts,
	}
}

// Verify checks the signature, algorithm, expiry and issuer of tokenStr.
// A token is valid up to and including its exp instant and expired once
// now is after it. Errors are one of the package sentinels so callers can
// tell an expired token from a forged one.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	token, err := v.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidClaim
	}
	if err := v.validate(claims); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func (v *HS256Verifier) validate(c Claims) error {
	if err := c.Validate(); err != nil {
		return err
	}

	now := v.opts.Now()
	if now.After(c.ExpiresAt.Add(v.opts.Leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Add(v.opts.Leeway).Before(c.NotBefore.Time) {
		return ErrInvalidClaim
	}
	if v.opts.Issuer != "" && c.Issuer != v.opts.Issuer {
		return ErrIssuer
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, ErrInvalidClaim):
		return ErrInvalidClaim
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
