// Package gate implements the shared session contract of the portal: a signed,
// self-contained session token carried in a cookie, verifiable by any sibling
// service that holds the same signing secret. No session store and no
// cross-service network call is involved; verification is purely local.
package gate

import (
	"errors"
	"fmt"
	"time"

	"mayaportal/pkg/platform/sentinel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the session cookie shared by the portal and its siblings.
	CookieName = "maya_auth_token"

	// TokenSubject identifies the portal principal. There is a single shared
	// login, so every session carries the same subject.
	TokenSubject = "metrics-portal"

	// TokenScope is the only scope the portal issues.
	TokenScope = "metrics"
)

// Claims is the signed claim set carried by a session token.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes session tokens signed with HMAC-SHA256.
type Codec struct {
	signingKey []byte
	ttl        time.Duration
}

// NewCodec builds a codec for the given shared secret and session lifetime.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{signingKey: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a signed session token with iat=now and exp=now+ttl.
// Claims are immutable once issued; a token becomes invalid by expiring or by
// the signing secret changing, never by server-side deletion.
func (c *Codec) Issue(now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: TokenScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   TokenSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Decode validates a session token and returns its claims. The signature is
// verified before any claim is trusted; expiry is checked only after the
// signature passes. Failures wrap sentinel errors so the caller can log the
// precise cause while presenting a single opaque outcome to clients.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("empty token: %w", sentinel.ErrMalformed)
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm %q", t.Method.Alg())
		}
		return c.signingKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, fmt.Errorf("session token: %w", sentinel.ErrBadSignature)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("session token: %w", sentinel.ErrExpired)
		default:
			return nil, fmt.Errorf("session token: %w", sentinel.ErrMalformed)
		}
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("session token: %w", sentinel.ErrBadSignature)
	}

	return claims, nil
}
