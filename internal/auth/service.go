// Package auth implements the portal's authentication gateway: a single
// shared-password login that mints signed session cookies, and stateless
// verification of those cookies. There is deliberately no server-side session
// table and no revocation list; logout is purely a cookie deletion
// instruction, and a leaked token stays valid until its natural expiry. That
// trade-off is bounded by the configurable TTL.
package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mayaportal/internal/auth/device"
	"mayaportal/pkg/gate"

	dErrors "mayaportal/pkg/domain-errors"

	"golang.org/x/crypto/bcrypt"
)

// Recorder abstracts the prometheus collectors so tests can count calls
// without touching the default registry.
type Recorder interface {
	IncrementLogins()
	IncrementLoginFailures()
	IncrementVerifyFailures()
	IncrementLogouts()
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) IncrementLogins()         {}
func (NopRecorder) IncrementLoginFailures()  {}
func (NopRecorder) IncrementVerifyFailures() {}
func (NopRecorder) IncrementLogouts()        {}

// Service is the auth gateway.
type Service struct {
	password string
	codec    *gate.Codec
	policy   gate.Policy
	metrics  Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source. The time parameter is injected for
// testability (no hidden time.Now() calls).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the auth gateway. password may be either the plain
// shared secret or a bcrypt hash of it.
func NewService(password string, codec *gate.Codec, policy gate.Policy, metrics Recorder, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		password: password,
		codec:    codec,
		policy:   policy,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Login checks the supplied password against configuration and, on success,
// returns the Set-Cookie carrying a freshly minted session token. The failure
// is a single invalid_credential outcome regardless of why the check failed.
func (s *Service) Login(ctx context.Context, password, userAgent string) (*http.Cookie, error) {
	if !s.passwordMatches(password) {
		s.metrics.IncrementLoginFailures()
		s.logger.WarnContext(ctx, "login rejected",
			"client", device.Describe(userAgent),
		)
		return nil, dErrors.New(dErrors.CodeInvalidCredential, "invalid password")
	}

	now := s.now()
	token, err := s.codec.Issue(now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue session token")
	}

	s.metrics.IncrementLogins()
	s.logger.InfoContext(ctx, "login succeeded",
		"client", device.Describe(userAgent),
		"expires_at", now.Add(s.codec.TTL()).UTC().Format(time.RFC3339),
	)

	return s.policy.SessionCookie(token, s.codec.TTL()), nil
}

// Verify validates a session token. Every decode failure collapses to a
// single unauthenticated outcome; the precise cause (malformed, expired, bad
// signature) is logged at debug level only so the boundary leaks nothing.
func (s *Service) Verify(ctx context.Context, token string) (*gate.Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		s.metrics.IncrementVerifyFailures()
		s.logger.DebugContext(ctx, "session verification failed", "error", err)
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "not authenticated")
	}
	return claims, nil
}

// Logout returns the cookie deletion instruction. The gateway holds no
// session state, so there is nothing to revoke server-side.
func (s *Service) Logout(ctx context.Context) *http.Cookie {
	s.metrics.IncrementLogouts()
	s.logger.InfoContext(ctx, "logout")
	return s.policy.ClearCookie()
}

func (s *Service) passwordMatches(supplied string) bool {
	if isBcryptHash(s.password) {
		return bcrypt.CompareHashAndPassword([]byte(s.password), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.password)) == 1
}

// isBcryptHash reports whether the configured password is stored as a bcrypt
// hash rather than plaintext.
func isBcryptHash(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}
