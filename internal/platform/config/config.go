// Package config provides environment-based configuration for the portal.
// Variable names match the original deployment surface so existing env files
// keep working.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// minTokenTTLSeconds is the floor applied to JWT_TTL_SECONDS. Anything lower
// is silently raised, matching the historical behavior of the deployment.
const minTokenTTLSeconds = 60

// maxWindowDays caps the aggregation window a client may request.
const maxWindowDays = 3650

// Config captures the full configuration surface of the portal server.
type Config struct {
	// Port the HTTP server listens on.
	Port int `envconfig:"PORT" default:"8000"`
	// Environment tag carried in health responses and logs.
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`

	// LoginPassword is the shared portal password checked at /api/login.
	// It may hold either the plaintext password or a bcrypt hash of it.
	LoginPassword string `envconfig:"METRICS_PORTAL_PASSWORD"`
	// SigningSecret signs session tokens. Every sibling service that wants to
	// trust portal sessions verifies with this same secret.
	SigningSecret string `envconfig:"SHARED_JWT_SECRET"`
	// TokenTTLSeconds is the session lifetime. Default 7 days.
	TokenTTLSeconds int `envconfig:"JWT_TTL_SECONDS" default:"604800"`
	// CookieDomain, when set (e.g. ".entermaya.com"), shares the session
	// cookie across subdomains. Unset confines it to the exact host.
	CookieDomain string `envconfig:"COOKIE_DOMAIN"`

	// DatabaseURL points at the event store.
	DatabaseURL string `envconfig:"DATABASE_URL" default:"postgres://localhost:5432/maya_db"`
	// DBPoolMaxSize bounds open connections to the event store.
	DBPoolMaxSize int `envconfig:"DB_POOL_MAX_SIZE" default:"5"`

	// ReportKinds is the allow-list of report kinds served under /api/{kind}.
	ReportKinds []string `envconfig:"REPORT_KINDS" default:"ebook,pledge-manager"`
	// SnapshotRetention evicts cached snapshots not refreshed within this window.
	SnapshotRetention time.Duration `envconfig:"SNAPSHOT_RETENTION" default:"24h"`
	// SnapshotSweepInterval is how often the retention worker runs.
	SnapshotSweepInterval time.Duration `envconfig:"SNAPSHOT_SWEEP_INTERVAL" default:"10m"`

	// WarmSnapshots precomputes snapshots for every report kind at startup.
	WarmSnapshots bool `envconfig:"WARM_SNAPSHOTS" default:"false"`
	// WarmWindowDays lists the windows (in days) warmed per kind.
	WarmWindowDays []int `envconfig:"WARM_WINDOW_DAYS" default:"30"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if cfg.TokenTTLSeconds < minTokenTTLSeconds {
		cfg.TokenTTLSeconds = minTokenTTLSeconds
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and sane. Secrets are
// never included in error messages.
func (c Config) Validate() error {
	var errs []error
	if c.LoginPassword == "" {
		errs = append(errs, errors.New("METRICS_PORTAL_PASSWORD is required"))
	}
	if c.SigningSecret == "" {
		errs = append(errs, errors.New("SHARED_JWT_SECRET is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if len(c.ReportKinds) == 0 {
		errs = append(errs, errors.New("REPORT_KINDS must name at least one kind"))
	}
	for _, days := range c.WarmWindowDays {
		if days < 1 || days > maxWindowDays {
			errs = append(errs, fmt.Errorf("WARM_WINDOW_DAYS entry %d out of range", days))
		}
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// TokenTTL returns the session lifetime as a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// MaxWindowDays returns the cap applied to requested aggregation windows.
func (c Config) MaxWindowDays() int {
	return maxWindowDays
}
