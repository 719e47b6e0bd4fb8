package goSession

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/goSession/session"
)

// Config describes a deployment of the session layer. Zero values fall back
// to defaultConfig(); Validate reports what a deployment must set.
type Config struct {
	// ClientID is the OAuth2 client identifier registered with the provider.
	ClientID string `env:"GOSESSION_CLIENT_ID"`
	// ClientSecret is empty for public clients using PKCE only.
	ClientSecret string `env:"GOSESSION_CLIENT_SECRET"`
	// ServerOrigin is the base URL of the authorization server, e.g.
	// https://api.asgardeo.io/t/orgname.
	ServerOrigin string `env:"GOSESSION_SERVER_ORIGIN"`
	// SignInRedirectURL receives the authorization-code callback.
	SignInRedirectURL string `env:"GOSESSION_SIGNIN_REDIRECT_URL"`
	// SignOutRedirectURL is where the provider sends the browser after logout.
	SignOutRedirectURL string `env:"GOSESSION_SIGNOUT_REDIRECT_URL"`
	// Scopes requested on sign-in. Always includes openid.
	Scopes []string `env:"GOSESSION_SCOPES" envSeparator:","`

	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// SessionConfig controls the session store and validator.
type SessionConfig struct {
	// KeyPrefix namespaces record keys in the key-value collaborator.
	KeyPrefix string `env:"GOSESSION_SESSION_KEY_PREFIX"`
	// ExpiryUnit is the unit applied to a record's expires_in when computing
	// its expiry instant. The default is time.Minute for behavior
	// compatibility with existing deployments, even though OIDC providers
	// return expires_in in seconds; see session.DefaultExpiryUnit before
	// changing it under live session data.
	ExpiryUnit time.Duration `env:"GOSESSION_SESSION_EXPIRY_UNIT"`
	// StoreTTL optionally bounds record lifetime at the collaborator level
	// (Redis key expiry). Zero leaves staleness entirely to the validator.
	StoreTTL time.Duration `env:"GOSESSION_SESSION_STORE_TTL"`
}

// AuditConfig controls the asynchronous audit event dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"GOSESSION_AUDIT_ENABLED"`
	BufferSize int  `env:"GOSESSION_AUDIT_BUFFER"`
	// DropIfFull sheds events instead of applying backpressure when the
	// buffer is full. Dropped counts are observable via Engine.AuditDropped.
	DropIfFull bool `env:"GOSESSION_AUDIT_DROP_IF_FULL"`
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool `env:"GOSESSION_METRICS_ENABLED"`
}

func defaultConfig() Config {
	return Config{
		Scopes: []string{"openid"},
		Session: SessionConfig{
			KeyPrefix:  "session:",
			ExpiryUnit: session.DefaultExpiryUnit,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Scopes = append([]string(nil), cfg.Scopes...)
	return out
}

// FromEnv loads a Config from GOSESSION_* environment variables on top of
// the defaults.
func FromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return applyConfigDefaults(cfg), nil
}

func applyConfigDefaults(cfg Config) Config {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid"}
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "session:"
	}
	if cfg.Session.ExpiryUnit <= 0 {
		cfg.Session.ExpiryUnit = session.DefaultExpiryUnit
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 256
	}
	return cfg
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("ClientID is required")
	}
	if c.ServerOrigin == "" {
		return errors.New("ServerOrigin is required")
	}
	if c.SignInRedirectURL == "" {
		return errors.New("SignInRedirectURL is required")
	}
	if c.Session.ExpiryUnit < 0 {
		return errors.New("Session.ExpiryUnit must be positive")
	}
	return nil
}
