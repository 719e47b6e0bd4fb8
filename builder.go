package goSession

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/kvstore"
	"github.com/MrEthical07/goSession/session"
)

// Builder assembles an Engine. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config Config

	kv         KeyValueStore
	redis      redis.UniversalClient
	authClient AuthClient
	auditSink  AuditSink
	log        zerolog.Logger
	nowTime    func() time.Time

	built bool
}

// New returns a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config:  defaultConfig(),
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = applyConfigDefaults(cloneConfig(cfg))
	return b
}

// WithRedis backs the session layer with a Redis key-value store built from
// the given client. Mutually exclusive with WithStore; the last call wins.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	b.kv = nil
	return b
}

// WithStore supplies a custom key-value collaborator. When neither WithRedis
// nor WithStore is called, Build falls back to an in-process memory store.
func (b *Builder) WithStore(kv KeyValueStore) *Builder {
	b.kv = kv
	b.redis = nil
	return b
}

// WithAuthClient supplies the authorization-server collaborator. Required;
// package oidc ships a ready implementation.
func (b *Builder) WithAuthClient(client AuthClient) *Builder {
	b.authClient = client
	return b
}

// WithAuditSink supplies the sink that receives lifecycle audit events.
// Only consulted when Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	return b
}

// WithNowTime sets the clock used for created_at stamping and validation
// (primarily for testing).
func (b *Builder) WithNowTime(now func() time.Time) *Builder {
	b.nowTime = now
	return b
}

// Build validates the configuration and assembles the Engine. A Builder can
// only be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.authClient == nil {
		return nil, errors.New("authorization client required")
	}
	if b.nowTime == nil {
		b.nowTime = time.Now
	}

	kv := b.kv
	switch {
	case kv != nil:
	case b.redis != nil:
		kv = kvstore.NewRedisStore(b.redis, cfg.Session.StoreTTL)
	default:
		kv = kvstore.NewMemoryStore(cfg.Session.StoreTTL)
	}

	store := session.NewStore(
		kv,
		session.Validator(cfg.Session.ExpiryUnit),
		session.WithPrefix(cfg.Session.KeyPrefix),
		session.WithLogger(b.log),
		session.WithNowTime(b.nowTime),
	)

	engine := &Engine{
		config:  cfg,
		store:   store,
		client:  b.authClient,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		log:     b.log,
		nowTime: b.nowTime,
	}

	b.built = true

	return engine, nil
}
