package accountkit

import (
	"errors"

	"github.com/fbinvest/accountkit/credential"
	"github.com/fbinvest/accountkit/token"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by accountkit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	store    AccountStore
	notifier ResetNotifier

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis wires the bundled Redis-backed account store. The client is used
// verbatim; pooling and TLS are the caller's concern.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore replaces the bundled Redis store with a caller-supplied
// [AccountStore]. Takes precedence over [Builder.WithRedis].
func (b *Builder) WithStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithNotifier wires the reset-key delivery collaborator. Password reset
// requests fail with [ErrNotificationUnconfigured] when no notifier is set.
func (b *Builder) WithNotifier(n ResetNotifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or account store required")
		}
		store = newRedisAccountStore(b.redis, cfg.Store.RedisPrefix)
	}

	hasher, err := credential.NewArgon2(credential.Config{
		Memory:      cfg.Credential.Memory,
		Time:        cfg.Credential.Time,
		Parallelism: cfg.Credential.Parallelism,
		SaltLength:  cfg.Credential.SaltLength,
		KeyLength:   cfg.Credential.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Secret: cloneBytes(cfg.Token.Secret),
		TTL:    cfg.Token.TTL,
		Issuer: cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: b.notifier,
	}

	if cfg.PasswordReset.Enabled && cfg.PasswordReset.ThrottleEnabled {
		if b.redis == nil {
			return nil, errors.New("password reset throttle requires a redis client")
		}
		engine.limiter = newResetLimiter(b.redis, cfg.Store.RedisPrefix, cfg.PasswordReset)
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
