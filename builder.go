package goGuard

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/ratelimit"
	"github.com/MrEthical07/goGuard/token"
	"github.com/MrEthical07/goGuard/tokenstore"
)

// Builder defines a public type used by goGuard APIs.
//
// Builder assembles an [Engine] from configuration and collaborators. It is
// single-use: Build may be called once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store       tokenstore.Store
	bucketStore ratelimit.BucketStore
	roles       RoleResolver
	auditSink   AuditSink

	built bool
}

// New creates a builder seeded with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing both the token record store
// and the rate-limit bucket store, unless either is overridden explicitly.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTokenStore overrides the token record store. Stores that also
// implement [tokenstore.PairWriter] get atomic pair issuance.
func (b *Builder) WithTokenStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithBucketStore overrides the rate-limit bucket store.
func (b *Builder) WithBucketStore(store ratelimit.BucketStore) *Builder {
	b.bucketStore = store
	return b
}

// WithRoleResolver supplies the collaborator that maps users to roles at
// issuance time. Required.
func (b *Builder) WithRoleResolver(r RoleResolver) *Builder {
	b.roles = r
	return b
}

// WithAuditSink supplies the destination for audit events. Only consulted
// when auditing is enabled in config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithRateLimitRules replaces the configured rule list. Order is preserved
// and significant.
func (b *Builder) WithRateLimitRules(rules []ratelimit.Rule) *Builder {
	b.config.RateLimit.Rules = append([]ratelimit.Rule(nil), rules...)
	return b
}

// Build validates configuration and collaborators and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.roles == nil {
		return nil, errors.New("role resolver required")
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or token store required")
		}
		store = tokenstore.NewRedisStore(b.redis, cfg.Store.RedisPrefix)
	}

	codec, err := token.NewCodec(token.Config{
		AccessKey:  cfg.Token.AccessKey,
		RefreshKey: cfg.Token.RefreshKey,
		Issuer:     cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		codec:   codec,
		store:   store,
		roles:   b.roles,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		now:     time.Now,
	}

	if len(cfg.RateLimit.Rules) > 0 {
		bucketStore := b.bucketStore
		if bucketStore == nil {
			if b.redis != nil {
				bucketStore = ratelimit.NewRedisBucketStore(b.redis, cfg.Store.RedisPrefix)
			} else {
				bucketStore = ratelimit.NewMemoryBucketStore()
			}
		}

		limiter, err := ratelimit.NewLimiter(cfg.RateLimit.Rules, bucketStore, engine)
		if err != nil {
			return nil, err
		}
		engine.limiter = limiter
	}

	b.built = true
	return engine, nil
}
