package goGuard

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGuard/ratelimit"
)

// Config defines a public type used by goGuard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token     TokenConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goGuard APIs.
//
// Access and refresh tokens MUST be signed with distinct keys so that
// compromise of one cannot forge the other.
type TokenConfig struct {
	AccessKey  []byte
	RefreshKey []byte
	AccessTTL  time.Duration // default 15m
	RefreshTTL time.Duration // default 168h (7 days)
	Issuer     string
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goGuard APIs.
type StoreConfig struct {
	RedisPrefix string // default "gg"
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by goGuard APIs.
//
// Rules are evaluated in order; the first pattern that matches a request
// path wins, so order is part of the contract.
type RateLimitConfig struct {
	Rules []ratelimit.Rule
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goGuard APIs.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goGuard APIs.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			RedisPrefix: "gg",
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg

	out.Token.AccessKey = append([]byte(nil), cfg.Token.AccessKey...)
	out.Token.RefreshKey = append([]byte(nil), cfg.Token.RefreshKey...)

	out.RateLimit.Rules = make([]ratelimit.Rule, len(cfg.RateLimit.Rules))
	copy(out.RateLimit.Rules, cfg.RateLimit.Rules)

	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	if len(c.Token.AccessKey) < 32 {
		return errors.New("token access key must be at least 32 bytes")
	}
	if len(c.Token.RefreshKey) < 32 {
		return errors.New("token refresh key must be at least 32 bytes")
	}
	if len(c.Token.AccessKey) == len(c.Token.RefreshKey) &&
		subtle.ConstantTimeCompare(c.Token.AccessKey, c.Token.RefreshKey) == 1 {
		return errors.New("access and refresh keys must differ")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}

	for i, rule := range c.RateLimit.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("rate limit rule %d: %w", i, err)
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}

	return nil
}
