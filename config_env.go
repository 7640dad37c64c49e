package goGuard

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/MrEthical07/goGuard/ratelimit"
)

// envConfig is the flat environment surface mapped onto [Config].
type envConfig struct {
	AccessKey  string        `env:"GOGUARD_ACCESS_KEY"`
	RefreshKey string        `env:"GOGUARD_REFRESH_KEY"`
	AccessTTL  time.Duration `env:"GOGUARD_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"GOGUARD_REFRESH_TTL" envDefault:"168h"`
	Issuer     string        `env:"GOGUARD_ISSUER"`

	RedisPrefix string `env:"GOGUARD_REDIS_PREFIX" envDefault:"gg"`

	// Semicolon-separated rules: "pattern|capacity|window|scope".
	// Example: "/login|5|1m|ip;/register|3|5m|ip;/auth/me/change-password|3|5m|user"
	RateRules string `env:"GOGUARD_RATE_RULES"`

	AuditEnabled    bool `env:"GOGUARD_AUDIT_ENABLED" envDefault:"false"`
	AuditBufferSize int  `env:"GOGUARD_AUDIT_BUFFER" envDefault:"256"`
	AuditDropIfFull bool `env:"GOGUARD_AUDIT_DROP_IF_FULL" envDefault:"true"`

	MetricsEnabled    bool `env:"GOGUARD_METRICS_ENABLED" envDefault:"false"`
	MetricsHistograms bool `env:"GOGUARD_METRICS_HISTOGRAMS" envDefault:"false"`
}

// ConfigFromEnv builds a [Config] from GOGUARD_* environment variables,
// loading a .env file first when one is present. Signing keys are expected
// base64-encoded. The returned config is not yet validated; [Builder.Build]
// runs [Config.Validate].
func ConfigFromEnv() (Config, error) {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg := defaultConfig()
	cfg.Token.AccessTTL = raw.AccessTTL
	cfg.Token.RefreshTTL = raw.RefreshTTL
	cfg.Token.Issuer = raw.Issuer
	cfg.Store.RedisPrefix = raw.RedisPrefix
	cfg.Audit = AuditConfig{
		Enabled:    raw.AuditEnabled,
		BufferSize: raw.AuditBufferSize,
		DropIfFull: raw.AuditDropIfFull,
	}
	cfg.Metrics = MetricsConfig{
		Enabled:                 raw.MetricsEnabled,
		EnableLatencyHistograms: raw.MetricsHistograms,
	}

	if raw.AccessKey != "" {
		key, err := base64.StdEncoding.DecodeString(raw.AccessKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode GOGUARD_ACCESS_KEY: %w", err)
		}
		cfg.Token.AccessKey = key
	}
	if raw.RefreshKey != "" {
		key, err := base64.StdEncoding.DecodeString(raw.RefreshKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode GOGUARD_REFRESH_KEY: %w", err)
		}
		cfg.Token.RefreshKey = key
	}

	rules, err := parseRateRules(raw.RateRules)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimit.Rules = rules

	return cfg, nil
}

func parseRateRules(spec string) ([]ratelimit.Rule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var rules []ratelimit.Rule
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("rate rule %q: want pattern|capacity|window|scope", entry)
		}

		capacity, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("rate rule %q: capacity: %w", entry, err)
		}
		window, err := time.ParseDuration(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("rate rule %q: window: %w", entry, err)
		}
		scope, err := ratelimit.ParseScope(parts[3])
		if err != nil {
			return nil, fmt.Errorf("rate rule %q: %w", entry, err)
		}

		rules = append(rules, ratelimit.Rule{
			PathPattern: strings.TrimSpace(parts[0]),
			Capacity:    capacity,
			Window:      window,
			Scope:       scope,
		})
	}

	return rules, nil
}
