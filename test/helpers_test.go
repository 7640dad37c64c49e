//go:build integration
// +build integration

package test

import (
	"bytes"
	"context"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func integrationConfig() goGuard.Config {
	return goGuard.Config{
		Token: goGuard.TokenConfig{
			AccessKey:  bytes.Repeat([]byte{0x31}, 32),
			RefreshKey: bytes.Repeat([]byte{0x42}, 32),
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "integration",
		},
		Store: goGuard.StoreConfig{RedisPrefix: "gg"},
	}
}

type staticRoles struct{}

func (staticRoles) ResolveRole(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", goGuard.ErrRoleNotFound
	}
	return "USER", nil
}

func newIntegrationEngine(t *testing.T) (*goGuard.Engine, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := goGuard.New().
		WithConfig(integrationConfig()).
		WithRedis(rdb).
		WithRoleResolver(staticRoles{}).
		Build()
	if err != nil {
		_ = rdb.Close()
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, rdb, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
