package goGuard

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func lifecycleTestConfig() Config {
	cfg := defaultConfig()
	cfg.Token.AccessKey = bytes.Repeat([]byte{0x11}, 32)
	cfg.Token.RefreshKey = bytes.Repeat([]byte{0x22}, 32)
	cfg.Token.Issuer = "goguard-test"
	cfg.Metrics.Enabled = true
	return cfg
}

type mapRoleResolver struct {
	roles map[string]string
}

func (r *mapRoleResolver) ResolveRole(_ context.Context, userID string) (string, error) {
	role, ok := r.roles[userID]
	if !ok {
		return "", ErrRoleNotFound
	}
	return role, nil
}

func newLifecycleEngine(t *testing.T, rdb *redis.Client, cfg Config) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRoleResolver(&mapRoleResolver{
			roles: map[string]string{
				"u1": "USER",
				"u2": "ADMIN",
			},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

// advanceClock pins the engine clock to a fixed offset from now.
func advanceClock(e *Engine, offset time.Duration) {
	base := time.Now()
	e.now = func() time.Time {
		return base.Add(offset)
	}
}
