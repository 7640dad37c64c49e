package goGuard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/ratelimit"
)

func BenchmarkValidateAccess(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	pair, err := engine.IssuePair(context.Background(), "u1")
	if err != nil {
		b.Fatalf("issue failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Validate(context.Background(), pair.AccessToken, PurposeAccess); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}

func BenchmarkIssuePair(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.IssuePair(context.Background(), "u1"); err != nil {
			b.Fatalf("issue failed: %v", err)
		}
	}
}

func BenchmarkRotateAccess(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	if _, err := engine.IssuePair(context.Background(), "u1"); err != nil {
		b.Fatalf("issue failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.RotateAccess(context.Background(), "u1"); err != nil {
			b.Fatalf("rotate failed: %v", err)
		}
	}
}

func BenchmarkAdmitIPScope(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	req := ratelimit.Request{Path: "/api/data", RemoteAddr: "10.0.0.1:1234"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Admit(context.Background(), req); err != nil {
			b.Fatalf("admit failed: %v", err)
		}
	}
}

func newBenchmarkEngine(tb testing.TB) (*Engine, func()) {
	tb.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		tb.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := lifecycleTestConfig()
	cfg.RateLimit.Rules = []ratelimit.Rule{
		{PathPattern: "/api/", Capacity: 1 << 30, Window: time.Minute, Scope: ratelimit.ScopeIP},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRoleResolver(&mapRoleResolver{roles: map[string]string{"u1": "USER"}}).
		Build()
	if err != nil {
		mr.Close()
		tb.Fatalf("Build failed: %v", err)
	}

	return engine, func() {
		engine.Close()
		mr.Close()
	}
}
