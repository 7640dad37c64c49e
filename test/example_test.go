package test

import (
	"context"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	engine, _ := goGuard.New().
		WithRedis(rdb).
		WithRoleResolver(goGuard.RoleResolverFunc(func(ctx context.Context, userID string) (string, error) {
			// Look the user up in your own store.
			return "USER", nil
		})).
		Build()
	_ = engine
}

// ExampleEngine_IssuePair shows a typical issuance call and error handling.
func ExampleEngine_IssuePair() {
	var engine *goGuard.Engine
	_, err := engine.IssuePair(context.Background(), "user-1")
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goGuard.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
