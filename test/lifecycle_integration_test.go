//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
)

func TestLifecycleEndToEnd(t *testing.T) {
	engine, _, cleanup := newIntegrationEngine(t)
	defer cleanup()

	ctx := context.Background()

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	if _, err := engine.Validate(ctx, pair.AccessToken, goGuard.PurposeAccess); err != nil {
		t.Fatalf("access validate failed: %v", err)
	}
	if _, err := engine.Validate(ctx, pair.RefreshToken, goGuard.PurposeRefresh); err != nil {
		t.Fatalf("refresh validate failed: %v", err)
	}

	rotated, err := engine.RotateAccess(ctx, "u1")
	if err != nil {
		t.Fatalf("RotateAccess failed: %v", err)
	}
	if _, err := engine.Validate(ctx, pair.AccessToken, goGuard.PurposeAccess); !errors.Is(err, goGuard.ErrInvalidToken) {
		t.Fatalf("stale access token accepted: %v", err)
	}
	if _, err := engine.Validate(ctx, rotated, goGuard.PurposeAccess); err != nil {
		t.Fatalf("rotated access validate failed: %v", err)
	}

	if err := engine.RevokeAll(ctx, "u1"); err != nil {
		t.Fatalf("RevokeAll failed: %v", err)
	}
	if _, err := engine.Validate(ctx, rotated, goGuard.PurposeAccess); !errors.Is(err, goGuard.ErrInvalidToken) {
		t.Fatalf("revoked access token accepted: %v", err)
	}
	if _, err := engine.Validate(ctx, pair.RefreshToken, goGuard.PurposeRefresh); !errors.Is(err, goGuard.ErrInvalidToken) {
		t.Fatalf("revoked refresh token accepted: %v", err)
	}
}

func TestLifecycleRecordSurvivesEngineRestart(t *testing.T) {
	engine, rdb, cleanup := newIntegrationEngine(t)
	defer cleanup()

	ctx := context.Background()

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	engine.Close()

	// A second engine over the same Redis and keys must accept the token.
	restarted, err := goGuard.New().
		WithConfig(integrationConfig()).
		WithRedis(rdb).
		WithRoleResolver(staticRoles{}).
		Build()
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	defer restarted.Close()

	if _, err := restarted.Validate(ctx, pair.AccessToken, goGuard.PurposeAccess); err != nil {
		t.Fatalf("validate after restart failed: %v", err)
	}
}

func TestLifecycleKeyMismatchRejectsForeignTokens(t *testing.T) {
	engine, rdb, cleanup := newIntegrationEngine(t)
	defer cleanup()

	ctx := context.Background()

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	cfg := integrationConfig()
	cfg.Token.AccessKey[0] ^= 0xFF

	other, err := goGuard.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRoleResolver(staticRoles{}).
		Build()
	if err != nil {
		t.Fatalf("second engine build failed: %v", err)
	}
	defer other.Close()

	if _, err := other.Validate(ctx, pair.AccessToken, goGuard.PurposeAccess); !errors.Is(err, goGuard.ErrInvalidToken) {
		t.Fatalf("token signed with a different key accepted: %v", err)
	}
}
