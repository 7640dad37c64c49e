package goGuard

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/tokenstore"
)

// TokenInfo is the safe introspection view for a presented credential.
// It intentionally excludes signing keys and the stored signed value.
type TokenInfo struct {
	Active   bool
	UserID   string
	TokenID  string
	Purpose  TokenPurpose
	Role     string
	IssuedAt int64
	// ExpiresAt is zero when the credential never reached the store check.
	ExpiresAt int64
}

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	StoreAvailable bool
	StoreLatency   time.Duration
}

// Introspect reports the full state of a presented credential for operator
// and admin surfaces. Unlike [Engine.Validate] it accepts either purpose and
// reports inactive credentials as data rather than an error; only a store
// outage is an error. Never expose this output to the token holder — the
// external contract stays [ErrInvalidToken].
func (e *Engine) Introspect(ctx context.Context, signed string) (*TokenInfo, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.Decode(signed)
	if err != nil {
		return &TokenInfo{}, nil
	}

	purpose, err := tokenstore.ParsePurpose(claims.Purpose)
	if err != nil {
		return &TokenInfo{}, nil
	}

	info := &TokenInfo{
		UserID:  claims.UserID,
		TokenID: claims.ID,
		Purpose: purpose,
		Role:    claims.Role,
	}

	record, err := e.store.Get(ctx, claims.UserID, claims.ID, purpose)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) || errors.Is(err, tokenstore.ErrCorrupt) {
			return info, nil
		}
		return nil, e.wrapStoreErr(err)
	}

	info.IssuedAt = record.IssuedAt
	info.ExpiresAt = record.ExpiresAt

	if subtle.ConstantTimeCompare([]byte(record.SignedValue), []byte(signed)) != 1 {
		return info, nil
	}
	if e.now().Unix() >= record.ExpiresAt {
		return info, nil
	}

	info.Active = true
	return info, nil
}

// Health pings the token store backend when it supports it.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.store == nil {
		return HealthStatus{}
	}

	pinger, ok := e.store.(interface {
		Ping(ctx context.Context) (time.Duration, error)
	})
	if !ok {
		// In-memory stores have nothing to probe.
		return HealthStatus{StoreAvailable: true}
	}

	latency, err := pinger.Ping(ctx)
	return HealthStatus{
		StoreAvailable: err == nil,
		StoreLatency:   latency,
	}
}
