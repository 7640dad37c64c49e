package goGuard

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goGuard/ratelimit"
	"github.com/MrEthical07/goGuard/token"
	"github.com/MrEthical07/goGuard/tokenstore"
)

// Engine defines a public type used by goGuard APIs.
//
// Engine orchestrates the token lifecycle — issuance, validation, rotation,
// revocation — and endpoint admission control. Engine instances are created
// through [Builder.Build] and are safe for concurrent use afterwards.
type Engine struct {
	config  Config
	codec   *token.Codec
	store   tokenstore.Store
	roles   RoleResolver
	limiter *ratelimit.Limiter
	audit   *auditDispatcher
	metrics *Metrics
	now     func() time.Time
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped due to dispatcher
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine's counters at one point in time.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Limiter exposes the configured rate limiter, or nil when no rules were
// configured.
func (e *Engine) Limiter() *ratelimit.Limiter {
	if e == nil {
		return nil
	}
	return e.limiter
}

// IssuePair mints a fresh access/refresh credential pair for the user,
// replacing any prior pair. The user's role is resolved once and embedded in
// both tokens.
func (e *Engine) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	role, err := e.resolveRole(ctx, userID)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		return nil, err
	}

	now := e.now()
	access, accessSigned, err := e.mint(userID, role, tokenstore.PurposeAccess, now)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		return nil, err
	}
	refresh, refreshSigned, err := e.mint(userID, role, tokenstore.PurposeRefresh, now)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		return nil, err
	}

	if err := e.putPair(ctx, access, refresh); err != nil {
		e.metricInc(MetricIssueFailure)
		return nil, e.wrapStoreErr(err)
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: now,
		EventType: AuditTokenIssued,
		UserID:    userID,
		TokenID:   access.TokenID,
		Purpose:   tokenstore.PurposeAccess.String(),
		Success:   true,
		Metadata:  map[string]string{"refresh_token_id": refresh.TokenID},
	})

	return &TokenPair{
		AccessToken:  accessSigned,
		RefreshToken: refreshSigned,
	}, nil
}

// RotateAccess replaces the user's current access token with a fresh one.
// The refresh record is untouched; its lifecycle is independent.
func (e *Engine) RotateAccess(ctx context.Context, userID string) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}

	if err := e.store.DeleteByUserAndPurpose(ctx, userID, tokenstore.PurposeAccess); err != nil {
		e.metricInc(MetricRotateFailure)
		return "", e.wrapStoreErr(err)
	}

	role, err := e.resolveRole(ctx, userID)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		return "", err
	}

	now := e.now()
	record, signed, err := e.mint(userID, role, tokenstore.PurposeAccess, now)
	if err != nil {
		e.metricInc(MetricRotateFailure)
		return "", err
	}

	if err := e.store.Put(ctx, record); err != nil {
		e.metricInc(MetricRotateFailure)
		return "", e.wrapStoreErr(err)
	}

	e.metricInc(MetricRotateSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: now,
		EventType: AuditTokenRotated,
		UserID:    userID,
		TokenID:   record.TokenID,
		Purpose:   tokenstore.PurposeAccess.String(),
		Success:   true,
	})

	return signed, nil
}

// Validate fully checks a presented credential: signature, declared purpose
// against expectedPurpose, live store record, exact signed-value match, and
// expiry. Every failure surfaces as [ErrInvalidToken]; the discarded reasons
// are only visible through audit events and metrics.
func (e *Engine) Validate(ctx context.Context, signed string, expectedPurpose TokenPurpose) (*AuthResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	start := e.now()
	defer func() {
		e.metrics.Observe(MetricValidateLatency, e.now().Sub(start))
	}()

	claims, err := e.codec.Decode(signed)
	if err != nil {
		return nil, e.validateFailed(ctx, "", "", expectedPurpose, "decode")
	}

	if claims.Purpose != expectedPurpose.String() {
		return nil, e.validateFailed(ctx, claims.UserID, claims.ID, expectedPurpose, "purpose_mismatch")
	}

	record, err := e.store.Get(ctx, claims.UserID, claims.ID, expectedPurpose)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return nil, e.validateFailed(ctx, claims.UserID, claims.ID, expectedPurpose, "not_found")
		}
		if errors.Is(err, tokenstore.ErrCorrupt) {
			return nil, e.validateFailed(ctx, claims.UserID, claims.ID, expectedPurpose, "corrupt_record")
		}
		e.metricInc(MetricValidateFailure)
		return nil, e.wrapStoreErr(err)
	}

	if subtle.ConstantTimeCompare([]byte(record.SignedValue), []byte(signed)) != 1 {
		e.metricInc(MetricValidateSuperseded)
		return nil, e.validateFailed(ctx, claims.UserID, claims.ID, expectedPurpose, "superseded")
	}

	if start.Unix() >= record.ExpiresAt {
		e.metricInc(MetricValidateExpired)
		return nil, e.validateFailed(ctx, claims.UserID, claims.ID, expectedPurpose, "expired")
	}

	e.metricInc(MetricValidateSuccess)

	return &AuthResult{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		Purpose:   expectedPurpose,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// PeekUserID opportunistically decodes a credential for identity without any
// store or expiry check. Implements [ratelimit.IdentityPeeker]; USER-scoped
// rate rules key on this.
func (e *Engine) PeekUserID(signed string) (string, bool) {
	if e == nil || e.codec == nil {
		return "", false
	}
	claims, err := e.codec.Decode(signed)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

// RevokeOne drops the user's current token for one purpose. Revoking an
// absent token is not an error.
func (e *Engine) RevokeOne(ctx context.Context, userID string, purpose TokenPurpose) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.DeleteByUserAndPurpose(ctx, userID, purpose); err != nil {
		return e.wrapStoreErr(err)
	}

	e.metricInc(MetricRevokeOne)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: AuditTokenRevoked,
		UserID:    userID,
		Purpose:   purpose.String(),
		Success:   true,
	})

	return nil
}

// RevokeAll drops every live token owned by the user, both purposes.
func (e *Engine) RevokeAll(ctx context.Context, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if err := e.store.DeleteAllForUser(ctx, userID); err != nil {
		return e.wrapStoreErr(err)
	}

	e.metricInc(MetricRevokeAll)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: AuditTokenRevoked,
		UserID:    userID,
		Purpose:   "all",
		Success:   true,
	})

	return nil
}

// Admit runs the request through the configured rate limiter and records the
// outcome. Engines built without rate rules admit everything.
func (e *Engine) Admit(ctx context.Context, req ratelimit.Request) (ratelimit.Decision, error) {
	if e == nil {
		return ratelimit.Decision{}, ErrEngineNotReady
	}
	if e.limiter == nil {
		return ratelimit.Decision{Allowed: true}, nil
	}

	decision, err := e.limiter.Admit(ctx, req)
	if err != nil {
		return decision, err
	}

	if decision.Matched {
		if decision.Allowed {
			e.metricInc(MetricRateLimitAdmitted)
		} else {
			e.metricInc(MetricRateLimitRejected)
			e.emitAudit(ctx, AuditEvent{
				Timestamp: e.now(),
				EventType: AuditRateLimited,
				Success:   false,
				Reason:    "capacity_exhausted",
				Metadata: map[string]string{
					"key":  decision.Key,
					"path": req.Path,
				},
			})
		}
	}

	return decision, nil
}

func (e *Engine) resolveRole(ctx context.Context, userID string) (string, error) {
	role, err := e.roles.ResolveRole(ctx, userID)
	if err != nil {
		e.metricInc(MetricRoleResolveFailure)
		if errors.Is(err, ErrRoleNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resolve role for %s: %w", userID, err)
	}
	if role == "" {
		e.metricInc(MetricRoleResolveFailure)
		return "", ErrRoleNotFound
	}
	return role, nil
}

func (e *Engine) mint(userID, role string, purpose tokenstore.Purpose, now time.Time) (*tokenstore.Record, string, error) {
	ttl := e.config.Token.AccessTTL
	if purpose == tokenstore.PurposeRefresh {
		ttl = e.config.Token.RefreshTTL
	}

	tokenID := uuid.NewString()
	claims := token.NewClaims(tokenID, userID, role, purpose.String(), now, ttl)

	signed, err := e.codec.Encode(claims)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s token: %w", purpose, err)
	}

	return &tokenstore.Record{
		UserID:      userID,
		TokenID:     tokenID,
		Purpose:     purpose,
		SignedValue: signed,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(ttl).Unix(),
	}, signed, nil
}

func (e *Engine) putPair(ctx context.Context, access, refresh *tokenstore.Record) error {
	if pw, ok := e.store.(tokenstore.PairWriter); ok {
		return pw.PutPair(ctx, access, refresh)
	}

	// Sequential fallback for stores without atomic pair writes. A failure
	// after the first write leaves an access record with no refresh
	// counterpart; RevokeAll followed by a fresh IssuePair reconciles it.
	if err := e.store.Put(ctx, access); err != nil {
		return err
	}
	if err := e.store.Put(ctx, refresh); err != nil {
		log.Print("goGuard: refresh record write failed after access write; pair left partial")
		return err
	}
	return nil
}

func (e *Engine) validateFailed(ctx context.Context, userID, tokenID string, purpose TokenPurpose, reason string) error {
	e.metricInc(MetricValidateFailure)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: AuditTokenValidated,
		UserID:    userID,
		TokenID:   tokenID,
		Purpose:   purpose.String(),
		Success:   false,
		Reason:    reason,
	})
	return ErrInvalidToken
}

func (e *Engine) wrapStoreErr(err error) error {
	if errors.Is(err, tokenstore.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}
