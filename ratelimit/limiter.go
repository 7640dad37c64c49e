package ratelimit

import (
	"context"
	"errors"
	"fmt"
)

// IdentityPeeker opportunistically extracts a user identity from a bearer
// credential. Implementations verify shape and signature only; a credential
// that fails to decode simply yields no identity.
type IdentityPeeker interface {
	PeekUserID(signed string) (string, bool)
}

// Request carries the admission inputs extracted from an incoming request.
// Header values are passed through verbatim; the limiter owns their
// interpretation.
type Request struct {
	Path         string
	ForwardedFor string
	RealIP       string
	RemoteAddr   string
	BearerToken  string
}

// Decision is the outcome of one admission check. Matched is false when no
// rule covers the path, in which case the request is always admitted.
type Decision struct {
	Allowed bool
	Matched bool
	Key     string
	Rule    Rule
}

// Limiter maps requests to bounded request-rate buckets and admits or
// rejects them. Safe for concurrent use.
type Limiter struct {
	rules  []Rule
	store  BucketStore
	peeker IdentityPeeker
}

// NewLimiter validates the rule list and returns a limiter bound to the
// given bucket store. The peeker may be nil; USER-scoped rules then always
// fall back to IP keys.
func NewLimiter(rules []Rule, store BucketStore, peeker IdentityPeeker) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("bucket store required")
	}
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}

	out := make([]Rule, len(rules))
	copy(out, rules)

	return &Limiter{
		rules:  out,
		store:  store,
		peeker: peeker,
	}, nil
}

// Admit decides whether the request may proceed. A non-nil error means the
// bucket store could not be reached and no decision was made.
func (l *Limiter) Admit(ctx context.Context, req Request) (Decision, error) {
	rule, ok := Match(l.rules, req.Path)
	if !ok {
		return Decision{Allowed: true}, nil
	}

	key := l.resolveKey(req, rule.Scope)

	allowed, err := l.store.Take(ctx, key, rule.Capacity, rule.Window)
	if err != nil {
		return Decision{Matched: true, Key: key, Rule: rule}, err
	}

	return Decision{
		Allowed: allowed,
		Matched: true,
		Key:     key,
		Rule:    rule,
	}, nil
}

func (l *Limiter) resolveKey(req Request, scope Scope) string {
	switch scope {
	case ScopeUser:
		if l.peeker != nil && req.BearerToken != "" {
			if userID, ok := l.peeker.PeekUserID(req.BearerToken); ok {
				return "user:" + userID + ":" + req.Path
			}
		}
		return l.ipKey(req)
	case ScopeGlobal:
		return "global:" + req.Path
	default:
		return l.ipKey(req)
	}
}

func (l *Limiter) ipKey(req Request) string {
	return "ip:" + ClientIP(req.ForwardedFor, req.RealIP, req.RemoteAddr) + ":" + req.Path
}
