package ratelimit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scope is the dimension a limit is keyed on.
type Scope uint8

const (
	// ScopeIP limits per caller IP address.
	ScopeIP Scope = iota
	// ScopeUser limits per authenticated user, falling back to the caller
	// IP when no identity can be decoded from the request.
	ScopeUser
	// ScopeGlobal limits all callers of the path together.
	ScopeGlobal
)

// String returns the configuration name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeIP:
		return "ip"
	case ScopeUser:
		return "user"
	case ScopeGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ParseScope maps a configuration name back to a [Scope].
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ip":
		return ScopeIP, nil
	case "user":
		return ScopeUser, nil
	case "global":
		return ScopeGlobal, nil
	default:
		return 0, fmt.Errorf("unknown rate limit scope %q", s)
	}
}

// Rule binds a path pattern to a request budget. Patterns match by
// substring; the first rule in configuration order that matches a request
// path wins, so broader patterns placed early shadow narrower ones placed
// later.
type Rule struct {
	PathPattern string
	Capacity    int
	Window      time.Duration
	Scope       Scope
}

// Validate rejects rules that could never admit or never refill.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.PathPattern) == "" {
		return errors.New("rule path pattern must not be empty")
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("rule %q: capacity must be positive", r.PathPattern)
	}
	if r.Window <= 0 {
		return fmt.Errorf("rule %q: window must be positive", r.PathPattern)
	}
	if r.Scope != ScopeIP && r.Scope != ScopeUser && r.Scope != ScopeGlobal {
		return fmt.Errorf("rule %q: invalid scope", r.PathPattern)
	}
	return nil
}

// Match returns the first rule whose pattern occurs in path, preserving
// configuration order.
func Match(rules []Rule, path string) (Rule, bool) {
	for _, rule := range rules {
		if strings.Contains(path, rule.PathPattern) {
			return rule, true
		}
	}
	return Rule{}, false
}
