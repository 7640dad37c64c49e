package goGuard

import (
	"context"

	"github.com/MrEthical07/goGuard/tokenstore"
)

// TokenPurpose defines a public type used by goGuard APIs.
//
// TokenPurpose values partition credentials into the access and refresh
// lifecycles; each purpose owns its signing key, lifetime, and store slot.
type TokenPurpose = tokenstore.Purpose

const (
	// PurposeAccess is an exported constant or variable used by the token lifecycle engine.
	PurposeAccess = tokenstore.PurposeAccess
	// PurposeRefresh is an exported constant or variable used by the token lifecycle engine.
	PurposeRefresh = tokenstore.PurposeRefresh
)

// TokenRecord defines a public type used by goGuard APIs.
//
// TokenRecord is the durable representation of one live token; see
// [tokenstore.Record].
type TokenRecord = tokenstore.Record

// TokenStore defines a public type used by goGuard APIs.
//
// TokenStore is the durable-store contract the engine validates against; see
// [tokenstore.Store].
type TokenStore = tokenstore.Store

// TokenPair carries the two signed credential strings minted by one
// issuance.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the outcome of a successful validation. Role is taken from
// the token's claims, not re-fetched, so role changes do not take effect
// until the affected tokens expire or are revoked.
type AuthResult struct {
	UserID    string
	Role      string
	TokenID   string
	Purpose   TokenPurpose
	ExpiresAt int64
}

// RoleResolver is the collaborator that maps a user identity to its role
// name at issuance time. Implementations return [ErrRoleNotFound] (wrapped
// or verbatim) when the user has no assigned role; any other error is
// treated as a backend failure and surfaced unchanged.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}

// RoleResolverFunc adapts a plain function to the [RoleResolver] interface.
type RoleResolverFunc func(ctx context.Context, userID string) (string, error)

// ResolveRole implements [RoleResolver].
func (f RoleResolverFunc) ResolveRole(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}
