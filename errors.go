package goGuard

import "errors"

var (
	// ErrInvalidToken is an exported constant or variable used by the token lifecycle engine.
	//
	// It is the single externally visible failure for every validation
	// reason — wrong purpose, unknown record, superseded signed value, or
	// expiry — so responses cannot reveal which check failed. Audit events
	// may distinguish the reasons internally.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRoleNotFound is an exported constant or variable used by the token lifecycle engine.
	ErrRoleNotFound = errors.New("role not found for user")
	// ErrRateLimited is an exported constant or variable used by the token lifecycle engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is an exported constant or variable used by the token lifecycle engine.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the token lifecycle engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
