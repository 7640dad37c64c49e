package tokenstore

import (
	"context"
	"errors"
	"fmt"
)

// Purpose partitions credentials by function: short-lived access tokens and
// long-lived refresh tokens live in separate store slots and never collide.
type Purpose uint8

const (
	// PurposeAccess is the short-lived API credential slot.
	PurposeAccess Purpose = iota
	// PurposeRefresh is the long-lived re-issuance credential slot.
	PurposeRefresh
)

// String returns the wire name of the purpose, matching the purpose claim
// carried inside signed tokens.
func (p Purpose) String() string {
	switch p {
	case PurposeAccess:
		return "access"
	case PurposeRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// ParsePurpose maps a wire name back to a [Purpose].
func ParsePurpose(s string) (Purpose, error) {
	switch s {
	case "access":
		return PurposeAccess, nil
	case "refresh":
		return PurposeRefresh, nil
	default:
		return 0, fmt.Errorf("unknown token purpose %q", s)
	}
}

// Record is the durable representation of one live token.
type Record struct {
	UserID      string
	TokenID     string
	Purpose     Purpose
	SignedValue string
	IssuedAt    int64
	ExpiresAt   int64
}

var (
	// ErrNotFound reports a point lookup that matched no live record.
	ErrNotFound = errors.New("token record not found")
	// ErrCorrupt reports a stored blob that failed to decode.
	ErrCorrupt = errors.New("token record corrupt")
	// ErrUnavailable reports a transport failure talking to the backing
	// store.
	ErrUnavailable = errors.New("token store unavailable")
)

// Store is the durable-store contract consumed by the engine. Put replaces
// any prior record for the same (user, purpose); deletes are idempotent.
type Store interface {
	Put(ctx context.Context, record *Record) error
	Get(ctx context.Context, userID, tokenID string, purpose Purpose) (*Record, error)
	DeleteByUserAndPurpose(ctx context.Context, userID string, purpose Purpose) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// PairWriter is an optional store capability: persist an access and a refresh
// record as one atomic unit. The engine prefers it during issuance so a crash
// between the two writes cannot leave a half-issued pair.
type PairWriter interface {
	PutPair(ctx context.Context, access, refresh *Record) error
}
