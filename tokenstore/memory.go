package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore is a process-local [Store] for tests and single-node
// embedding. Records are held until replaced or deleted; the engine's expiry
// check makes stale entries harmless, and Purge is available for callers
// that care about memory in long-running processes.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-process token record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func memoryKey(userID string, purpose Purpose) string {
	return userID + ":" + purpose.String()
}

// Put upserts the record for its (user, purpose) slot.
func (s *MemoryStore) Put(_ context.Context, record *Record) error {
	clone := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memoryKey(record.UserID, record.Purpose)] = &clone

	return nil
}

// PutPair stores both records under one lock acquisition.
func (s *MemoryStore) PutPair(_ context.Context, access, refresh *Record) error {
	accessClone := *access
	refreshClone := *refresh

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memoryKey(access.UserID, access.Purpose)] = &accessClone
	s.records[memoryKey(refresh.UserID, refresh.Purpose)] = &refreshClone

	return nil
}

// Get performs the point lookup for (user, tokenID, purpose).
func (s *MemoryStore) Get(_ context.Context, userID, tokenID string, purpose Purpose) (*Record, error) {
	s.mu.RLock()
	record, ok := s.records[memoryKey(userID, purpose)]
	s.mu.RUnlock()

	if !ok || record.TokenID != tokenID {
		return nil, ErrNotFound
	}

	clone := *record
	return &clone, nil
}

// DeleteByUserAndPurpose drops one slot; absent records are ignored.
func (s *MemoryStore) DeleteByUserAndPurpose(_ context.Context, userID string, purpose Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, memoryKey(userID, purpose))
	return nil
}

// DeleteAllForUser drops both purpose slots for the user.
func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, memoryKey(userID, PurposeAccess))
	delete(s.records, memoryKey(userID, PurposeRefresh))
	return nil
}

// Purge removes records that expired before the given unix timestamp and
// reports how many were dropped.
func (s *MemoryStore) Purge(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, record := range s.records {
		if record.ExpiresAt <= now {
			delete(s.records, key)
			dropped++
		}
	}
	return dropped
}
