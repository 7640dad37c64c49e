package ratelimit

import (
	"context"
	"sync"
	"time"
)

// BucketStore applies one token-bucket admission check atomically per key:
// lazy creation of a full bucket, refill, and consumption happen as a single
// unit with respect to concurrent callers of the same key. Contention on one
// key must not serialize takes on other keys.
type BucketStore interface {
	Take(ctx context.Context, key string, capacity int, window time.Duration) (bool, error)
}

type memoryBucket struct {
	mu    sync.Mutex
	state BucketState
}

// MemoryBucketStore is the process-local [BucketStore]. The key map is
// guarded by one mutex held only for lookup/insert; each bucket carries its
// own lock for the refill-and-consume mutation.
type MemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

// NewMemoryBucketStore creates an empty in-process bucket store.
func NewMemoryBucketStore() *MemoryBucketStore {
	return &MemoryBucketStore{
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
}

// Take admits or rejects one request against the bucket for key.
func (s *MemoryBucketStore) Take(_ context.Context, key string, capacity int, window time.Duration) (bool, error) {
	now := s.now()

	s.mu.Lock()
	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &memoryBucket{state: newBucketState(capacity, now)}
		s.buckets[key] = bucket
	}
	s.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.state.refill(capacity, window, now)
	return bucket.state.take(), nil
}

// Len reports how many buckets are currently tracked.
func (s *MemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Sweep drops buckets whose last refill is older than maxIdle, bounding
// memory in long-running processes. Callers decide the cadence; a sweep
// racing an active key is harmless because a dropped bucket is recreated
// full, which only errs in the caller's favor by at most one burst.
func (s *MemoryBucketStore) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, bucket := range s.buckets {
		bucket.mu.Lock()
		idle := bucket.state.LastRefill < cutoff
		bucket.mu.Unlock()
		if idle {
			delete(s.buckets, key)
			dropped++
		}
	}
	return dropped
}
