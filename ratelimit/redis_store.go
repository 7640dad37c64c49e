package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBucketStore shares request budgets across process replicas. Each Take
// runs as a WATCH/MULTI optimistic transaction with bounded retries, so the
// get-or-create of a new bucket and the refill-and-consume mutation stay
// atomic per key under contention. Bucket keys expire after two idle
// windows, which keeps the keyspace bounded without an explicit sweeper.
type RedisBucketStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisBucketStore creates a bucket store backed by the given Redis
// client. An empty prefix defaults to "gg".
func NewRedisBucketStore(redisClient redis.UniversalClient, prefix string) *RedisBucketStore {
	if prefix == "" {
		prefix = "gg"
	}
	return &RedisBucketStore{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

// Take admits or rejects one request against the shared bucket for key.
func (s *RedisBucketStore) Take(ctx context.Context, key string, capacity int, window time.Duration) (bool, error) {
	const maxRetries = 4
	fullKey := s.prefix + ":rl:" + key

	for i := 0; i < maxRetries; i++ {
		var allowed bool

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			now := s.now()

			var state BucketState
			data, err := tx.Get(ctx, fullKey).Bytes()
			switch {
			case err == nil:
				decoded, ok := decodeBucket(data)
				if !ok {
					// Corrupt state resets to a full bucket rather
					// than locking the key out forever.
					decoded = newBucketState(capacity, now)
				}
				state = decoded
			case errors.Is(err, redis.Nil):
				state = newBucketState(capacity, now)
			default:
				return err
			}

			state.refill(capacity, window, now)
			allowed = state.take()

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, fullKey, encodeBucket(state), 2*window)
				return nil
			})
			return err
		}, fullKey)

		if err == nil {
			return allowed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return false, fmt.Errorf("%w: transaction retries exhausted", ErrUnavailable)
}
