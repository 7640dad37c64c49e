package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per (user, purpose) so a plain SET is the upsert
// that enforces the single-current-record invariant. Keys carry a TTL equal
// to the token's remaining lifetime, so expired records vanish on their own.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a token record store backed by the given Redis
// client. An empty prefix defaults to "gg".
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gg"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(userID string, purpose Purpose) string {
	return s.prefix + ":tok:" + userID + ":" + purpose.String()
}

// Put upserts the record, replacing any prior record for the same
// (user, purpose).
func (s *RedisStore) Put(ctx context.Context, record *Record) error {
	encoded, ttl, err := s.prepare(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(record.UserID, record.Purpose), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// PutPair writes both records of a freshly issued pair inside one MULTI/EXEC
// transaction, so a half-written pair is never observable.
func (s *RedisStore) PutPair(ctx context.Context, access, refresh *Record) error {
	accessEncoded, accessTTL, err := s.prepare(access)
	if err != nil {
		return err
	}
	refreshEncoded, refreshTTL, err := s.prepare(refresh)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(access.UserID, access.Purpose), accessEncoded, accessTTL)
		pipe.Set(ctx, s.key(refresh.UserID, refresh.Purpose), refreshEncoded, refreshTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Get performs the point lookup for (user, tokenID, purpose). A live record
// for the same slot but a different tokenID is not a match.
func (s *RedisStore) Get(ctx context.Context, userID, tokenID string, purpose Purpose) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(userID, purpose)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if record.TokenID != tokenID {
		return nil, ErrNotFound
	}

	return record, nil
}

// DeleteByUserAndPurpose drops the current record for one slot. Deleting an
// absent record is not an error.
func (s *RedisStore) DeleteByUserAndPurpose(ctx context.Context, userID string, purpose Purpose) error {
	if err := s.redis.Del(ctx, s.key(userID, purpose)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DeleteAllForUser drops every live record owned by the user.
func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID string) error {
	keys := []string{
		s.key(userID, PurposeAccess),
		s.key(userID, PurposeRefresh),
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping measures one round-trip to the backing Redis.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *RedisStore) prepare(record *Record) ([]byte, time.Duration, error) {
	encoded, err := Encode(record)
	if err != nil {
		return nil, 0, err
	}

	ttl := time.Unix(record.ExpiresAt, 0).Sub(s.now())
	if ttl <= 0 {
		return nil, 0, errors.New("record expires in the past")
	}

	return encoded, ttl, nil
}
