package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/hskbot/internal/quiz"
)

const (
	redisKeyPrefix    = "quiz:session:"
	redisWatchRetries = 5
)

// RedisStore keeps sessions in redis so they survive restarts and can be
// shared by replicas. Per-user serialization uses WATCH-based optimistic
// transactions: a concurrent write to the same key fails the transaction
// and the mutation re-reads and retries. The key TTL is the idle window;
// every write refreshes it, so redis handles eviction natively.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an already connected client.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

// Mutate implements Store.
func (r *RedisStore) Mutate(ctx context.Context, userID int64, fn func(*quiz.Session) error) error {
	key := redisKey(userID)

	var lastErr error
	for attempt := 0; attempt < redisWatchRetries; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			sess, err := r.load(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := fn(sess); err != nil {
				return err
			}
			raw, err := json.Marshal(sess)
			if err != nil {
				return fmt.Errorf("session: marshal: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, raw, r.ttl)
				return nil
			})
			return err
		}, key)

		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("session: mutate contention for user %d: %w", userID, lastErr)
}

func (r *RedisStore) load(ctx context.Context, c redis.Cmdable, userID int64) (*quiz.Session, error) {
	raw, err := c.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return quiz.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var sess quiz.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &sess, nil
}

// Peek implements Store. The TTL is refreshed on read so an active
// conversation is never evicted between prompt and answer.
func (r *RedisStore) Peek(ctx context.Context, userID int64) (*quiz.Session, bool, error) {
	raw, err := r.client.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session: get: %w", err)
	}
	var sess quiz.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, false, fmt.Errorf("session: unmarshal: %w", err)
	}
	_ = r.client.Expire(ctx, redisKey(userID), r.ttl).Err()
	return &sess, true, nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, redisKey(userID)).Err()
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
