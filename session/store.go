package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps the set of live sessions. A session that is not in the store
// is treated as logged out even when its token is still within its expiry.
type Store interface {
	Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(sessionID string) string {
	return "session:" + sessionID
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, redisKey(sessionID), strconv.FormatInt(userID, 10), ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	userID, err := s.rdb.Get(ctx, redisKey(sessionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrUnauthorized
	}
	return userID, err
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, redisKey(sessionID)).Err()
}
