package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iac-studio/dashboard/internal/models"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
)

const keyPrefix = "dashboard:snapshot:"

// RedisStore shares snapshots between dashboard replicas.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.ProjectSnapshot, bool, error) {
	b, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, appErr.Wrap(err, appErr.CodeUnavailable, "read snapshot from redis failed")
	}
	var snap models.ProjectSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		// A snapshot we cannot read is as good as a miss.
		_ = s.rdb.Del(ctx, keyPrefix+key).Err()
		return nil, false, nil
	}
	return &snap, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, snap *models.ProjectSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode snapshot failed")
	}
	if err := s.rdb.Set(ctx, keyPrefix+key, b, s.ttl).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "write snapshot to redis failed")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "delete snapshot from redis failed")
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "redis ping failed")
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
