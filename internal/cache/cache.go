// Package cache keeps the client-local copies of project snapshots. Entries
// are only ever replaced or dropped, never patched in place.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iac-studio/dashboard/internal/models"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
)

// Store holds project snapshots by key.
type Store interface {
	Get(ctx context.Context, key string) (*models.ProjectSnapshot, bool, error)
	Set(ctx context.Context, key string, snap *models.ProjectSnapshot) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and sizes a Store.
type Options struct {
	Backend       string // memory or redis
	Size          int
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
}

// New builds the store named by opts.Backend.
func New(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(opts.Size, opts.TTL), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       0,
		})
		return NewRedisStore(rdb, opts.TTL), nil
	default:
		return nil, appErr.New(appErr.CodeInvalid, "unknown cache backend "+opts.Backend)
	}
}
