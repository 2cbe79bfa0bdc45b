package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/iac-studio/dashboard/internal/models"
)

// MemoryStore is a size-bounded, expiring in-process store.
type MemoryStore struct {
	lru *expirable.LRU[string, models.ProjectSnapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding at most size snapshots for ttl each.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 1024
	}
	return &MemoryStore{lru: expirable.NewLRU[string, models.ProjectSnapshot](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.ProjectSnapshot, bool, error) {
	v, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, snap *models.ProjectSnapshot) error {
	s.lru.Add(key, *snap)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.lru.Purge()
	return nil
}
