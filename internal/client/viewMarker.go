package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"codefriend-store/internal/config"
)

// ViewMarkerStore deduplicates product views: MarkViewed reports true only
// for the first call per (requester, product) within the ttl window.
type ViewMarkerStore interface {
	MarkViewed(ctx context.Context, requester, productID string, ttl time.Duration) (bool, error)
}

type redisViewMarkerStore struct {
	rdb *redis.Client
}

func NewRedisViewMarkerStore(cfg *config.Redis) ViewMarkerStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisViewMarkerStore{rdb: rdb}
}

func (s *redisViewMarkerStore) MarkViewed(ctx context.Context, requester, productID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("view:%s:%s", productID, requester)
	ok, err := s.rdb.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

type memoryViewMarkerStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryViewMarkerStore is the redis-less fallback for development and
// tests. Markers live in process memory only.
func NewMemoryViewMarkerStore() ViewMarkerStore {
	return &memoryViewMarkerStore{
		seen: map[string]time.Time{},
	}
}

func (s *memoryViewMarkerStore) MarkViewed(_ context.Context, requester, productID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("view:%s:%s", productID, requester)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expires, ok := s.seen[key]; ok && now.Before(expires) {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}
