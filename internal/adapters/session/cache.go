package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/pkg/metrics"
)

const keyPrefix = "session:"

// CacheStore implements ports.SessionStore on a key/value cache, storing each
// AppState as JSON. Saving refreshes the expiry.
type CacheStore struct {
	cache      ports.CacheService
	ttlSeconds int
}

// NewCacheStore creates a CacheStore.
func NewCacheStore(cache ports.CacheService, ttlSeconds int) *CacheStore {
	return &CacheStore{cache: cache, ttlSeconds: ttlSeconds}
}

func (s *CacheStore) Load(ctx context.Context, id string) (*domain.AppState, error) {
	data, err := s.cache.Get(ctx, keyPrefix+id)
	if errors.Is(err, ports.ErrCacheMiss) {
		metrics.SessionMisses.WithLabelValues("valkey").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st domain.AppState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	metrics.SessionHits.WithLabelValues("valkey").Inc()
	return &st, nil
}

func (s *CacheStore) Save(ctx context.Context, id string, st *domain.AppState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	return s.cache.Set(ctx, keyPrefix+id, data, s.ttlSeconds)
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
