package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDesignLoaded(ctx context.Context, event *domain.DesignLoadedEvent) error
}

// SessionStore keeps one AppState per session id.
// Load returns (nil, nil) for an unknown session.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.AppState, error)
	Save(ctx context.Context, id string, state *domain.AppState) error
	Delete(ctx context.Context, id string) error
}

// ErrCacheMiss is returned by CacheService.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// CacheService is a byte-oriented key/value store with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
