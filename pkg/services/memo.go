package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// memo is a read-through cache that keeps every successfully fetched value
// for the life of the process. Concurrent lookups of a key that is being
// fetched wait for that fetch instead of starting another one. Failed fetches
// are not remembered.
type memo[T any] struct {
	name   string
	mu     sync.RWMutex
	values map[string]T
	group  singleflight.Group
	logger *zap.Logger
}

func newMemo[T any](name string, logger *zap.Logger) *memo[T] {
	return &memo[T]{
		name:   name,
		values: make(map[string]T),
		logger: logger,
	}
}

func (m *memo[T]) lookup(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memo[T]) store(key string, v T) {
	m.mu.Lock()
	m.values[key] = v
	m.mu.Unlock()
}

// get returns the cached value for key, fetching it on a miss. The fetch runs
// detached from the caller's cancellation so other waiters still get the
// result when the first caller gives up; each caller stops waiting when its
// own context is done.
func (m *memo[T]) get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := m.lookup(key); ok {
		mCacheRequests.WithLabelValues(m.name, cacheHit).Inc()
		return v, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (interface{}, error) {
		// A fetch for key may have completed between the lookup and DoChan.
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		m.logger.Debug("Cache miss, fetching", zap.String("cache", m.name), zap.String("key", key))
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		m.store(key, v)
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			mCacheRequests.WithLabelValues(m.name, cacheError).Inc()
			return zero, res.Err
		}
		if res.Shared {
			mCacheRequests.WithLabelValues(m.name, cacheShared).Inc()
		} else {
			mCacheRequests.WithLabelValues(m.name, cacheMiss).Inc()
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// size returns the number of cached entries.
func (m *memo[T]) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
