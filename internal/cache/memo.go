// Package cache memoizes query results for a bounded time.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cached result by query identity and parameter values.
type Key struct {
	Query  string
	Params []string
}

func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Query
	}
	return k.Query + "?" + strings.Join(k.Params, "&")
}

// Stats is a point-in-time snapshot of memo activity.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Memo is a TTL cache in front of expensive loads. Errors are never stored.
type Memo struct {
	store  *gocache.Cache
	group  singleflight.Group
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Memo whose entries expire after ttl.
func New(ttl time.Duration, logger *slog.Logger) *Memo {
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Memo{
		store:  gocache.New(ttl, cleanup),
		ttl:    ttl,
		logger: logger.With("component", "query_cache"),
	}
}

// Load returns the cached value for key or calls fn to produce it. Concurrent
// callers that miss on the same key share a single call to fn, which runs
// detached from the first caller's cancellation.
func Load[T any](ctx context.Context, m *Memo, key Key, fn func(context.Context) (T, error)) (T, error) {
	k := key.String()
	if v, ok := m.store.Get(k); ok {
		if typed, ok := v.(T); ok {
			m.hits.Add(1)
			return typed, nil
		}
		m.store.Delete(k)
	}

	v, err, shared := m.group.Do(k, func() (interface{}, error) {
		if cached, ok := m.store.Get(k); ok {
			return cached, nil
		}
		m.misses.Add(1)
		start := time.Now()
		val, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m.store.Set(k, val, m.ttl)
		m.logger.DebugContext(ctx, "Cached query result", "key", k, "ttl", m.ttl, "load_ms", time.Since(start).Milliseconds())
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %q has type %T", k, v)
	}
	if shared {
		m.logger.DebugContext(ctx, "Joined in-flight load", "key", k)
	}
	return typed, nil
}

// Invalidate drops one entry.
func (m *Memo) Invalidate(key Key) {
	m.store.Delete(key.String())
}

// Flush drops every entry and returns how many were removed.
func (m *Memo) Flush() int {
	n := m.store.ItemCount()
	m.store.Flush()
	m.logger.Info("Query cache flushed", "entries", n)
	return n
}

func (m *Memo) Stats() Stats {
	return Stats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: m.store.ItemCount(),
	}
}
