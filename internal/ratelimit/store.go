// Package ratelimit holds fixed-window request counters. The store is an
// explicit value owned by the process that serves requests; nothing here is
// package-level state.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Decision is the outcome of counting one request against a key.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter reports how long the caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.Before(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Store counts hits per key within a fixed window.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error)
}

var errInvalidLimit = errors.New("ratelimit: limit and window must be positive")

type counter struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in a map guarded by a mutex. Expired entries are
// replaced on access and removed by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*counter)}
}

func (s *MemoryStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	if limit <= 0 || window <= 0 {
		return Decision{}, errInvalidLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	if c.count > limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: c.resetAt}, nil
	}
	return Decision{Allowed: true, Remaining: limit - c.count, ResetAt: c.resetAt}, nil
}

// Sweep drops every counter whose window ended before now and returns how
// many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.resetAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// StartJanitor sweeps expired counters every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}

var _ Store = (*MemoryStore)(nil)
