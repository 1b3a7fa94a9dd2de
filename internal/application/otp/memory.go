package otp

import (
	"context"
	"sync"
	"time"
)

type entryKey struct {
	identity string
	purpose  Purpose
}

// MemoryStore keeps entries in a mutex-guarded map. Suitable for a single
// instance; multi-instance deployments should use the Redis or DynamoDB
// store so all instances observe the same ledger state.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[entryKey]Entry)}
}

func (s *MemoryStore) Save(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey{e.Identity, e.Purpose}] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identity string, purpose Purpose) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryKey{identity, purpose}]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) Delete(_ context.Context, identity string, purpose Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, entryKey{identity, purpose})
	return nil
}

func (s *MemoryStore) IncrementAttempts(_ context.Context, identity string, purpose Purpose) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := entryKey{identity, purpose}
	e, ok := s.entries[k]
	if !ok {
		return 0, ErrNotFound
	}
	e.Attempts++
	s.entries[k] = e
	return e.Attempts, nil
}

func (s *MemoryStore) MarkUsed(_ context.Context, identity string, purpose Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := entryKey{identity, purpose}
	e, ok := s.entries[k]
	if !ok {
		return ErrNotFound
	}
	e.Used = true
	s.entries[k] = e
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if e.Used || now.After(e.ExpiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

type window struct {
	count     int
	windowEnd time.Time
}

// MemoryRateLimiter counts issuances per identity in a rolling window.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (r *MemoryRateLimiter) CheckAndIncrement(_ context.Context, identity string, limit int, dur time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[identity]
	if !ok || now.After(w.windowEnd) {
		r.windows[identity] = &window{count: 1, windowEnd: now.Add(dur)}
		return nil
	}
	if w.count >= limit {
		return ErrRateLimited
	}
	w.count++
	return nil
}

// Sweep drops windows past their reset time.
func (r *MemoryRateLimiter) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, w := range r.windows {
		if now.After(w.windowEnd) {
			delete(r.windows, id)
			removed++
		}
	}
	return removed, nil
}
