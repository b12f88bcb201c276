package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value      string
	expiration time.Time
}

// MemoryStore keeps entries in process. It stands in for an external service
// in tests and local runs.
type MemoryStore struct {
	data   map[string]*entry
	mu     sync.Mutex
	now    func() time.Time
	closed bool
	stop   chan struct{}
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) MemoryOption {
	return func(ms *MemoryStore) {
		ms.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		data: make(map[string]*entry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(store)
	}

	go store.cleanupExpired(5 * time.Minute)

	return store
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return "", ErrClosed
	}

	entry, exists := ms.data[key]
	if !exists {
		return "", ErrNotFound
	}

	if !ms.now().Before(entry.expiration) {
		delete(ms.data, key)
		return "", ErrNotFound
	}

	return entry.value, nil
}

func (ms *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed
	}

	ms.data[key] = &entry{
		value:      value,
		expiration: ms.now().Add(ttl),
	}

	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return ErrClosed
	}

	delete(ms.data, key)
	return nil
}

// Len reports the number of entries held, expired ones included until swept.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.data)
}

func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return nil
	}
	ms.closed = true
	ms.data = nil
	close(ms.stop)
	return nil
}

// Sweep drops every expired entry.
func (ms *MemoryStore) Sweep() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	for key, entry := range ms.data {
		if !now.Before(entry.expiration) {
			delete(ms.data, key)
		}
	}
}

func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.Sweep()
		}
	}
}
