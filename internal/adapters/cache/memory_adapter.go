package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is a process-local CacheProvider used when Redis is
// disabled and in tests.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryAdapter creates an empty in-process cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok || a.expired(entry) {
		return nil, providers.ErrCacheMiss
	}
	return entry.value, nil
}

// GetMulti retrieves several values; missing keys are omitted
func (a *MemoryAdapter) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, err := a.Get(ctx, key); err == nil {
			out[key] = value
		}
	}
	return out, nil
}

// Set stores a value; non-positive expirations never expire
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}

	a.mu.Lock()
	a.entries[key] = entry
	a.mu.Unlock()
	return nil
}

// SetMulti stores several values with the same expiration
func (a *MemoryAdapter) SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error {
	for key, value := range items {
		if err := a.Set(ctx, key, value, expirationSeconds); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

func (a *MemoryAdapter) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !a.now().Before(entry.expiresAt)
}
