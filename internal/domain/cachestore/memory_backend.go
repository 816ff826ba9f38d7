package cachestore

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps values in process memory. Entries never expire on
// their own; TTLs are the Store's concern.
type MemoryBackend struct {
	mu       sync.Mutex
	cache    *cache.Cache
	maxBytes int
	used     int
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithMaxBytes caps the total stored value size. Writes beyond it fail with
// types.ErrQuotaExceeded.
func WithMaxBytes(n int) MemoryOption {
	return func(b *MemoryBackend) {
		b.maxBytes = n
	}
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		cache: cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := b.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := 0
	if v, found := b.cache.Get(key); found {
		prev = len(v.([]byte))
	}
	if b.maxBytes > 0 && b.used-prev+len(value) > b.maxBytes {
		return types.ErrQuotaExceeded
	}

	data := make([]byte, len(value))
	copy(data, value)
	b.cache.Set(key, data, cache.NoExpiration)
	b.used += len(value) - prev
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, key := range keys {
		if v, found := b.cache.Get(key); found {
			b.used -= len(v.([]byte))
			b.cache.Delete(key)
		}
	}
	return nil
}

// Len reports how many keys are stored.
func (b *MemoryBackend) Len() int {
	return b.cache.ItemCount()
}
