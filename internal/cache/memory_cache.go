package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryCache локальный кеш узла на ristretto. Стоимость записи
// равна размеру документа в байтах.
type MemoryCache struct {
	cache  *ristretto.Cache
	config CacheConfig
}

// NewMemoryCache создаёт локальный кеш
func NewMemoryCache(config CacheConfig) (*MemoryCache, error) {
	config.applyDefaults()
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     config.MaxCostBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &MemoryCache{cache: c, config: config}, nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	data := v.([]byte)
	return append([]byte(nil), data...), nil
}

// Set сохраняет копию value. ristretto применяет записи асинхронно,
// поэтому Set дожидается их применения.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	data := append([]byte(nil), value...)
	m.cache.SetWithTTL(key, data, int64(len(data))+1, m.config.clampTTL(ttl))
	m.cache.Wait()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.cache.Del(key)
	return nil
}

func (m *MemoryCache) Close() error {
	m.cache.Close()
	return nil
}

func (m *MemoryCache) GetMetrics() *CacheMetrics {
	return newCacheMetrics(int64(m.cache.Metrics.Hits()), int64(m.cache.Metrics.Misses()))
}
