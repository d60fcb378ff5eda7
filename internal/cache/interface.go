// Package cache реализует горячий кеш документов проектов поверх storage.DocumentStore.
//
// Использование:
//
//	hot, _ := cache.NewMemoryCache(cache.CacheConfig{})
//	store := cache.NewCachedStore(cold, hot, invalidator)
//	data, err := store.Get(ctx, "project:game")
package cache

import (
	"context"
	"errors"
	"time"
)

// CacheRepo определяет интерфейс кеша документов.
type CacheRepo interface {
	// Get получает значение по ключу из кеша.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с указанным TTL.
	// TTL = 0 означает TTL по умолчанию из конфигурации.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ из кеша.
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с кешем.
	Close() error

	// GetMetrics возвращает метрики кеша.
	GetMetrics() *CacheMetrics
}

// CacheInvalidator управляет инвалидацией кеша между узлами через Pub/Sub.
type CacheInvalidator interface {
	// PublishInvalidation отправляет уведомление об инвалидации.
	PublishInvalidation(ctx context.Context, key string) error

	// SubscribeInvalidations подписывается на уведомления других узлов.
	SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error

	// Close закрывает соединение.
	Close() error
}

// InvalidationHandler обрабатывает уведомления об инвалидации кеша.
type InvalidationHandler func(key string) error

// CacheMetrics содержит метрики кеша.
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatio      float64 `json:"hit_ratio"`

	LastUpdate time.Time `json:"last_update"`
}

// CacheConfig содержит конфигурацию кеша.
type CacheConfig struct {
	// Redis; пустой адрес означает локальный кеш в памяти
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	// TTL настройки
	DefaultTTL time.Duration
	MaxTTL     time.Duration

	// MaxCostBytes ограничивает объём локального кеша
	MaxCostBytes int64
}

func (c *CacheConfig) applyDefaults() {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = 5 * time.Minute
	}
	if c.MaxTTL == 0 {
		c.MaxTTL = time.Hour
	}
	if c.MaxCostBytes == 0 {
		c.MaxCostBytes = 64 << 20
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "objectkit:cache:"
	}
}

// clampTTL приводит ttl к диапазону (0, MaxTTL]
func (c *CacheConfig) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.DefaultTTL
	}
	if ttl > c.MaxTTL {
		ttl = c.MaxTTL
	}
	return ttl
}

// Ошибки кеша
var (
	ErrCacheMiss  = errors.New("cache miss")
	ErrInvalidKey = errors.New("invalid key")
)

// IsCacheMiss проверяет, является ли ошибка промахом кеша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func newCacheMetrics(hits, misses int64) *CacheMetrics {
	m := &CacheMetrics{
		TotalRequests: hits + misses,
		CacheHits:     hits,
		CacheMisses:   misses,
		LastUpdate:    time.Now(),
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(hits) / float64(m.TotalRequests)
	}
	return m
}
