package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/annel0/objectkit/internal/config"
	"github.com/annel0/objectkit/internal/logging"
	"github.com/annel0/objectkit/internal/storage"
)

// CachedStore storage.DocumentStore с горячим кешем перед холодным
// хранилищем. Чтение идёт через кеш (read-through), запись сначала
// в хранилище, затем в кеш; другие узлы получают инвалидацию.
type CachedStore struct {
	cold        storage.DocumentStore
	hot         CacheRepo
	invalidator CacheInvalidator
	logger      *logging.Logger
}

// opPublisher — инвалидатор, который передаёт вид операции
type opPublisher interface {
	Publish(ctx context.Context, key, op string) error
}

// NewCachedStore создаёт хранилище с кешем; invalidator может быть nil.
func NewCachedStore(cold storage.DocumentStore, hot CacheRepo, invalidator CacheInvalidator) *CachedStore {
	return &CachedStore{
		cold:        cold,
		hot:         hot,
		invalidator: invalidator,
		logger:      logging.GetCacheLogger(),
	}
}

// Wrap оборачивает cold кешем по конфигурации. При выключенном кеше
// возвращает cold без изменений.
func Wrap(ctx context.Context, cfg config.CacheConfig, cold storage.DocumentStore) (storage.DocumentStore, error) {
	if !cfg.Enabled {
		return cold, nil
	}

	cacheCfg := CacheConfig{
		RedisAddr:    cfg.RedisAddr,
		DefaultTTL:   time.Duration(cfg.TTLSeconds) * time.Second,
		MaxCostBytes: int64(cfg.MaxSizeMB) << 20,
	}
	var (
		hot CacheRepo
		err error
	)
	if cfg.RedisAddr != "" {
		hot, err = NewRedisCache(ctx, cacheCfg)
	} else {
		hot, err = NewMemoryCache(cacheCfg)
	}
	if err != nil {
		return nil, err
	}

	var invalidator CacheInvalidator
	if cfg.InvalidationURL != "" {
		nodeID := cfg.NodeID
		if nodeID == "" {
			nodeID, _ = os.Hostname()
		}
		inv, err := NewNATSInvalidator(InvalidatorConfig{NATSURL: cfg.InvalidationURL}, nodeID)
		if err != nil {
			hot.Close()
			return nil, err
		}
		invalidator = inv
	}

	store := NewCachedStore(cold, hot, invalidator)
	if err := store.Listen(ctx); err != nil {
		invalidator.Close()
		hot.Close()
		return nil, err
	}
	store.logger.Info("🗄️  Кеш документов включён (redis=%q, invalidation=%q)", cfg.RedisAddr, cfg.InvalidationURL)
	return store, nil
}

// Listen удаляет из кеша ключи, изменённые другими узлами
func (s *CachedStore) Listen(ctx context.Context) error {
	if s.invalidator == nil {
		return nil
	}
	return s.invalidator.SubscribeInvalidations(ctx, func(key string) error {
		return s.hot.Delete(context.Background(), key)
	})
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.hot.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !IsCacheMiss(err) {
		// Недоступный кеш не должен мешать чтению
		s.logger.Warn("кеш недоступен для %s: %v", key, err)
	}

	data, err = s.cold.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.hot.Set(ctx, key, data, 0); err != nil {
		s.logger.Warn("не удалось сохранить %s в кеш: %v", key, err)
	}
	return data, nil
}

func (s *CachedStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.cold.Put(ctx, key, value); err != nil {
		return err
	}
	if err := s.hot.Set(ctx, key, value, 0); err != nil {
		// Старое значение в кеше хуже промаха
		_ = s.hot.Delete(ctx, key)
	}
	s.publish(ctx, key, OpPut)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	coldErr := s.cold.Delete(ctx, key)
	if coldErr != nil && !errors.Is(coldErr, storage.ErrNotFound) {
		return coldErr
	}
	if err := s.hot.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	s.publish(ctx, key, OpDelete)
	return coldErr
}

func (s *CachedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.cold.Keys(ctx, prefix)
}

// Close закрывает кеш, инвалидатор и холодное хранилище
func (s *CachedStore) Close() error {
	var errs []error
	if s.invalidator != nil {
		errs = append(errs, s.invalidator.Close())
	}
	errs = append(errs, s.hot.Close(), s.cold.Close())
	return errors.Join(errs...)
}

func (s *CachedStore) publish(ctx context.Context, key, op string) {
	if s.invalidator == nil {
		return
	}
	var err error
	if p, ok := s.invalidator.(opPublisher); ok {
		err = p.Publish(ctx, key, op)
	} else {
		err = s.invalidator.PublishInvalidation(ctx, key)
	}
	if err != nil {
		s.logger.Warn("инвалидация %s (%s) не отправлена: %v", key, op, err)
	}
}
