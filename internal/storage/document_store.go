// Package storage хранит документы проектов. Бэкенды взаимозаменяемы
// и выбираются конфигурацией: badger, память, Redis, MongoDB или MariaDB.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/objectkit/internal/config"
)

// ErrNotFound возвращается, если документа с таким ключом нет
var ErrNotFound = errors.New("документ не найден")

// DocumentStore хранит непрозрачные документы по строковому ключу.
type DocumentStore interface {
	// Put сохраняет документ, перезаписывая предыдущую версию.
	Put(ctx context.Context, key string, data []byte) error

	// Get загружает документ. Возвращает ErrNotFound, если его нет.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete удаляет документ. Возвращает ErrNotFound, если его нет.
	Delete(ctx context.Context, key string) error

	// Keys возвращает отсортированные ключи с префиксом prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close освобождает ресурсы хранилища.
	Close() error
}

// Open открывает хранилище по конфигурации. При включённом сжатии
// хранилище оборачивается в CompressedStore.
func Open(ctx context.Context, cfg config.StorageConfig) (DocumentStore, error) {
	var (
		store DocumentStore
		err   error
	)

	switch strings.ToLower(cfg.Backend) {
	case "", "badger":
		store, err = NewBadgerStore(cfg.Path)
	case "memory":
		store = NewMemoryStore()
	case "redis":
		store, err = NewRedisStore(ctx, &RedisConfig{Addr: cfg.RedisAddr})
	case "mongo":
		store, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDB})
	case "maria":
		store, err = NewMariaStore(ctx, cfg.MariaDSN)
	default:
		return nil, fmt.Errorf("неизвестное хранилище %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Compression {
		return store, nil
	}
	compressed, err := NewCompressedStore(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return compressed, nil
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("пустой ключ документа")
	}
	return nil
}
