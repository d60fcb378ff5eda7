package cache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/objectkit/internal/config"
	"github.com/annel0/objectkit/internal/storage"
)

// localInvalidator шина инвалидаций в памяти для нескольких узлов
type localInvalidator struct {
	mu       sync.Mutex
	handlers []InvalidationHandler
	self     int
	peers    *[]*localInvalidator
}

func newCluster(n int) []*localInvalidator {
	nodes := make([]*localInvalidator, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, &localInvalidator{self: i, peers: &nodes})
	}
	return nodes
}

func (l *localInvalidator) PublishInvalidation(ctx context.Context, key string) error {
	for _, peer := range *l.peers {
		if peer == l {
			continue
		}
		peer.mu.Lock()
		handlers := append([]InvalidationHandler(nil), peer.handlers...)
		peer.mu.Unlock()
		for _, h := range handlers {
			if err := h(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *localInvalidator) SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, handler)
	return nil
}

func (l *localInvalidator) Close() error { return nil }

func newMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(CacheConfig{})
	require.NoError(t, err)
	return c
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)
	defer c.Close()

	_, err := c.Get(ctx, "project:game")
	assert.True(t, IsCacheMiss(err))

	value := []byte(`{"objects":[]}`)
	require.NoError(t, c.Set(ctx, "project:game", value, 0))
	value[0] = 'X'

	got, err := c.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, `{"objects":[]}`, string(got))

	require.NoError(t, c.Delete(ctx, "project:game"))
	_, err = c.Get(ctx, "project:game")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.ErrorIs(t, c.Set(ctx, "", value, 0), ErrInvalidKey)

	m := c.GetMetrics()
	assert.Equal(t, int64(1), m.CacheHits)
	assert.Equal(t, int64(2), m.CacheMisses)
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	cold := storage.NewMemoryStore()
	hot := newMemoryCache(t)
	store := NewCachedStore(cold, hot, nil)
	defer store.Close()

	require.NoError(t, cold.Put(ctx, "project:game", []byte("v1")))

	got, err := store.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	cached, err := hot.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(cached))

	require.NoError(t, store.Put(ctx, "project:game", []byte("v2")))
	got, err = store.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	keys, err := store.Keys(ctx, "project:")
	require.NoError(t, err)
	assert.Equal(t, []string{"project:game"}, keys)

	require.NoError(t, store.Delete(ctx, "project:game"))
	_, err = store.Get(ctx, "project:game")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "project:game"), storage.ErrNotFound)
}

func TestCachedStoreInvalidatesPeers(t *testing.T) {
	ctx := context.Background()
	cold := storage.NewMemoryStore()
	cluster := newCluster(2)

	nodeA := NewCachedStore(cold, newMemoryCache(t), cluster[0])
	nodeB := NewCachedStore(cold, newMemoryCache(t), cluster[1])
	require.NoError(t, nodeA.Listen(ctx))
	require.NoError(t, nodeB.Listen(ctx))

	require.NoError(t, nodeA.Put(ctx, "project:game", []byte("v1")))
	got, err := nodeB.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	// Без инвалидации узел B отдал бы v1 из своего кеша
	require.NoError(t, nodeA.Put(ctx, "project:game", []byte("v2")))
	got, err = nodeB.Get(ctx, "project:game")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestWrapDisabledReturnsColdStore(t *testing.T) {
	cold := storage.NewMemoryStore()
	store, err := Wrap(context.Background(), config.CacheConfig{}, cold)
	require.NoError(t, err)
	assert.Same(t, cold, store)

	wrapped, err := Wrap(context.Background(), config.CacheConfig{Enabled: true, TTLSeconds: 60, MaxSizeMB: 1}, cold)
	require.NoError(t, err)
	_, ok := wrapped.(*CachedStore)
	assert.True(t, ok)
	require.NoError(t, wrapped.Close())
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("OBJECTKIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OBJECTKIT_TEST_REDIS_ADDR не задан")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, CacheConfig{RedisAddr: addr, KeyPrefix: "objectkit:test:cache:"})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNATSInvalidator(t *testing.T) {
	url := os.Getenv("OBJECTKIT_TEST_NATS_URL")
	if url == "" {
		t.Skip("OBJECTKIT_TEST_NATS_URL не задан")
	}
	ctx := context.Background()
	subject := "objectkit.test.invalidation." + time.Now().Format("150405.000")

	a, err := NewNATSInvalidator(InvalidatorConfig{NATSURL: url, Subject: subject}, "a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewNATSInvalidator(InvalidatorConfig{NATSURL: url, Subject: subject}, "b")
	require.NoError(t, err)
	defer b.Close()

	received := make(chan string, 1)
	require.NoError(t, b.SubscribeInvalidations(ctx, func(key string) error {
		received <- key
		return nil
	}))
	require.NoError(t, a.PublishInvalidation(ctx, "project:game"))

	select {
	case key := <-received:
		assert.Equal(t, "project:game", key)
	case <-time.After(2 * time.Second):
		t.Fatal("инвалидация не доставлена")
	}

	// повтор того же ключа в окне дедупликации не доставляется
	require.NoError(t, a.Publish(ctx, "project:game", OpDelete))
	require.NoError(t, a.Publish(ctx, "user:alice", OpPut))
	select {
	case key := <-received:
		assert.Equal(t, "user:alice", key)
	case <-time.After(2 * time.Second):
		t.Fatal("инвалидация не доставлена")
	}

	assert.Equal(t, int64(3), a.Stats().Published)
	assert.Eventually(t, func() bool {
		st := b.Stats()
		return st.Received == 2 && st.Skipped == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInvalidationSubjects(t *testing.T) {
	cfg := InvalidatorConfig{}
	cfg.applyDefaults()
	n := &NATSInvalidator{config: cfg}

	assert.Equal(t, "objectkit.cache.invalidation.project", n.subjectFor("project:game"))
	assert.Equal(t, "objectkit.cache.invalidation.user", n.subjectFor("user:alice"))
	assert.Equal(t, "objectkit.cache.invalidation.misc", n.subjectFor("plain"))
}

func TestInvalidatorDedupe(t *testing.T) {
	cfg := InvalidatorConfig{DedupeWindow: time.Hour}
	cfg.applyDefaults()
	n := &NATSInvalidator{config: cfg, nodeID: "self", seen: map[string]time.Time{}}

	assert.False(t, n.accept(InvalidationMessage{Key: "project:a", NodeID: "self"}))
	assert.True(t, n.accept(InvalidationMessage{Key: "project:a", NodeID: "peer"}))
	assert.False(t, n.accept(InvalidationMessage{Key: "project:a", NodeID: "peer"}))
	assert.True(t, n.accept(InvalidationMessage{Key: "project:b", NodeID: "peer"}))
}
