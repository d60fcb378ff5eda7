package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/annel0/objectkit/internal/logging"
)

// Операции, после которых рассылается инвалидация
const (
	OpPut    = "put"
	OpDelete = "delete"
)

// InvalidatorConfig содержит конфигурацию для NATS invalidator.
type InvalidatorConfig struct {
	NATSURL string
	// Subject — корень тем; ключ "project:game" уходит в <Subject>.project
	Subject string

	MaxReconnects int
	ReconnectWait time.Duration

	DedupeWindow   time.Duration
	PublishTimeout time.Duration
}

func (c *InvalidatorConfig) applyDefaults() {
	if c.Subject == "" {
		c.Subject = "objectkit.cache.invalidation"
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 10
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.DedupeWindow == 0 {
		c.DedupeWindow = time.Second
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = 5 * time.Second
	}
}

// InvalidationMessage — сообщение об изменении документа на другом узле
type InvalidationMessage struct {
	Key       string    `json:"key"`
	Op        string    `json:"op"`
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
}

// InvalidatorStats — счётчики рассылки
type InvalidatorStats struct {
	Published int64 `json:"published"`
	Received  int64 `json:"received"`
	Skipped   int64 `json:"skipped"`
	Errors    int64 `json:"errors"`
	Connected bool  `json:"connected"`
}

// NATSInvalidator реализует CacheInvalidator через NATS Pub/Sub.
// Узел игнорирует собственные сообщения и повторы одного ключа в окне дедупликации.
type NATSInvalidator struct {
	conn   *nats.Conn
	config InvalidatorConfig
	nodeID string

	mu     sync.Mutex
	sub    *nats.Subscription
	seen   map[string]time.Time
	stats  InvalidatorStats
	closed bool
}

// NewNATSInvalidator подключается к NATS
func NewNATSInvalidator(config InvalidatorConfig, nodeID string) (*NATSInvalidator, error) {
	config.applyDefaults()

	conn, err := nats.Connect(config.NATSURL,
		nats.Name("objectkit-cache-"+nodeID),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("⚠️ NATS инвалидации отключён: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("🔄 NATS инвалидации переподключён к %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к NATS %s: %w", config.NATSURL, err)
	}

	logging.Info("📡 Инвалидация кеша через NATS: %s (%s.>)", config.NATSURL, config.Subject)
	return &NATSInvalidator{
		conn:   conn,
		config: config,
		nodeID: nodeID,
		seen:   make(map[string]time.Time),
	}, nil
}

// subjectFor возвращает тему для ключа по его пространству имён
func (n *NATSInvalidator) subjectFor(key string) string {
	namespace := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 {
		namespace = key[:i]
	}
	return n.config.Subject + "." + namespace
}

// PublishInvalidation сообщает другим узлам об изменении key
func (n *NATSInvalidator) PublishInvalidation(ctx context.Context, key string) error {
	return n.Publish(ctx, key, OpPut)
}

// Publish отправляет инвалидацию с указанием операции и ждёт подтверждения сервера
func (n *NATSInvalidator) Publish(ctx context.Context, key, op string) error {
	data, err := json.Marshal(InvalidationMessage{
		Key:       key,
		Op:        op,
		NodeID:    n.nodeID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := n.conn.Publish(n.subjectFor(key), data); err != nil {
		n.count(func(s *InvalidatorStats) { s.Errors++ })
		return fmt.Errorf("ошибка публикации инвалидации %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.config.PublishTimeout)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		n.count(func(s *InvalidatorStats) { s.Errors++ })
		return fmt.Errorf("ошибка отправки инвалидации %s: %w", key, err)
	}

	n.count(func(s *InvalidatorStats) { s.Published++ })
	return nil
}

// SubscribeInvalidations подписывается на все пространства ключей.
// Подписка снимается при отмене ctx или Close.
func (n *NATSInvalidator) SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return fmt.Errorf("invalidator закрыт")
	}
	if n.sub != nil {
		return fmt.Errorf("подписка на инвалидации уже есть")
	}

	sub, err := n.conn.Subscribe(n.config.Subject+".>", func(msg *nats.Msg) {
		n.deliver(msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("ошибка подписки на инвалидации: %w", err)
	}
	n.sub = sub

	go func() {
		<-ctx.Done()
		n.unsubscribe()
	}()
	return nil
}

func (n *NATSInvalidator) deliver(data []byte, handler InvalidationHandler) {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		n.count(func(s *InvalidatorStats) { s.Errors++ })
		logging.Error("❌ Некорректное сообщение инвалидации: %v", err)
		return
	}

	if !n.accept(msg) {
		n.count(func(s *InvalidatorStats) { s.Skipped++ })
		return
	}
	n.count(func(s *InvalidatorStats) { s.Received++ })

	logging.Debug("Инвалидация %s (%s) от узла %s", msg.Key, msg.Op, msg.NodeID)
	if err := handler(msg.Key); err != nil {
		n.count(func(s *InvalidatorStats) { s.Errors++ })
		logging.Error("❌ Ошибка инвалидации %s: %v", msg.Key, err)
	}
}

// accept отбрасывает свои сообщения и повторы. Устаревшие записи
// окна дедупликации вычищаются тут же.
func (n *NATSInvalidator) accept(msg InvalidationMessage) bool {
	if msg.NodeID == n.nodeID {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now()
	for key, at := range n.seen {
		if now.Sub(at) > n.config.DedupeWindow {
			delete(n.seen, key)
		}
	}
	if _, dup := n.seen[msg.Key]; dup {
		return false
	}
	n.seen[msg.Key] = now
	return true
}

func (n *NATSInvalidator) count(update func(*InvalidatorStats)) {
	n.mu.Lock()
	update(&n.stats)
	n.mu.Unlock()
}

// Stats возвращает копию счётчиков
func (n *NATSInvalidator) Stats() InvalidatorStats {
	n.mu.Lock()
	defer n.mu.Unlock()
	stats := n.stats
	stats.Connected = n.conn.IsConnected()
	return stats
}

func (n *NATSInvalidator) unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub == nil {
		return
	}
	if err := n.sub.Unsubscribe(); err != nil && n.conn.IsConnected() {
		logging.Warn("⚠️ Ошибка отписки от инвалидаций: %v", err)
	}
	n.sub = nil
}

// Close отписывается и закрывает соединение
func (n *NATSInvalidator) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.unsubscribe()
	n.conn.Close()
	return nil
}
