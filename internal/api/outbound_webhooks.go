package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/annel0/objectkit/internal/editor"
	"github.com/annel0/objectkit/internal/eventbus"
	"github.com/annel0/objectkit/internal/logging"
)

// OutboundWebhook представляет исходящий webhook
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // События, на которые подписан; "*": все
	Active       bool       `json:"active"`
	Timeout      int        `json:"timeout"` // Таймаут в секундах
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	FailureCount int        `json:"failure_count"`
}

// OutboundWebhookEvent тело запроса к webhook'у
type OutboundWebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Timestamp int64           `json:"timestamp"`
	ServerID  string          `json:"server_id"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
}

// OutboundWebhookManager рассылает события редактора подписанным webhook'ам
type OutboundWebhookManager struct {
	webhooks   map[uint64]*OutboundWebhook
	eventQueue chan OutboundWebhookEvent
	mu         sync.RWMutex
	nextID     uint64
	httpClient *http.Client
	serverID   string
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboundWebhookManager создает новый менеджер исходящих webhook'ов
func NewOutboundWebhookManager(serverID string) *OutboundWebhookManager {
	ctx, cancel := context.WithCancel(context.Background())
	manager := &OutboundWebhookManager{
		webhooks:   make(map[uint64]*OutboundWebhook),
		eventQueue: make(chan OutboundWebhookEvent, 1000),
		nextID:     1,
		serverID:   serverID,
		retryDelay: time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		ctx:    ctx,
		cancel: cancel,
	}

	manager.wg.Add(1)
	go manager.eventWorker()

	return manager
}

// Attach подписывает менеджер на события редактора в шине
func (owm *OutboundWebhookManager) Attach(ctx context.Context, bus eventbus.EventBus) (eventbus.Subscription, error) {
	return bus.Subscribe(ctx, eventbus.Filter{Sources: []string{"editor"}}, func(ctx context.Context, ev *eventbus.Envelope) {
		owm.SendEvent(ev)
	})
}

// Close останавливает рассылку; неотправленные события теряются
func (owm *OutboundWebhookManager) Close() {
	owm.cancel()
	owm.wg.Wait()
}

// AddWebhook добавляет новый webhook
func (owm *OutboundWebhookManager) AddWebhook(webhook OutboundWebhook) *OutboundWebhook {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	webhook.ID = owm.nextID
	owm.nextID++
	webhook.CreatedAt = time.Now()
	webhook.Active = true

	if webhook.Timeout == 0 {
		webhook.Timeout = 30
	}
	if webhook.RetryCount == 0 {
		webhook.RetryCount = 3
	}

	owm.webhooks[webhook.ID] = &webhook
	copied := webhook
	return &copied
}

// GetWebhooks возвращает список всех webhook'ов по возрастанию ID
func (owm *OutboundWebhookManager) GetWebhooks() []OutboundWebhook {
	owm.mu.RLock()
	defer owm.mu.RUnlock()

	webhooks := make([]OutboundWebhook, 0, len(owm.webhooks))
	for _, webhook := range owm.webhooks {
		webhooks = append(webhooks, *webhook)
	}
	sort.Slice(webhooks, func(i, j int) bool { return webhooks[i].ID < webhooks[j].ID })
	return webhooks
}

// GetWebhook возвращает webhook по ID
func (owm *OutboundWebhookManager) GetWebhook(id uint64) *OutboundWebhook {
	owm.mu.RLock()
	defer owm.mu.RUnlock()

	webhook, exists := owm.webhooks[id]
	if !exists {
		return nil
	}
	copied := *webhook
	return &copied
}

// WebhookUpdate частичное обновление webhook'а; пустые поля не меняются
type WebhookUpdate struct {
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Secret     string   `json:"secret"`
	Events     []string `json:"events"`
	Active     *bool    `json:"active"`
	Timeout    int      `json:"timeout"`
	RetryCount *int     `json:"retry_count"`
}

// UpdateWebhook обновляет webhook
func (owm *OutboundWebhookManager) UpdateWebhook(id uint64, updates WebhookUpdate) *OutboundWebhook {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	webhook, exists := owm.webhooks[id]
	if !exists {
		return nil
	}

	if updates.Name != "" {
		webhook.Name = updates.Name
	}
	if updates.URL != "" {
		webhook.URL = updates.URL
	}
	if updates.Secret != "" {
		webhook.Secret = updates.Secret
	}
	if len(updates.Events) > 0 {
		webhook.Events = updates.Events
	}
	if updates.Timeout > 0 {
		webhook.Timeout = updates.Timeout
	}
	if updates.RetryCount != nil && *updates.RetryCount >= 0 {
		webhook.RetryCount = *updates.RetryCount
	}
	if updates.Active != nil {
		webhook.Active = *updates.Active
	}

	copied := *webhook
	return &copied
}

// DeleteWebhook удаляет webhook
func (owm *OutboundWebhookManager) DeleteWebhook(id uint64) bool {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	if _, exists := owm.webhooks[id]; !exists {
		return false
	}
	delete(owm.webhooks, id)
	return true
}

// SendEvent ставит событие шины в очередь рассылки
func (owm *OutboundWebhookManager) SendEvent(ev *eventbus.Envelope) {
	event := OutboundWebhookEvent{
		ID:        ev.ID,
		EventType: ev.EventType,
		Timestamp: ev.Timestamp.Unix(),
		ServerID:  owm.serverID,
		Source:    ev.Source,
		Data:      json.RawMessage(ev.Payload),
	}

	select {
	case owm.eventQueue <- event:
		logging.Debug("📤 Событие %s добавлено в очередь webhook'ов", ev.EventType)
	default:
		logging.Warn("⚠️  Очередь webhook'ов переполнена, событие %s пропущено", ev.EventType)
	}
}

// eventWorker обрабатывает события из очереди
func (owm *OutboundWebhookManager) eventWorker() {
	defer owm.wg.Done()
	for {
		select {
		case <-owm.ctx.Done():
			return
		case event := <-owm.eventQueue:
			owm.processEvent(event)
		}
	}
}

// processEvent отправляет событие всем подписанным webhook'ам
func (owm *OutboundWebhookManager) processEvent(event OutboundWebhookEvent) {
	owm.mu.RLock()
	var webhooks []OutboundWebhook
	for _, webhook := range owm.webhooks {
		if webhook.Active && isSubscribedToEvent(webhook, event.EventType) {
			webhooks = append(webhooks, *webhook)
		}
	}
	owm.mu.RUnlock()

	for _, webhook := range webhooks {
		owm.wg.Add(1)
		go func(webhook OutboundWebhook) {
			defer owm.wg.Done()
			owm.sendToWebhook(webhook, event)
		}(webhook)
	}
}

// isSubscribedToEvent проверяет, подписан ли webhook на событие
func isSubscribedToEvent(webhook *OutboundWebhook, eventType string) bool {
	for _, subscribedEvent := range webhook.Events {
		if subscribedEvent == eventType || subscribedEvent == "*" {
			return true
		}
	}
	return false
}

// sendToWebhook отправляет событие конкретному webhook'у с повторами
func (owm *OutboundWebhookManager) sendToWebhook(webhook OutboundWebhook, event OutboundWebhookEvent) {
	jsonData, err := json.Marshal(event)
	if err != nil {
		logging.Error("❌ Ошибка маршалинга события для webhook %s: %v", webhook.Name, err)
		return
	}

	success := false
	for attempt := 0; attempt <= webhook.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-owm.ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * owm.retryDelay):
			}
		}

		status, err := owm.post(webhook, event.EventType, jsonData)
		if err != nil {
			logging.Warn("⚠️  Попытка %d/%d для webhook %s: %v", attempt+1, webhook.RetryCount+1, webhook.Name, err)
			continue
		}
		if status >= 200 && status < 300 {
			success = true
			logging.Debug("✅ Событие %s отправлено в webhook %s", event.EventType, webhook.Name)
			break
		}
		logging.Warn("⚠️  Webhook %s вернул статус %d на попытке %d", webhook.Name, status, attempt+1)
	}

	owm.mu.Lock()
	if stored, ok := owm.webhooks[webhook.ID]; ok {
		now := time.Now()
		stored.LastUsed = &now
		if !success {
			stored.FailureCount++
		}
	}
	owm.mu.Unlock()
}

func (owm *OutboundWebhookManager) post(webhook OutboundWebhook, eventType string, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(owm.ctx, time.Duration(webhook.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "objectkit/1.0")
	req.Header.Set("X-Event-Type", eventType)
	req.Header.Set("X-Server-ID", owm.serverID)
	if webhook.Secret != "" {
		req.Header.Set("X-Webhook-Signature", generateSignature(body, webhook.Secret))
	}

	resp, err := owm.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// generateSignature генерирует HMAC подпись тела запроса
func generateSignature(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature проверяет заголовок X-Webhook-Signature на стороне получателя
func VerifySignature(body []byte, secret, signature string) bool {
	return hmac.Equal([]byte(generateSignature(body, secret)), []byte(signature))
}

// GetEventTypes возвращает типы событий, на которые можно подписаться
func (owm *OutboundWebhookManager) GetEventTypes() []string {
	return []string{
		editor.EventBehaviorAdded,
		editor.EventBehaviorRemoved,
		editor.EventBehaviorRenamed,
		editor.EventBehaviorPropertyUpdated,
		editor.EventDocumentImported,
	}
}
