// Package replay ведёт журнал изменений проектов: записывает события
// редактора из шины и отдаёт их историю и статистику.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/annel0/objectkit/internal/eventbus"
	"github.com/annel0/objectkit/internal/logging"
)

// ReplayFilter определяет фильтры для выборки истории
type ReplayFilter struct {
	Project    string     `json:"project,omitempty"`
	EventTypes []string   `json:"event_types"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

// ChangeRecord запись истории изменений в ответе API
type ChangeRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
}

// ReplayService представляет сервис истории изменений
type ReplayService struct {
	eventStore EventStore
}

// NewReplayService создает новый сервис истории
func NewReplayService(eventStore EventStore) *ReplayService {
	return &ReplayService{
		eventStore: eventStore,
	}
}

// Record подписывает хранилище на события редактора в шине.
func (s *ReplayService) Record(ctx context.Context, bus eventbus.EventBus) (eventbus.Subscription, error) {
	if s.eventStore == nil {
		return nil, fmt.Errorf("event store not configured")
	}
	return bus.Subscribe(ctx, eventbus.Filter{Sources: []string{"editor"}}, func(ctx context.Context, ev *eventbus.Envelope) {
		if err := s.eventStore.WriteEvent(ctx, ev); err != nil {
			logging.Warn("replay: событие %s не записано: %v", ev.ID, err)
		}
	})
}

// StreamEvents возвращает историю изменений по фильтру
func (s *ReplayService) StreamEvents(ctx context.Context, filter *ReplayFilter) ([]ChangeRecord, error) {
	if s.eventStore == nil {
		return nil, fmt.Errorf("event store not configured")
	}

	envelopes, err := s.eventStore.QueryEvents(ctx, filter.query())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	result := make([]ChangeRecord, len(envelopes))
	for i, envelope := range envelopes {
		result[i] = ChangeRecord{
			ID:        envelope.ID,
			Type:      envelope.EventType,
			Timestamp: envelope.Timestamp,
			Source:    envelope.Source,
			Data:      json.RawMessage(envelope.Payload),
		}
	}
	return result, nil
}

// GetEventStats возвращает статистику событий
func (s *ReplayService) GetEventStats(ctx context.Context, filter *ReplayFilter) (*EventStats, error) {
	if s.eventStore == nil {
		return nil, fmt.Errorf("event store not configured")
	}

	stats, err := s.eventStore.GetEventStats(ctx, filter.query())
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// GetEventTypes возвращает типы записанных событий
func (s *ReplayService) GetEventTypes(ctx context.Context) ([]string, error) {
	if s.eventStore == nil {
		return nil, fmt.Errorf("event store not configured")
	}

	types, err := s.eventStore.GetEventTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event types: %w", err)
	}
	return types, nil
}

func (f *ReplayFilter) query() EventQuery {
	if f == nil {
		return EventQuery{}
	}
	return EventQuery{
		EventTypes: f.EventTypes,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Project:    f.Project,
		Limit:      f.Limit,
	}
}
