package replay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/annel0/objectkit/internal/eventbus"
)

// EventStore интерфейс для хранения и запроса событий редактора
type EventStore interface {
	// WriteEvent записывает событие в хранилище
	WriteEvent(ctx context.Context, event *eventbus.Envelope) error

	// QueryEvents возвращает события по фильтрам в порядке записи
	QueryEvents(ctx context.Context, query EventQuery) ([]*eventbus.Envelope, error)

	// GetEventStats возвращает статистику событий
	GetEventStats(ctx context.Context, query EventQuery) (*EventStats, error)

	// GetEventTypes возвращает типы уже записанных событий
	GetEventTypes(ctx context.Context) ([]string, error)
}

// EventQuery представляет запрос к хранилищу событий
type EventQuery struct {
	EventTypes []string   `json:"event_types"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Project    string     `json:"project,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

// EventStats представляет статистику событий
type EventStats struct {
	TotalEvents int64          `json:"total_events"`
	EventTypes  map[string]int `json:"event_types"`
	First       *time.Time     `json:"first,omitempty"`
	Last        *time.Time     `json:"last,omitempty"`
}

// storedEvent событие с уже извлечённым именем проекта
type storedEvent struct {
	env     *eventbus.Envelope
	project string
}

// MemoryEventStore хранит последние capacity событий в кольцевом буфере.
type MemoryEventStore struct {
	mu       sync.RWMutex
	events   []storedEvent
	next     int
	full     bool
	capacity int
}

// NewMemoryEventStore создаёт хранилище на capacity событий
func NewMemoryEventStore(capacity int) *MemoryEventStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryEventStore{
		events:   make([]storedEvent, capacity),
		capacity: capacity,
	}
}

func (s *MemoryEventStore) WriteEvent(ctx context.Context, event *eventbus.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := storedEvent{env: event, project: projectOf(event)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = stored
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ordered возвращает события от старых к новым; вызывать под s.mu
func (s *MemoryEventStore) ordered() []storedEvent {
	if !s.full {
		return s.events[:s.next]
	}
	out := make([]storedEvent, 0, s.capacity)
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}

func (s *MemoryEventStore) QueryEvents(ctx context.Context, query EventQuery) ([]*eventbus.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*eventbus.Envelope
	for _, ev := range s.ordered() {
		if query.matches(ev) {
			out = append(out, ev.env)
		}
	}
	// Limit оставляет самые свежие события.
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[len(out)-query.Limit:]
	}
	return out, nil
}

func (s *MemoryEventStore) GetEventStats(ctx context.Context, query EventQuery) (*EventStats, error) {
	events, err := s.QueryEvents(ctx, EventQuery{
		EventTypes: query.EventTypes,
		StartTime:  query.StartTime,
		EndTime:    query.EndTime,
		Project:    query.Project,
	})
	if err != nil {
		return nil, err
	}

	stats := &EventStats{EventTypes: make(map[string]int)}
	for _, ev := range events {
		stats.TotalEvents++
		stats.EventTypes[ev.EventType]++
	}
	if len(events) > 0 {
		first, last := events[0].Timestamp, events[len(events)-1].Timestamp
		stats.First, stats.Last = &first, &last
	}
	return stats, nil
}

func (s *MemoryEventStore) GetEventTypes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, ev := range s.ordered() {
		seen[ev.env.EventType] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

func (q EventQuery) matches(ev storedEvent) bool {
	if q.Project != "" && ev.project != q.Project {
		return false
	}
	if q.StartTime != nil && ev.env.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && ev.env.Timestamp.After(*q.EndTime) {
		return false
	}
	if len(q.EventTypes) == 0 {
		return true
	}
	for _, t := range q.EventTypes {
		if t == ev.env.EventType {
			return true
		}
	}
	return false
}

// projectOf достаёт имя проекта из нагрузки события редактора
func projectOf(ev *eventbus.Envelope) string {
	var payload struct {
		Project string `json:"project"`
	}
	if err := ev.DecodePayload(&payload); err != nil {
		return ""
	}
	return payload.Project
}
