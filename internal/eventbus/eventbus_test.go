package eventbus

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(ctx context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.EventType)
	}
	return out
}

func TestNewEnvelope(t *testing.T) {
	ev, err := NewEnvelope("editor", "BehaviorAdded", map[string]string{"name": "Drag"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "editor", ev.Source)
	assert.Equal(t, 1, ev.Version)

	var payload map[string]string
	require.NoError(t, ev.DecodePayload(&payload))
	assert.Equal(t, "Drag", payload["name"])

	other, err := NewEnvelope("editor", "BehaviorAdded", nil)
	require.NoError(t, err)
	assert.NotEqual(t, ev.ID, other.ID)

	_, err = NewEnvelope("editor", "Bad", func() {})
	assert.Error(t, err)
}

func TestMemoryBusDeliversInOrderWithFilter(t *testing.T) {
	bus := NewMemoryBus(16)
	ctx := context.Background()

	all := &collector{}
	renamed := &collector{}
	_, err := bus.Subscribe(ctx, Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, Filter{Types: []string{"BehaviorRenamed"}}, renamed.handle)
	require.NoError(t, err)

	for _, typ := range []string{"BehaviorAdded", "BehaviorRenamed", "BehaviorRemoved"} {
		ev, err := NewEnvelope("editor", typ, nil)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ev))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{"BehaviorAdded", "BehaviorRenamed", "BehaviorRemoved"}, all.types())
	assert.Equal(t, []string{"BehaviorRenamed"}, renamed.types())

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(4), stats.Consumed)

	ev, _ := NewEnvelope("editor", "Late", nil)
	assert.ErrorIs(t, bus.Publish(ctx, ev), ErrBusClosed)
}

func TestMemoryBusCloseReleasesBlockedPublisher(t *testing.T) {
	bus := NewMemoryBus(1)
	ctx := context.Background()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	_, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	require.NoError(t, err)

	first, _ := NewEnvelope("editor", "First", nil)
	require.NoError(t, bus.Publish(ctx, first))
	<-started

	// диспетчер занят первым событием, второе заполняет буфер
	second, _ := NewEnvelope("editor", "Second", nil)
	require.NoError(t, bus.Publish(ctx, second))

	urgent, _ := NewEnvelope("editor", "Urgent", nil)
	urgent.Priority = 9
	published := make(chan error, 1)
	go func() { published <- bus.Publish(ctx, urgent) }()

	closed := make(chan error, 1)
	go func() { closed <- bus.Close() }()

	select {
	case err := <-published:
		assert.ErrorIs(t, err, ErrBusClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("публикация не разблокирована")
	}

	close(release)
	require.NoError(t, <-closed)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	ctx := context.Background()

	c := &collector{}
	sub, err := bus.Subscribe(ctx, Filter{Sources: []string{"editor"}}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope("editor", "BehaviorAdded", nil)
	require.NoError(t, bus.Publish(ctx, ev))
	require.NoError(t, bus.Close())

	assert.Empty(t, c.types())
}

func TestMetricsExporterCopiesStats(t *testing.T) {
	bus := NewMemoryBus(4)
	reg := prometheus.NewRegistry()
	exporter := NewMetricsExporter(bus, reg)

	ev, _ := NewEnvelope("editor", "BehaviorAdded", nil)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	exporter.Start(time.Hour)
	exporter.Stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(exporter.inflight))
}

func TestJetStreamBus(t *testing.T) {
	url := os.Getenv("OBJECTKIT_TEST_NATS_URL")
	if url == "" {
		t.Skip("OBJECTKIT_TEST_NATS_URL не задан")
	}

	bus, err := NewJetStreamBus(url, "OBJECTKIT_TEST", time.Minute)
	require.NoError(t, err)
	defer bus.Close()

	got := make(chan *Envelope, 1)
	sub, err := bus.Subscribe(context.Background(), Filter{Types: []string{"BehaviorAdded"}}, func(ctx context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	ev, _ := NewEnvelope("editor", "BehaviorAdded", map[string]string{"name": "Drag"})
	require.NoError(t, bus.Publish(context.Background(), ev))

	select {
	case received := <-got:
		assert.Equal(t, ev.ID, received.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("событие не доставлено")
	}
}
