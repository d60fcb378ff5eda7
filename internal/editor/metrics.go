package editor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics метрики операций редактора
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	legacy     *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objectkit",
			Subsystem: "editor",
			Name:      "operations_total",
			Help:      "Число операций редактора по результату.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "objectkit",
			Subsystem: "editor",
			Name:      "operation_duration_seconds",
			Help:      "Длительность операций редактора.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		legacy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "objectkit",
			Subsystem: "editor",
			Name:      "imported_objects_total",
			Help:      "Импортированные объекты по правилу чтения поведений.",
		}, []string{"rule"}),
	}
	reg.MustRegister(m.operations, m.duration, m.legacy)
	return m
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) importedObject(rule string) {
	if m == nil {
		return
	}
	m.legacy.WithLabelValues(rule).Inc()
}
