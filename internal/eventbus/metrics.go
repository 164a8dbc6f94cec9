package eventbus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter периодически переносит Stats шины в Prometheus-метрики.
// Экспортер не делает предположений о конкретной реализации шины.
type MetricsExporter struct {
	bus  EventBus
	prev Stats
	quit chan struct{}
	done chan struct{}

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg, но не запускает обновление.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel_events",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных событий.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel_events",
			Name:      "messages_consumed_total",
			Help:      "Общее число событий, доставленных подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel_events",
			Name:      "messages_dropped_total",
			Help:      "Событий, отброшенных из-за ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel_events",
			Name:      "messages_inflight",
			Help:      "Количество событий в очереди (не доставленных).",
		}),
	}

	reg.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Start запускает обновление метрик с периодом interval. Метод неблокирующий.
func (m *MetricsExporter) Start(interval time.Duration) {
	go m.loop(interval)
}

// Stop останавливает обновление метрик.
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case <-ticker.C:
			m.update()
		case <-m.quit:
			m.update()
			return
		}
	}
}

// update переносит приращения счётчиков шины в Counter'ы
func (m *MetricsExporter) update() {
	stats := m.bus.Metrics()

	if d := stats.Published - m.prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - m.prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - m.prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))

	m.prev = stats
}
