package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MeshMetrics инкапсулирует Prometheus-метрики перестроения и отрисовки чанков.
//
// Метрики:
// * voxel_chunks_meshed_total - counter
// * voxel_vertices_emitted_total / voxel_indices_emitted_total - counter
// * voxel_mesh_duration_seconds - histogram
// * voxel_draw_calls_total - counter
// * voxel_allocated_chunks / voxel_active_blocks / voxel_dirty_chunks - gauge
// * voxel_frames_total, voxel_mesh_errors_total - counter
type MeshMetrics struct {
	chunksMeshed    prometheus.Counter
	verticesEmitted prometheus.Counter
	indicesEmitted  prometheus.Counter
	meshDuration    prometheus.Histogram
	drawCalls       prometheus.Counter
	frames          prometheus.Counter
	meshErrors      prometheus.Counter
	allocated       prometheus.Gauge
	activeBlocks    prometheus.Gauge
	dirtyChunks     prometheus.Gauge
}

// NewMeshMetrics создаёт метрики и регистрирует их в reg.
// Для глобального регистра передайте prometheus.DefaultRegisterer.
func NewMeshMetrics(reg prometheus.Registerer) *MeshMetrics {
	mm := &MeshMetrics{
		chunksMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_meshed_total",
			Help:      "Количество перестроенных мешей чанков.",
		}),
		verticesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "vertices_emitted_total",
			Help:      "Общее число вершин, выданных мешером.",
		}),
		indicesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "indices_emitted_total",
			Help:      "Общее число индексов, выданных мешером.",
		}),
		meshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "mesh_duration_seconds",
			Help:      "Длительность перестроения меша одного чанка.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		drawCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "draw_calls_total",
			Help:      "Количество вызовов отрисовки чанков.",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "frames_total",
			Help:      "Количество отрисованных кадров.",
		}),
		meshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "mesh_errors_total",
			Help:      "Ошибки устройства при перестроении или отрисовке.",
		}),
		allocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "allocated_chunks",
			Help:      "Количество выделенных чанков.",
		}),
		activeBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "active_blocks",
			Help:      "Количество активных блоков в мире.",
		}),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "dirty_chunks",
			Help:      "Количество чанков, ожидающих перестроения.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			mm.chunksMeshed, mm.verticesEmitted, mm.indicesEmitted, mm.meshDuration,
			mm.drawCalls, mm.frames, mm.meshErrors,
			mm.allocated, mm.activeBlocks, mm.dirtyChunks,
		)
	}
	return mm
}

// ObserveMesh фиксирует перестроение одного чанка
func (mm *MeshMetrics) ObserveMesh(vertices, indices int, took time.Duration) {
	if mm == nil {
		return
	}
	mm.chunksMeshed.Inc()
	mm.verticesEmitted.Add(float64(vertices))
	mm.indicesEmitted.Add(float64(indices))
	mm.meshDuration.Observe(took.Seconds())
}

// ObserveDraw фиксирует вызов отрисовки
func (mm *MeshMetrics) ObserveDraw() {
	if mm == nil {
		return
	}
	mm.drawCalls.Inc()
}

// ObserveFrame фиксирует завершённый кадр
func (mm *MeshMetrics) ObserveFrame() {
	if mm == nil {
		return
	}
	mm.frames.Inc()
}

// ObserveError фиксирует ошибку устройства
func (mm *MeshMetrics) ObserveError() {
	if mm == nil {
		return
	}
	mm.meshErrors.Inc()
}

// SetWorldState обновляет gauge-метрики состояния мира
func (mm *MeshMetrics) SetWorldState(allocated, activeBlocks, dirty int) {
	if mm == nil {
		return
	}
	mm.allocated.Set(float64(allocated))
	mm.activeBlocks.Set(float64(activeBlocks))
	mm.dirtyChunks.Set(float64(dirty))
}
