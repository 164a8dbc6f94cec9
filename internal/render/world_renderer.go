// Package render связывает воксельный мир с графическим устройством:
// перестраивает грязные чанки и выдаёт вызовы отрисовки в одном потоке.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/metrics"
	"github.com/annel0/voxel-chunks/internal/observability"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Параметры сцены по умолчанию
const (
	DefaultWorldSize = 64
	DefaultFootprint = 64
)

// FrameReport - сводка по одному проходу отрисовки
type FrameReport struct {
	ChunksMeshed int `json:"chunks_meshed"`
	DrawCalls    int `json:"draw_calls"`
	Vertices     int `json:"vertices"`
	Indices      int `json:"indices"`
}

// WorldRenderer владеет миром и перестраивает/рисует его чанки
type WorldRenderer struct {
	world   *world.World
	device  gpu.Device
	metrics *metrics.MeshMetrics
	log     *logging.Logger
	tracer  trace.Tracer
}

// Option настраивает WorldRenderer
type Option func(*WorldRenderer)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(mm *metrics.MeshMetrics) Option {
	return func(r *WorldRenderer) {
		r.metrics = mm
	}
}

// WithLogger задаёт логгер
func WithLogger(l *logging.Logger) Option {
	return func(r *WorldRenderer) {
		r.log = l
	}
}

// NewWorldRenderer создаёт рендерер для уже заполненного мира
func NewWorldRenderer(device gpu.Device, w *world.World, opts ...Option) *WorldRenderer {
	r := &WorldRenderer{
		world:  w,
		device: device,
		log:    logging.GetRenderLogger(),
		tracer: observability.Tracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.publishWorldState()
	return r
}

// NewDefaultWorldRenderer создаёт мир 64³ и засеивает его синусоидальными холмами
// на площади 64×64.
func NewDefaultWorldRenderer(device gpu.Device, opts ...Option) (*WorldRenderer, error) {
	w, err := world.NewWorld(vec.New(DefaultWorldSize, DefaultWorldSize, DefaultWorldSize))
	if err != nil {
		return nil, err
	}

	placed := world.Generator{Height: world.SineHills}.Fill(w, DefaultFootprint, DefaultFootprint)
	r := NewWorldRenderer(device, w, opts...)
	r.log.Info("🏔️ Сцена засеяна: %d блоков, %d чанков", placed, len(w.AllocatedChunks()))
	return r, nil
}

// World возвращает мир рендерера
func (r *WorldRenderer) World() *world.World { return r.world }

// MeshDirty перестраивает все грязные чанки без отрисовки
func (r *WorldRenderer) MeshDirty(ctx context.Context) (FrameReport, error) {
	var report FrameReport
	err := r.world.ForEachAllocated(func(index int, c *world.Chunk) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.meshChunk(index, c, &report)
	})
	r.publishWorldState()
	return report, err
}

// Render выполняет один проход: каждый выделенный чанк перестраивается,
// если он грязный, затем рисуется с использованием общего constantBuffer.
// Первая ошибка устройства прерывает проход и возвращается вызывающему.
func (r *WorldRenderer) Render(ctx context.Context, dc gpu.Context, constantBuffer gpu.Buffer) (FrameReport, error) {
	_, span := r.tracer.Start(ctx, "WorldRenderer.Render")
	defer span.End()

	var report FrameReport
	err := r.world.ForEachAllocated(func(index int, c *world.Chunk) error {
		if err := r.meshChunk(index, c, &report); err != nil {
			return err
		}
		if !c.HasBuffers() {
			return nil
		}
		if err := c.Render(dc, constantBuffer); err != nil {
			return err
		}
		report.DrawCalls++
		r.metrics.ObserveDraw()
		return nil
	})

	span.SetAttributes(
		attribute.Int("voxel.chunks_meshed", report.ChunksMeshed),
		attribute.Int("voxel.draw_calls", report.DrawCalls),
	)
	if err != nil {
		r.metrics.ObserveError()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Error("❌ Ошибка отрисовки: %v", err)
		return report, fmt.Errorf("отрисовка мира: %w", err)
	}

	r.metrics.ObserveFrame()
	if report.ChunksMeshed > 0 {
		r.publishWorldState()
	}
	return report, nil
}

func (r *WorldRenderer) meshChunk(index int, c *world.Chunk, report *FrameReport) error {
	if !c.IsDirty() {
		return nil
	}

	start := time.Now()
	if err := c.Mesh(r.device); err != nil {
		return err
	}
	took := time.Since(start)

	m := c.MeshData()
	report.ChunksMeshed++
	report.Vertices += len(m.Vertices)
	report.Indices += len(m.Indices)
	r.metrics.ObserveMesh(len(m.Vertices), len(m.Indices), took)
	logging.LogChunkMeshed(r.log, index, len(m.Vertices), len(m.Indices), took)
	return nil
}

func (r *WorldRenderer) publishWorldState() {
	s := r.world.Stats()
	r.metrics.SetWorldState(s.AllocatedChunks, s.ActiveBlocks, s.DirtyChunks)
}

// Release освобождает GPU-ресурсы мира
func (r *WorldRenderer) Release() {
	r.world.Release()
}
