package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/voxel-chunks/internal/eventbus"
	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/render"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/google/uuid"
)

// FrameDevice - устройство, которое умеет и создавать ресурсы, и рисовать.
// ResetFrame очищает записанные за кадр команды.
type FrameDevice interface {
	gpu.Device
	gpu.Context
	ResetFrame()
}

// Scene сериализует доступ к рендереру между циклом кадров и HTTP-обработчиками
type Scene struct {
	mu sync.Mutex

	renderer       *render.WorldRenderer
	device         FrameDevice
	constantBuffer gpu.Buffer
	timer          *render.Timer
	fps            *render.FpsCalculator

	worldID   uuid.UUID
	worldName string
	frames    uint64
	lastFrame render.FrameReport

	events eventbus.EventBus
}

// SceneOption настраивает Scene
type SceneOption func(*Scene)

// WithEvents публикует ChunksMeshed в шину после кадров с перестроением
func WithEvents(bus eventbus.EventBus) SceneOption {
	return func(s *Scene) {
		s.events = bus
	}
}

// SceneSnapshot - состояние сцены на момент запроса
type SceneSnapshot struct {
	WorldID   uuid.UUID          `json:"world_id"`
	WorldName string             `json:"world_name"`
	World     world.Stats        `json:"world"`
	Frames    uint64             `json:"frames"`
	LastFrame render.FrameReport `json:"last_frame"`
	FPS       render.Fps         `json:"fps"`
}

// NewScene создаёт сцену и общий константный буфер
func NewScene(renderer *render.WorldRenderer, device FrameDevice, name string, opts ...SceneOption) (*Scene, error) {
	cb, err := device.CreateBuffer(gpu.ConstantBuffer, make([]byte, gpu.PrimConstantsSize))
	if err != nil {
		return nil, fmt.Errorf("константный буфер сцены: %w", err)
	}

	timer := render.NewTimer(nil)
	s := &Scene{
		renderer:       renderer,
		device:         device,
		constantBuffer: cb,
		timer:          timer,
		fps:            render.NewFpsCalculator(timer),
		worldName:      name,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Frame выполняет один кадр: перестроение грязных чанков и отрисовку
func (s *Scene) Frame(ctx context.Context) (render.FrameReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.device.ResetFrame()
	s.timer.Tick()
	report, err := s.renderer.Render(ctx, s.device, s.constantBuffer)
	if err != nil {
		return report, err
	}
	s.frames++
	s.lastFrame = report
	s.fps.CalculateFrameStatistics()

	if s.events != nil && report.ChunksMeshed > 0 {
		ev, err := eventbus.NewEnvelope("scene", eventbus.EventChunksMeshed, eventbus.PriorityLow, eventbus.ChunksMeshed{
			Frame:    s.frames,
			Chunks:   report.ChunksMeshed,
			Vertices: report.Vertices,
			Indices:  report.Indices,
		})
		if err == nil {
			_ = s.events.Publish(ctx, ev)
		}
	}
	return report, nil
}

// WithWorld выполняет fn под блокировкой сцены
func (s *Scene) WithWorld(fn func(w *world.World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.renderer.World())
}

// SetWorldID запоминает идентификатор мира в хранилище
func (s *Scene) SetWorldID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worldID = id
}

// WorldID возвращает идентификатор мира в хранилище (uuid.Nil, если не сохранялся)
func (s *Scene) WorldID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.worldID
}

// WorldName возвращает имя мира
func (s *Scene) WorldName() string {
	return s.worldName
}

// Snapshot возвращает текущее состояние сцены
func (s *Scene) Snapshot() SceneSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SceneSnapshot{
		WorldID:   s.worldID,
		WorldName: s.worldName,
		World:     s.renderer.World().Stats(),
		Frames:    s.frames,
		LastFrame: s.lastFrame,
		FPS:       s.fps.Current(),
	}
}

// Close освобождает ресурсы сцены
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Release()
	s.constantBuffer.Release()
}
