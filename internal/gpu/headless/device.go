// Package headless реализует gpu.Device и gpu.Context в памяти.
// Буферы хранятся как байтовые срезы, команды отрисовки записываются в журнал.
// Используется CLI без окна и тестами.
package headless

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-chunks/internal/gpu"
)

// ErrDeviceLost возвращается после исчерпания лимита буферов (см. WithBufferLimit)
var ErrDeviceLost = errors.New("headless: устройство недоступно")

// Buffer - буфер в памяти
type Buffer struct {
	id       uint64
	kind     gpu.BufferKind
	data     []byte
	released bool
	device   *Device
}

// ID возвращает идентификатор буфера
func (b *Buffer) ID() uint64 { return b.id }

// Kind возвращает тип буфера
func (b *Buffer) Kind() gpu.BufferKind { return b.kind }

// Size возвращает размер буфера в байтах
func (b *Buffer) Size() int { return len(b.data) }

// Data возвращает содержимое буфера
func (b *Buffer) Data() []byte { return b.data }

// Released возвращает true, если буфер освобождён
func (b *Buffer) Released() bool { return b.released }

// Release освобождает буфер. Повторный вызов ничего не делает.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.data = nil
	delete(b.device.live, b.id)
}

// DrawCall - записанный вызов DrawIndexed вместе с привязками на момент вызова
type DrawCall struct {
	VertexBuffer *Buffer
	IndexBuffer  *Buffer
	IndexFormat  gpu.IndexFormat
	Stride       int
	IndexCount   int
	StartIndex   int
	BaseVertex   int
	Constants    gpu.PrimConstants
}

// Device - устройство и контекст в одном объекте
type Device struct {
	nextID uint64
	live   map[uint64]*Buffer
	limit  int
	total  int

	vertexBuffer *Buffer
	indexBuffer  *Buffer
	indexFormat  gpu.IndexFormat
	stride       int
	topology     gpu.Topology
	constants    *Buffer

	draws []DrawCall
}

// Option настраивает Device
type Option func(*Device)

// WithBufferLimit ограничивает общее количество созданных буферов.
// После исчерпания CreateBuffer возвращает ErrDeviceLost.
func WithBufferLimit(n int) Option {
	return func(d *Device) {
		d.limit = n
	}
}

// NewDevice создаёт headless-устройство
func NewDevice(opts ...Option) *Device {
	d := &Device{
		live: make(map[uint64]*Buffer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateBuffer создаёт буфер с копией данных
func (d *Device) CreateBuffer(kind gpu.BufferKind, data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("создание %s буфера: %w", kind, gpu.ErrEmptyBuffer)
	}
	if d.limit > 0 && d.total >= d.limit {
		return nil, fmt.Errorf("создание %s буфера: %w", kind, ErrDeviceLost)
	}

	d.nextID++
	d.total++
	buf := &Buffer{
		id:     d.nextID,
		kind:   kind,
		data:   append([]byte(nil), data...),
		device: d,
	}
	d.live[buf.id] = buf
	return buf, nil
}

// UpdateSubresource перезаписывает содержимое буфера
func (d *Device) UpdateSubresource(dst gpu.Buffer, data []byte) error {
	buf, err := d.own(dst)
	if err != nil {
		return err
	}
	if len(data) > len(buf.data) {
		return fmt.Errorf("обновление буфера %d (%d > %d байт): %w", buf.id, len(data), len(buf.data), gpu.ErrSizeMismatch)
	}
	copy(buf.data, data)
	if buf.kind == gpu.ConstantBuffer {
		d.constants = buf
	}
	return nil
}

// SetVertexBuffer привязывает вершинный буфер
func (d *Device) SetVertexBuffer(slot int, buf gpu.Buffer, stride, offset int) {
	b, _ := d.own(buf)
	d.vertexBuffer = b
	d.stride = stride
}

// SetIndexBuffer привязывает индексный буфер
func (d *Device) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat, offset int) {
	b, _ := d.own(buf)
	d.indexBuffer = b
	d.indexFormat = format
}

// SetPrimitiveTopology устанавливает топологию
func (d *Device) SetPrimitiveTopology(topology gpu.Topology) {
	d.topology = topology
}

// DrawIndexed записывает вызов отрисовки
func (d *Device) DrawIndexed(indexCount, startIndex, baseVertex int) {
	call := DrawCall{
		VertexBuffer: d.vertexBuffer,
		IndexBuffer:  d.indexBuffer,
		IndexFormat:  d.indexFormat,
		Stride:       d.stride,
		IndexCount:   indexCount,
		StartIndex:   startIndex,
		BaseVertex:   baseVertex,
	}
	if d.constants != nil && !d.constants.released {
		call.Constants = gpu.DecodePrimConstants(d.constants.data)
	}
	d.draws = append(d.draws, call)
}

// DrawCalls возвращает журнал вызовов отрисовки
func (d *Device) DrawCalls() []DrawCall {
	return d.draws
}

// ResetFrame очищает журнал вызовов (вызывается в начале кадра)
func (d *Device) ResetFrame() {
	d.draws = d.draws[:0]
}

// LiveBuffers возвращает количество неосвобождённых буферов
func (d *Device) LiveBuffers() int {
	return len(d.live)
}

// CreatedBuffers возвращает общее количество созданных буферов
func (d *Device) CreatedBuffers() int {
	return d.total
}

func (d *Device) own(buf gpu.Buffer) (*Buffer, error) {
	b, ok := buf.(*Buffer)
	if !ok || b == nil {
		return nil, fmt.Errorf("headless: чужой буфер %T", buf)
	}
	if b.released {
		return nil, fmt.Errorf("буфер %d: %w", b.id, gpu.ErrReleased)
	}
	return b, nil
}
