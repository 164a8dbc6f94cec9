// Package gpu описывает минимальный контракт графического устройства, который
// нужен воксельной подсистеме: создание буферов и запись команд отрисовки.
// Создание окна, swapchain и шейдеров остаётся на стороне вызывающего кода.
package gpu

import "errors"

// BufferKind определяет назначение GPU-буфера
type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
	ConstantBuffer
)

// String возвращает строковое представление типа буфера
func (k BufferKind) String() string {
	switch k {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	case ConstantBuffer:
		return "constant"
	default:
		return "unknown"
	}
}

// IndexFormat определяет разрядность индексов в индексном буфере
type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Size возвращает размер одного индекса в байтах
func (f IndexFormat) Size() int {
	if f == IndexUint32 {
		return 4
	}
	return 2
}

// Topology определяет тип примитивов
type Topology int

const (
	TriangleList Topology = iota
)

var (
	// ErrEmptyBuffer возвращается при попытке создать буфер без данных
	ErrEmptyBuffer = errors.New("gpu: пустой буфер")
	// ErrReleased возвращается при обращении к освобождённому буферу
	ErrReleased = errors.New("gpu: буфер уже освобождён")
	// ErrSizeMismatch возвращается, если данные не помещаются в буфер
	ErrSizeMismatch = errors.New("gpu: размер данных не совпадает с буфером")
)

// Buffer - непрозрачный дескриптор GPU-ресурса
type Buffer interface {
	Kind() BufferKind
	Size() int
	Release()
}

// Device создаёт GPU-ресурсы
type Device interface {
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)
}

// Context записывает команды отрисовки
type Context interface {
	UpdateSubresource(dst Buffer, data []byte) error
	SetVertexBuffer(slot int, buf Buffer, stride, offset int)
	SetIndexBuffer(buf Buffer, format IndexFormat, offset int)
	SetPrimitiveTopology(topology Topology)
	DrawIndexed(indexCount, startIndex, baseVertex int)
}
