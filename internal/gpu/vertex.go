package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride - размер вершины PNT в байтах: POSITION(3) + NORMAL(3) + TEXCOORD(2)
const VertexStride = 8 * 4

// Vertex описывает вершину с позицией, нормалью и текстурной координатой
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexElement описывает одно поле входного лейаута шейдера
type VertexElement struct {
	Semantic   string
	Components int
	Offset     int
}

// VertexLayout - лейаут вершины PNT
var VertexLayout = []VertexElement{
	{Semantic: "POSITION", Components: 3, Offset: 0},
	{Semantic: "NORMAL", Components: 3, Offset: 12},
	{Semantic: "TEXCOORD", Components: 2, Offset: 24},
}

// EncodeVertices упаковывает вершины в little-endian массив float32
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	off := 0
	for i := range vertices {
		v := &vertices[i]
		off = putFloats(buf, off, v.Position[:]...)
		off = putFloats(buf, off, v.Normal[:]...)
		off = putFloats(buf, off, v.UV[:]...)
	}
	return buf
}

// EncodeIndices упаковывает индексы в указанном формате.
// Для IndexUint16 все значения должны помещаться в 16 бит.
func EncodeIndices(indices []uint32, format IndexFormat) []byte {
	buf := make([]byte, len(indices)*format.Size())
	switch format {
	case IndexUint32:
		for i, idx := range indices {
			binary.LittleEndian.PutUint32(buf[i*4:], idx)
		}
	default:
		for i, idx := range indices {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(idx))
		}
	}
	return buf
}

// DecodeVertices выполняет обратное преобразование (используется headless-устройством и тестами)
func DecodeVertices(data []byte) []Vertex {
	n := len(data) / VertexStride
	out := make([]Vertex, n)
	for i := 0; i < n; i++ {
		f := readFloats(data[i*VertexStride:(i+1)*VertexStride], 8)
		out[i] = Vertex{
			Position: mgl32.Vec3{f[0], f[1], f[2]},
			Normal:   mgl32.Vec3{f[3], f[4], f[5]},
			UV:       mgl32.Vec2{f[6], f[7]},
		}
	}
	return out
}

func putFloats(buf []byte, off int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return off
}

func readFloats(buf []byte, n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
