package world

import (
	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	FacesPerCube     = 6
	VerticesPerFace  = 4
	IndicesPerFace   = 6
	VerticesPerCube  = FacesPerCube * VerticesPerFace // 24
	IndicesPerCube   = FacesPerCube * IndicesPerFace  // 36
	MaxIndex16Vertex = 1 << 16
)

// Нормали граней в порядке эмиссии: +Z, -Z, +X, -X, +Y, -Y
var faceNormals = [FacesPerCube]mgl32.Vec3{
	{0, 0, 1},
	{0, 0, -1},
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
}

// Текстурные координаты углов грани
var faceUVs = [VerticesPerFace]mgl32.Vec2{
	{1, 0},
	{1, 1},
	{0, 1},
	{0, 0},
}

// Индексы двух треугольников грани
var faceIndices = [IndicesPerFace]uint32{0, 1, 2, 0, 2, 3}

// Вершины единичного куба с центром в нуле, считаются один раз
var unitCube = buildUnitCube()

func buildUnitCube() [VerticesPerCube]gpu.Vertex {
	var out [VerticesPerCube]gpu.Vertex
	for f, normal := range faceNormals {
		// Два вектора, перпендикулярных нормали и друг другу
		basis := mgl32.Vec3{0, 1, 0}
		if f >= 4 {
			basis = mgl32.Vec3{0, 0, 1}
		}
		side1 := normal.Cross(basis)
		side2 := normal.Cross(side1)

		corners := [VerticesPerFace]mgl32.Vec3{
			normal.Sub(side1).Sub(side2),
			normal.Sub(side1).Add(side2),
			normal.Add(side1).Add(side2),
			normal.Add(side1).Sub(side2),
		}
		for i, corner := range corners {
			out[f*VerticesPerFace+i] = gpu.Vertex{
				Position: corner.Mul(BlockRenderSize),
				Normal:   normal,
				UV:       faceUVs[i],
			}
		}
	}
	return out
}

// Mesh - CPU-представление геометрии чанка
type Mesh struct {
	Vertices []gpu.Vertex
	Indices  []uint32
}

// Reset очищает меш, сохраняя выделенную память
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// Grow резервирует место под n кубов
func (m *Mesh) Grow(cubes int) {
	if need := len(m.Vertices) + cubes*VerticesPerCube; need > cap(m.Vertices) {
		v := make([]gpu.Vertex, len(m.Vertices), need)
		copy(v, m.Vertices)
		m.Vertices = v
	}
	if need := len(m.Indices) + cubes*IndicesPerCube; need > cap(m.Indices) {
		idx := make([]uint32, len(m.Indices), need)
		copy(idx, m.Indices)
		m.Indices = idx
	}
}

// Empty возвращает true, если в меше нет геометрии
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0
}

// IndexFormat возвращает uint16, пока количество вершин помещается в 16 бит
func (m *Mesh) IndexFormat() gpu.IndexFormat {
	if len(m.Vertices) <= MaxIndex16Vertex {
		return gpu.IndexUint16
	}
	return gpu.IndexUint32
}

// AppendCube добавляет 6 граней единичного куба с центром в offset
func (m *Mesh) AppendCube(offset vec.Vec3) {
	o := offset.ToFloat()
	for f := 0; f < FacesPerCube; f++ {
		base := uint32(len(m.Vertices))
		for i := 0; i < VerticesPerFace; i++ {
			v := unitCube[f*VerticesPerFace+i]
			v.Position = v.Position.Add(o)
			m.Vertices = append(m.Vertices, v)
		}
		for _, idx := range faceIndices {
			m.Indices = append(m.Indices, base+idx)
		}
	}
}
