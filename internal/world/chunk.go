package world

import (
	"fmt"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ChunkShift       = 5
	ChunkSize        = 1 << ChunkShift // 32
	ChunkSizeSquared = ChunkSize * ChunkSize
	ChunkVolume      = ChunkSize * ChunkSizeSquared
	WorldToLocalMask = ChunkSize - 1 // 0b11111
	BlockRenderSize  = 0.5
)

// Материал-заглушка, одинаковый для всех чанков
var (
	placeholderColor = mgl32.Vec4{0.8, 0.8, 0.8, 0.5}
	placeholderPower = float32(15.0)
)

// Chunk - куб из ChunkSize³ блоков. Единица перестроения меша и владелец GPU-буферов.
type Chunk struct {
	world  *World
	blocks []Block
	active int

	worldPosition vec.Vec3 // мировые координаты начала чанка
	localPosition vec.Vec3 // индекс чанка в сетке мира

	dirty     bool
	allocated bool

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
	model    mgl32.Mat4

	mesh         Mesh
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexFormat  gpu.IndexFormat
	indexCount   int
}

// BlockIndex возвращает линейный индекс блока: x + y*32 + z*32²
func BlockIndex(local vec.Vec3) int {
	return local.X + local.Y*ChunkSize + local.Z*ChunkSizeSquared
}

// WorldToLocal переводит мировые координаты в локальные координаты внутри чанка
func WorldToLocal(p vec.Vec3) vec.Vec3 {
	return p.And(WorldToLocalMask)
}

// WorldToChunk переводит мировые координаты в индекс чанка в сетке мира
func WorldToChunk(p vec.Vec3) vec.Vec3 {
	return p.Shr(ChunkShift)
}

// Reset (пере)инициализирует хранилище блоков: все блоки неактивны,
// трансформация единичная со сдвигом в WorldPosition. Чанк помечается
// выделенным и грязным. Старые GPU-буферы освобождаются.
func (c *Chunk) Reset(w *World, local vec.Vec3) {
	c.releaseBuffers()

	c.world = w
	c.localPosition = local
	c.worldPosition = local.Mul(ChunkSize)
	c.blocks = make([]Block, ChunkVolume)
	c.active = 0

	c.scale = mgl32.Vec3{1, 1, 1}
	c.rotation = mgl32.Vec3{}
	c.position = c.worldPosition.ToFloat()
	c.UpdateModelMatrix()

	c.mesh.Reset()
	c.allocated = true
	c.MarkDirty()
}

// World возвращает мир, которому принадлежит чанк
func (c *Chunk) World() *World { return c.world }

// IsAllocated возвращает true, если хранилище блоков создано
func (c *Chunk) IsAllocated() bool { return c.allocated }

// IsDirty возвращает true, если меш устарел
func (c *Chunk) IsDirty() bool { return c.dirty }

// MarkDirty помечает меш как устаревший
func (c *Chunk) MarkDirty() { c.dirty = true }

// WorldPosition возвращает мировые координаты начала чанка
func (c *Chunk) WorldPosition() vec.Vec3 { return c.worldPosition }

// LocalPosition возвращает индекс чанка в сетке мира
func (c *Chunk) LocalPosition() vec.Vec3 { return c.localPosition }

// ActiveBlocks возвращает количество активных блоков
func (c *Chunk) ActiveBlocks() int { return c.active }

// GetBlockAt возвращает блок по локальным координатам.
// Координаты вне [0, ChunkSize) и обращение к невыделенному чанку - ошибка программиста (panic).
func (c *Chunk) GetBlockAt(local vec.Vec3) Block {
	return c.blocks[c.mustIndex(local)]
}

// SetBlockAt активирует блок (материал по умолчанию) по мировым координатам
func (c *Chunk) SetBlockAt(worldCoord vec.Vec3) {
	c.SetBlock(WorldToLocal(worldCoord), NewActiveBlock(MaterialDefault))
}

// SetBlock записывает блок по локальным координатам и помечает чанк грязным
func (c *Chunk) SetBlock(local vec.Vec3, b Block) {
	i := c.mustIndex(local)

	prev := c.blocks[i]
	c.blocks[i] = b

	switch {
	case b.Active && !prev.Active:
		c.active++
	case !b.Active && prev.Active:
		c.active--
	}
	c.MarkDirty()
}

// ForEachActive вызывает fn для каждого активного блока с его мировыми координатами
func (c *Chunk) ForEachActive(fn func(worldCoord vec.Vec3, b Block)) {
	if !c.allocated {
		return
	}
	for i, b := range c.blocks {
		if !b.Active {
			continue
		}
		fn(LocalFromIndex(i).Add(c.worldPosition), b)
	}
}

func (c *Chunk) mustIndex(local vec.Vec3) int {
	if !c.allocated {
		panic(fmt.Sprintf("world: обращение к невыделенному чанку %v", c.localPosition))
	}
	if local.AnyNegative() || local.AnyAtLeast(vec.New(ChunkSize, ChunkSize, ChunkSize)) {
		panic(fmt.Sprintf("world: локальные координаты %v вне чанка [0,%d)", local, ChunkSize))
	}
	return BlockIndex(local)
}

// LocalFromIndex обратна BlockIndex
func LocalFromIndex(i int) vec.Vec3 {
	return vec.Vec3{
		X: i & WorldToLocalMask,
		Y: i >> ChunkShift & WorldToLocalMask,
		Z: i >> (2 * ChunkShift) & WorldToLocalMask,
	}
}

// SetPosition перемещает чанк. Вызывает UpdateModelMatrix.
func (c *Chunk) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.UpdateModelMatrix()
}

// SetRotation задаёт углы поворота (радианы) вокруг X, Y, Z
func (c *Chunk) SetRotation(r mgl32.Vec3) {
	c.rotation = r
	c.UpdateModelMatrix()
}

// SetScale задаёт масштаб
func (c *Chunk) SetScale(s mgl32.Vec3) {
	c.scale = s
	c.UpdateModelMatrix()
}

// UpdateModelMatrix пересчитывает матрицу модели T(position) * R * S * T(-origin).
// Вершины меша уже лежат в мировых координатах, поэтому масштаб и поворот
// применяются относительно начала чанка, а начало переносится в position.
// Это расходится с классической S * R * T(position): при ней мировые вершины
// сдвигались бы на WorldPosition дважды. Для неподвижного чанка матрица единичная.
func (c *Chunk) UpdateModelMatrix() {
	origin := c.worldPosition.ToFloat()
	c.model = mgl32.Translate3D(c.position.X(), c.position.Y(), c.position.Z()).
		Mul4(mgl32.HomogRotate3DZ(c.rotation.Z())).
		Mul4(mgl32.HomogRotate3DY(c.rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(c.rotation.X())).
		Mul4(mgl32.Scale3D(c.scale.X(), c.scale.Y(), c.scale.Z())).
		Mul4(mgl32.Translate3D(-origin.X(), -origin.Y(), -origin.Z()))
}

// ModelMatrix возвращает текущую матрицу модели
func (c *Chunk) ModelMatrix() mgl32.Mat4 { return c.model }

// MeshData возвращает CPU-копию последнего построенного меша
func (c *Chunk) MeshData() *Mesh { return &c.mesh }

// HasBuffers возвращает true, если GPU-буферы созданы
func (c *Chunk) HasBuffers() bool {
	return c.vertexBuffer != nil && c.indexBuffer != nil
}

// BuildMesh строит геометрию чанка в dst без обращения к устройству.
// Каждый активный блок даёт полный куб (6 граней), соседи не учитываются.
func (c *Chunk) BuildMesh(dst *Mesh) {
	dst.Reset()
	if !c.allocated {
		return
	}
	dst.Grow(c.active)
	for i := range c.blocks {
		if !c.blocks[i].Active {
			continue
		}
		dst.AppendCube(LocalFromIndex(i).Add(c.worldPosition))
	}
}

// Mesh перестраивает геометрию чанка, если он выделен и грязный,
// и загружает её в новые буферы устройства.
// При ошибке устройства старые буферы сохраняются, флаг dirty не снимается.
func (c *Chunk) Mesh(device gpu.Device) error {
	if !c.allocated || !c.dirty {
		return nil
	}

	c.BuildMesh(&c.mesh)
	if c.mesh.Empty() {
		c.releaseBuffers()
		c.dirty = false
		return nil
	}

	format := c.mesh.IndexFormat()
	vb, err := device.CreateBuffer(gpu.VertexBuffer, gpu.EncodeVertices(c.mesh.Vertices))
	if err != nil {
		return fmt.Errorf("чанк %v: вершинный буфер: %w", c.localPosition, err)
	}
	ib, err := device.CreateBuffer(gpu.IndexBuffer, gpu.EncodeIndices(c.mesh.Indices, format))
	if err != nil {
		vb.Release()
		return fmt.Errorf("чанк %v: индексный буфер: %w", c.localPosition, err)
	}

	c.releaseBuffers()
	c.vertexBuffer = vb
	c.indexBuffer = ib
	c.indexFormat = format
	c.indexCount = len(c.mesh.Indices)
	c.dirty = false
	return nil
}

// Render записывает матрицу модели и фиксированный материал в constantBuffer,
// привязывает буферы чанка и выполняет индексированную отрисовку.
// Без буферов ничего не делает.
func (c *Chunk) Render(ctx gpu.Context, constantBuffer gpu.Buffer) error {
	if !c.HasBuffers() {
		return nil
	}

	consts := gpu.PrimConstants{
		World:         c.model,
		MeshColor:     placeholderColor,
		DiffuseColor:  placeholderColor,
		SpecularColor: placeholderColor,
		SpecularPower: placeholderPower,
	}
	if err := ctx.UpdateSubresource(constantBuffer, consts.Bytes()); err != nil {
		return fmt.Errorf("чанк %v: константный буфер: %w", c.localPosition, err)
	}

	ctx.SetVertexBuffer(0, c.vertexBuffer, gpu.VertexStride, 0)
	ctx.SetIndexBuffer(c.indexBuffer, c.indexFormat, 0)
	ctx.SetPrimitiveTopology(gpu.TriangleList)
	ctx.DrawIndexed(c.indexCount, 0, 0)
	return nil
}

// IndexCount возвращает количество индексов в текущем индексном буфере
func (c *Chunk) IndexCount() int { return c.indexCount }

// IndexFormat возвращает формат текущего индексного буфера
func (c *Chunk) IndexFormat() gpu.IndexFormat { return c.indexFormat }

// Release освобождает GPU-буферы чанка
func (c *Chunk) Release() {
	c.releaseBuffers()
}

func (c *Chunk) releaseBuffers() {
	if c.vertexBuffer != nil {
		c.vertexBuffer.Release()
		c.vertexBuffer = nil
	}
	if c.indexBuffer != nil {
		c.indexBuffer.Release()
		c.indexBuffer = nil
	}
	c.indexCount = 0
}
