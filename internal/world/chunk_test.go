package world

import (
	"testing"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/gpu/headless"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAllocatedChunk(t *testing.T, local vec.Vec3) *Chunk {
	t.Helper()
	w := MustNewWorld(vec.New(64, 64, 64))
	c := w.Chunk(w.ChunkIndex(local))
	c.Reset(w, local)
	return c
}

func TestChunk_Reset(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(1, 0, 1))

	assert.True(t, c.IsAllocated())
	assert.True(t, c.IsDirty(), "После Reset чанк должен быть грязным")
	assert.Equal(t, vec.New(32, 0, 32), c.WorldPosition())
	assert.Equal(t, vec.New(1, 0, 1), c.LocalPosition())
	assert.Equal(t, 0, c.ActiveBlocks())
	assert.NotNil(t, c.World())
	assert.True(t, c.ModelMatrix().ApproxEqual(mgl32.Ident4()),
		"Несдвинутый чанк не должен смещать вершины, уже лежащие в мировых координатах")

	for _, p := range []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 31, Y: 31, Z: 31}, {X: 5, Y: 17, Z: 9}} {
		assert.False(t, c.GetBlockAt(p).Active)
	}
}

func TestChunk_SetBlockAtUsesLocalMask(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(1, 0, 0))
	c.dirty = false

	c.SetBlockAt(vec.New(33, 2, 31))

	assert.True(t, c.GetBlockAt(vec.New(1, 2, 31)).Active)
	assert.Equal(t, MaterialDefault, c.GetBlockAt(vec.New(1, 2, 31)).Material)
	assert.Equal(t, 1, c.ActiveBlocks())
	assert.True(t, c.IsDirty(), "SetBlockAt должен помечать чанк грязным")

	// Повторная активация не увеличивает счётчик
	c.SetBlockAt(vec.New(33, 2, 31))
	assert.Equal(t, 1, c.ActiveBlocks())

	c.SetBlock(vec.New(1, 2, 31), Block{})
	assert.Equal(t, 0, c.ActiveBlocks())
}

func TestChunk_OutOfRangeAccessPanics(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 0, 0))

	assert.Panics(t, func() { c.GetBlockAt(vec.New(32, 0, 0)) })
	assert.Panics(t, func() { c.GetBlockAt(vec.New(0, -1, 0)) })
	assert.Panics(t, func() { c.SetBlock(vec.New(0, 0, 40), NewActiveBlock(MaterialDirt)) })

	var empty Chunk
	assert.Panics(t, func() { empty.GetBlockAt(vec.New(0, 0, 0)) }, "Невыделенный чанк нельзя адресовать")
}

func TestChunk_MeshFaceCount(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 0, 0))
	dev := headless.NewDevice()

	const n = 10
	for i := 0; i < n; i++ {
		c.SetBlockAt(vec.New(i, i, i))
	}

	require.NoError(t, c.Mesh(dev))
	assert.False(t, c.IsDirty())
	assert.Len(t, c.MeshData().Vertices, n*VerticesPerCube)
	assert.Len(t, c.MeshData().Indices, n*IndicesPerCube)
	assert.Equal(t, n*IndicesPerCube, c.IndexCount())
	assert.Equal(t, gpu.IndexUint16, c.IndexFormat())
	assert.Equal(t, 2, dev.LiveBuffers())
}

func TestChunk_MeshIsIdempotent(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 0, 0))
	dev := headless.NewDevice()
	c.SetBlockAt(vec.New(3, 4, 5))

	require.NoError(t, c.Mesh(dev))
	created := dev.CreatedBuffers()
	vertices := len(c.MeshData().Vertices)

	require.NoError(t, c.Mesh(dev))
	assert.Equal(t, created, dev.CreatedBuffers(), "Повторный Mesh без изменений не должен создавать буферы")
	assert.Equal(t, vertices, len(c.MeshData().Vertices))
	assert.Equal(t, 36, c.IndexCount())
}

func TestChunk_RemeshReplacesBuffers(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 0, 0))
	dev := headless.NewDevice()

	c.SetBlockAt(vec.New(0, 0, 0))
	require.NoError(t, c.Mesh(dev))

	c.SetBlockAt(vec.New(1, 0, 0))
	assert.True(t, c.IsDirty())
	require.NoError(t, c.Mesh(dev))

	assert.Equal(t, 4, dev.CreatedBuffers())
	assert.Equal(t, 2, dev.LiveBuffers(), "Старые буферы должны быть освобождены")
	assert.Equal(t, 72, c.IndexCount())

	// Удаление последних блоков оставляет чанк без буферов
	c.SetBlock(vec.New(0, 0, 0), Block{})
	c.SetBlock(vec.New(1, 0, 0), Block{})
	require.NoError(t, c.Mesh(dev))
	assert.False(t, c.HasBuffers())
	assert.Equal(t, 0, dev.LiveBuffers())
}

func TestChunk_MeshSkipsUnallocated(t *testing.T) {
	var c Chunk
	dev := headless.NewDevice()

	require.NoError(t, c.Mesh(dev))
	assert.Equal(t, 0, dev.CreatedBuffers())
}

func TestChunk_MeshPropagatesDeviceFailure(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 0, 0))
	dev := headless.NewDevice(headless.WithBufferLimit(1))
	c.SetBlockAt(vec.New(0, 0, 0))

	err := c.Mesh(dev)
	assert.ErrorIs(t, err, headless.ErrDeviceLost)
	assert.True(t, c.IsDirty(), "После ошибки меш остаётся устаревшим")
	assert.False(t, c.HasBuffers())
	assert.Equal(t, 0, dev.LiveBuffers(), "Вершинный буфер должен быть освобождён")
}

func TestChunk_Render(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(1, 0, 0))
	dev := headless.NewDevice()
	cb, err := dev.CreateBuffer(gpu.ConstantBuffer, make([]byte, gpu.PrimConstantsSize))
	require.NoError(t, err)

	// Без буферов ничего не рисуется
	require.NoError(t, c.Render(dev, cb))
	assert.Empty(t, dev.DrawCalls())

	c.SetBlockAt(vec.New(32, 0, 0))
	require.NoError(t, c.Mesh(dev))
	require.NoError(t, c.Render(dev, cb))

	calls := dev.DrawCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 36, calls[0].IndexCount)
	assert.Equal(t, gpu.VertexStride, calls[0].Stride)
	assert.Equal(t, gpu.IndexUint16, calls[0].IndexFormat)
	assert.Equal(t, c.ModelMatrix(), calls[0].Constants.World)
	assert.Equal(t, float32(15), calls[0].Constants.SpecularPower)
	assert.Equal(t, mgl32.Vec4{0.8, 0.8, 0.8, 0.5}, calls[0].Constants.MeshColor)
}

func TestChunk_ModelMatrixMovesChunkOrigin(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(1, 0, 0))

	c.SetPosition(mgl32.Vec3{40, 0, 0})
	p := mgl32.TransformCoordinate(mgl32.Vec3{32, 0, 0}, c.ModelMatrix())
	assert.True(t, p.ApproxEqual(mgl32.Vec3{40, 0, 0}), "Начало чанка должно переместиться в position, получено %v", p)

	c.SetScale(mgl32.Vec3{2, 2, 2})
	p = mgl32.TransformCoordinate(mgl32.Vec3{33, 1, 0}, c.ModelMatrix())
	assert.True(t, p.ApproxEqual(mgl32.Vec3{42, 2, 0}), "получено %v", p)

	c.SetRotation(mgl32.Vec3{0, 0, 0})
	assert.True(t, mgl32.TransformCoordinate(mgl32.Vec3{32, 0, 0}, c.ModelMatrix()).ApproxEqual(mgl32.Vec3{40, 0, 0}))
}

func TestChunk_UnmovedChunkHasIdentityModel(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(1, 0, 1))
	assert.True(t, c.ModelMatrix().ApproxEqual(mgl32.Ident4()), "получено %v", c.ModelMatrix())

	p := mgl32.TransformCoordinate(mgl32.Vec3{32.5, 0.5, 32.5}, c.ModelMatrix())
	assert.True(t, p.ApproxEqual(mgl32.Vec3{32.5, 0.5, 32.5}), "вершина не должна сдвигаться повторно, получено %v", p)
}

func TestChunk_ForEachActive(t *testing.T) {
	c := newAllocatedChunk(t, vec.New(0, 1, 0))
	c.SetBlockAt(vec.New(2, 33, 4))

	var seen []vec.Vec3
	c.ForEachActive(func(p vec.Vec3, b Block) {
		seen = append(seen, p)
		assert.True(t, b.Active)
	})
	assert.Equal(t, []vec.Vec3{{X: 2, Y: 33, Z: 4}}, seen)
}
