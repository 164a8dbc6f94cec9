package world

import (
	"errors"
	"testing"

	"github.com/annel0/voxel-chunks/internal/gpu/headless"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorld_ValidatesSize(t *testing.T) {
	w, err := NewWorld(vec.New(64, 32, 96))
	require.NoError(t, err)
	assert.Equal(t, vec.New(2, 1, 3), w.ChunkDims())
	assert.Equal(t, 6, w.ChunkCount())
	assert.Empty(t, w.AllocatedChunks(), "Чанки выделяются лениво")

	for _, size := range []vec.Vec3{{X: 0, Y: 32, Z: 32}, {X: 33, Y: 32, Z: 32}, {X: 32, Y: -32, Z: 32}, {X: 32, Y: 32, Z: 16}} {
		_, err := NewWorld(size)
		assert.ErrorIs(t, err, ErrInvalidSize, "размер %v", size)
	}
	assert.Panics(t, func() { MustNewWorld(vec.New(1, 1, 1)) })
}

func TestWorld_AddVoxelThenLookup(t *testing.T) {
	w := MustNewWorld(vec.New(64, 64, 64))

	points := []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 31, Y: 31, Z: 31}, {X: 32, Y: 0, Z: 0}, {X: 63, Y: 63, Z: 63}, {X: 40, Y: 5, Z: 33}}
	for _, p := range points {
		require.True(t, w.AddVoxel(p))

		c := w.Chunk(w.ChunkIndex(WorldToChunk(p)))
		assert.True(t, c.GetBlockAt(WorldToLocal(p)).Active, "блок %v должен быть активен", p)

		b, ok := w.BlockAt(p)
		assert.True(t, ok)
		assert.True(t, b.Active)
	}
}

func TestWorld_OutOfBoundsIsNoop(t *testing.T) {
	w := MustNewWorld(vec.New(64, 32, 64))

	for _, p := range []vec.Vec3{{X: 64, Y: 0, Z: 0}, {X: 0, Y: 32, Z: 0}, {X: 0, Y: 0, Z: 64}, {X: -1, Y: 0, Z: 0}, {X: 0, Y: -5, Z: 0}, {X: 100, Y: 100, Z: 100}} {
		assert.True(t, w.OutOfBounds(p))
		assert.False(t, w.AddVoxel(p))
		assert.False(t, w.SetVoxel(p, MaterialStone))
		assert.False(t, w.RemoveVoxel(p))
		_, ok := w.BlockAt(p)
		assert.False(t, ok)
	}
	assert.Empty(t, w.AllocatedChunks(), "Вне мира чанки не должны выделяться")
}

func TestWorld_Boundary(t *testing.T) {
	w := MustNewWorld(vec.New(64, 64, 64))

	assert.True(t, w.AddVoxel(vec.New(63, 0, 0)))
	assert.False(t, w.AddVoxel(vec.New(64, 0, 0)))
	assert.Equal(t, []int{w.ChunkIndex(vec.New(1, 0, 0))}, w.AllocatedChunks())
}

func TestWorld_ThreeVoxelsSingleChunk(t *testing.T) {
	w := MustNewWorld(vec.New(32, 32, 32))
	dev := headless.NewDevice()

	w.AddVoxel(vec.New(0, 0, 0))
	w.AddVoxel(vec.New(1, 0, 0))
	w.AddVoxel(vec.New(0, 1, 0))

	require.Equal(t, []int{0}, w.AllocatedChunks())
	c := w.Chunk(0)
	assert.Equal(t, 3, c.ActiveBlocks())

	require.NoError(t, w.MeshAll(dev))
	assert.Len(t, c.MeshData().Vertices, 72)
	assert.Len(t, c.MeshData().Indices, 108)

	s := w.Stats()
	assert.Equal(t, 1, s.AllocatedChunks)
	assert.Equal(t, 3, s.ActiveBlocks)
	assert.Equal(t, 0, s.DirtyChunks)
}

func TestWorld_ChunkIndexNonCubical(t *testing.T) {
	w := MustNewWorld(vec.New(96, 64, 32))
	dims := w.ChunkDims()

	seen := make(map[int]bool)
	for z := 0; z < dims.Z; z++ {
		for y := 0; y < dims.Y; y++ {
			for x := 0; x < dims.X; x++ {
				c := vec.New(x, y, z)
				i := w.ChunkIndex(c)
				assert.False(t, seen[i], "индекс %d уже занят", i)
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, w.ChunkCount())
				assert.Equal(t, c, w.ChunkCoord(i))
				seen[i] = true
			}
		}
	}
	assert.Len(t, seen, w.ChunkCount())

	// Каждый выделенный чанк знает свою позицию
	w.AddVoxel(vec.New(95, 63, 31))
	c := w.Chunk(w.ChunkIndex(vec.New(2, 1, 0)))
	assert.True(t, c.IsAllocated())
	assert.Equal(t, vec.New(64, 32, 0), c.WorldPosition())
}

func TestWorld_SetAndRemoveVoxel(t *testing.T) {
	w := MustNewWorld(vec.New(32, 32, 32))
	dev := headless.NewDevice()
	p := vec.New(4, 5, 6)

	assert.False(t, w.RemoveVoxel(p), "Удаление из невыделенного чанка ничего не делает")
	assert.Empty(t, w.AllocatedChunks())

	require.True(t, w.SetVoxel(p, MaterialWood))
	b, _ := w.BlockAt(p)
	assert.Equal(t, NewActiveBlock(MaterialWood), b)

	require.NoError(t, w.MeshAll(dev))
	assert.True(t, w.RemoveVoxel(p))
	assert.False(t, w.RemoveVoxel(p))
	assert.True(t, w.Chunk(0).IsDirty(), "Удаление блока помечает чанк грязным")

	b, ok := w.BlockAt(p)
	assert.True(t, ok)
	assert.False(t, b.Active)
	assert.True(t, w.Chunk(0).IsAllocated(), "Чанк не уничтожается")
}

func TestWorld_ForEachAllocatedStopsOnError(t *testing.T) {
	w := MustNewWorld(vec.New(64, 32, 32))
	w.AddVoxel(vec.New(0, 0, 0))
	w.AddVoxel(vec.New(40, 0, 0))

	boom := errors.New("boom")
	visited := 0
	err := w.ForEachAllocated(func(int, *Chunk) error {
		visited++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, visited)
}

func TestWorld_Release(t *testing.T) {
	w := MustNewWorld(vec.New(64, 32, 32))
	dev := headless.NewDevice()
	w.AddVoxel(vec.New(0, 0, 0))
	w.AddVoxel(vec.New(40, 0, 0))

	require.NoError(t, w.MeshAll(dev))
	assert.Equal(t, 4, dev.LiveBuffers())

	w.Release()
	assert.Equal(t, 0, dev.LiveBuffers())
}

func TestWorld_GetOrCreateChunkOutOfBoundsPanics(t *testing.T) {
	w := MustNewWorld(vec.New(64, 64, 64))

	assert.Panics(t, func() { w.GetOrCreateChunk(vec.New(64, 0, 0)) })
	assert.Panics(t, func() { w.GetOrCreateChunk(vec.New(0, -1, 0)) })
	assert.Empty(t, w.AllocatedChunks(), "чужой слот не должен выделяться")

	index := w.GetOrCreateChunk(vec.New(63, 0, 0))
	assert.Equal(t, 1, index)
	assert.Equal(t, vec.New(1, 0, 0), w.Chunk(index).LocalPosition())
}
