package world

import (
	"fmt"

	"github.com/annel0/voxel-chunks/internal/gpu"
	"github.com/annel0/voxel-chunks/internal/vec"
)

// World - разреженное воксельное пространство из лениво выделяемых чанков.
// Все чанки лежат в плоском срезе фиксированной длины, который никогда не
// переаллоцируется; к чанкам обращаются по индексу.
type World struct {
	size   vec.Vec3 // размер мира в блоках
	dims   vec.Vec3 // размер мира в чанках
	chunks []Chunk
}

// Stats содержит сводку по миру
type Stats struct {
	Size            vec.Vec3 `json:"size"`
	ChunkDims       vec.Vec3 `json:"chunk_dims"`
	TotalChunks     int      `json:"total_chunks"`
	AllocatedChunks int      `json:"allocated_chunks"`
	DirtyChunks     int      `json:"dirty_chunks"`
	ActiveBlocks    int      `json:"active_blocks"`
}

// NewWorld создаёт мир заданного размера. Каждая компонента размера должна
// быть положительной и кратной ChunkSize.
func NewWorld(size vec.Vec3) (*World, error) {
	for _, n := range []int{size.X, size.Y, size.Z} {
		if n <= 0 || n&WorldToLocalMask != 0 {
			return nil, fmt.Errorf("размер %v: %w", size, ErrInvalidSize)
		}
	}

	dims := size.Shr(ChunkShift)
	return &World{
		size:   size,
		dims:   dims,
		chunks: make([]Chunk, dims.Volume()),
	}, nil
}

// MustNewWorld как NewWorld, но паникует при ошибке
func MustNewWorld(size vec.Vec3) *World {
	w, err := NewWorld(size)
	if err != nil {
		panic(err)
	}
	return w
}

// Size возвращает размер мира в блоках
func (w *World) Size() vec.Vec3 { return w.size }

// ChunkDims возвращает размер мира в чанках
func (w *World) ChunkDims() vec.Vec3 { return w.dims }

// ChunkCount возвращает общее количество ячеек под чанки
func (w *World) ChunkCount() int { return len(w.chunks) }

// OutOfBounds возвращает true для координат вне мира (включая отрицательные)
func (w *World) OutOfBounds(p vec.Vec3) bool {
	return p.AnyNegative() || p.AnyAtLeast(w.size)
}

// ChunkIndex возвращает линейный индекс чанка: cx + cy*nx + cz*nx*ny
func (w *World) ChunkIndex(c vec.Vec3) int {
	return c.X + c.Y*w.dims.X + c.Z*w.dims.X*w.dims.Y
}

// ChunkCoord выполняет обратное преобразование индекса в координаты чанка
func (w *World) ChunkCoord(index int) vec.Vec3 {
	return vec.Vec3{
		X: index % w.dims.X,
		Y: index / w.dims.X % w.dims.Y,
		Z: index / (w.dims.X * w.dims.Y),
	}
}

// Chunk возвращает чанк по индексу. Указатель стабилен на всё время жизни мира.
func (w *World) Chunk(index int) *Chunk {
	return &w.chunks[index]
}

// GetOrCreateChunk возвращает индекс чанка, содержащего мировую координату,
// выделяя его при первом обращении. Координата вне мира - ошибка программиста (panic).
func (w *World) GetOrCreateChunk(p vec.Vec3) int {
	if w.OutOfBounds(p) {
		panic(fmt.Sprintf("world: координата %v вне мира %v", p, w.size))
	}
	chunkCoord := WorldToChunk(p)
	index := w.ChunkIndex(chunkCoord)

	c := &w.chunks[index]
	if !c.IsAllocated() {
		c.Reset(w, chunkCoord)
	}
	return index
}

// AddVoxel активирует блок с материалом по умолчанию.
// Вне мира - ничего не делает и возвращает false.
func (w *World) AddVoxel(p vec.Vec3) bool {
	if w.OutOfBounds(p) {
		return false
	}
	index := w.GetOrCreateChunk(p)
	w.chunks[index].SetBlockAt(p)
	return true
}

// SetVoxel активирует блок с указанным материалом
func (w *World) SetVoxel(p vec.Vec3, material BlockMaterial) bool {
	if w.OutOfBounds(p) {
		return false
	}
	index := w.GetOrCreateChunk(p)
	w.chunks[index].SetBlock(WorldToLocal(p), NewActiveBlock(material))
	return true
}

// RemoveVoxel делает блок неактивным. Невыделенные чанки не создаются.
func (w *World) RemoveVoxel(p vec.Vec3) bool {
	if w.OutOfBounds(p) {
		return false
	}
	c := &w.chunks[w.ChunkIndex(WorldToChunk(p))]
	if !c.IsAllocated() {
		return false
	}
	local := WorldToLocal(p)
	if !c.GetBlockAt(local).Active {
		return false
	}
	c.SetBlock(local, Block{})
	return true
}

// BlockAt возвращает блок по мировым координатам.
// Второе значение false, если координата вне мира или чанк не выделен.
func (w *World) BlockAt(p vec.Vec3) (Block, bool) {
	if w.OutOfBounds(p) {
		return Block{}, false
	}
	c := &w.chunks[w.ChunkIndex(WorldToChunk(p))]
	if !c.IsAllocated() {
		return Block{}, false
	}
	return c.GetBlockAt(WorldToLocal(p)), true
}

// ForEachAllocated вызывает fn для каждого выделенного чанка по возрастанию индекса.
// Первая ошибка прерывает обход.
func (w *World) ForEachAllocated(fn func(index int, c *Chunk) error) error {
	for i := range w.chunks {
		c := &w.chunks[i]
		if !c.IsAllocated() {
			continue
		}
		if err := fn(i, c); err != nil {
			return err
		}
	}
	return nil
}

// AllocatedChunks возвращает индексы выделенных чанков
func (w *World) AllocatedChunks() []int {
	var out []int
	for i := range w.chunks {
		if w.chunks[i].IsAllocated() {
			out = append(out, i)
		}
	}
	return out
}

// Stats возвращает сводку по миру
func (w *World) Stats() Stats {
	s := Stats{
		Size:        w.size,
		ChunkDims:   w.dims,
		TotalChunks: len(w.chunks),
	}
	for i := range w.chunks {
		c := &w.chunks[i]
		if !c.IsAllocated() {
			continue
		}
		s.AllocatedChunks++
		s.ActiveBlocks += c.ActiveBlocks()
		if c.IsDirty() {
			s.DirtyChunks++
		}
	}
	return s
}

// MeshAll перестраивает все грязные чанки
func (w *World) MeshAll(device gpu.Device) error {
	return w.ForEachAllocated(func(_ int, c *Chunk) error {
		return c.Mesh(device)
	})
}

// Release освобождает GPU-буферы всех чанков
func (w *World) Release() {
	for i := range w.chunks {
		w.chunks[i].Release()
	}
}
