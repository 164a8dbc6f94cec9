package eventbus

import "github.com/annel0/voxel-chunks/internal/vec"

// Типы событий воксельного мира
const (
	EventVoxelChanged = "VoxelChanged"
	EventChunksMeshed = "ChunksMeshed"
	EventWorldSaved   = "WorldSaved"
)

// Приоритеты: правки мира не теряются, статистика кадров может быть отброшена
const (
	PriorityLow  = 1
	PriorityHigh = 7
)

// VoxelChanged - воксель активирован или деактивирован
type VoxelChanged struct {
	Position vec.Vec3 `json:"position"`
	Active   bool     `json:"active"`
	Material string   `json:"material,omitempty"`
	Chunk    int      `json:"chunk"`
}

// ChunksMeshed - в кадре были перестроены чанки
type ChunksMeshed struct {
	Frame    uint64 `json:"frame"`
	Chunks   int    `json:"chunks"`
	Vertices int    `json:"vertices"`
	Indices  int    `json:"indices"`
}

// WorldSaved - мир записан в хранилище
type WorldSaved struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Chunks       int    `json:"chunks"`
	ActiveBlocks int    `json:"active_blocks"`
}
