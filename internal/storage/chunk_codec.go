package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/willf/bitset"
)

// ErrChecksumMismatch возвращается, если содержимое записи чанка повреждено
var ErrChecksumMismatch = errors.New("storage: контрольная сумма чанка не совпадает")

// ErrBlockOutOfChunk возвращается, если маска записи адресует блок за пределами чанка
var ErrBlockOutOfChunk = errors.New("storage: индекс блока вне чанка")

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// ChunkRecord - сохранённое состояние одного чанка.
// Active хранит маску активных блоков по линейному индексу,
// Materials - материалы активных блоков в порядке возрастания индекса.
type ChunkRecord struct {
	Position  vec.Vec3       `json:"position"`
	Active    *bitset.BitSet `json:"active"`
	Materials []byte         `json:"materials"`
	Checksum  uint64         `json:"checksum"`
}

// NewChunkRecord снимает состояние блоков чанка
func NewChunkRecord(c *world.Chunk) *ChunkRecord {
	rec := &ChunkRecord{
		Position:  c.LocalPosition(),
		Active:    bitset.New(world.ChunkVolume),
		Materials: make([]byte, 0, c.ActiveBlocks()),
	}
	origin := c.WorldPosition()
	c.ForEachActive(func(p vec.Vec3, b world.Block) {
		rec.Active.Set(uint(world.BlockIndex(p.Sub(origin))))
		rec.Materials = append(rec.Materials, byte(b.Material))
	})
	rec.Checksum = rec.sum()
	return rec
}

// Blocks возвращает количество активных блоков в записи
func (r *ChunkRecord) Blocks() int {
	return int(r.Active.Count())
}

// ForEach вызывает fn для каждого активного блока записи с его мировыми координатами
func (r *ChunkRecord) ForEach(fn func(p vec.Vec3, m world.BlockMaterial)) {
	origin := r.Position.Mul(world.ChunkSize)
	n := 0
	for i, ok := r.Active.NextSet(0); ok; i, ok = r.Active.NextSet(i + 1) {
		fn(world.LocalFromIndex(int(i)).Add(origin), world.BlockMaterial(r.Materials[n]))
		n++
	}
}

func (r *ChunkRecord) sum() uint64 {
	d := xxhash.New()
	for _, word := range r.Active.Bytes() {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(word >> (8 * i))
		}
		d.Write(buf[:])
	}
	d.Write(r.Materials)
	return d.Sum64()
}

func (r *ChunkRecord) validate() error {
	if r.Active == nil {
		return fmt.Errorf("чанк %v: нет маски блоков", r.Position)
	}
	if i, ok := r.Active.NextSet(world.ChunkVolume); ok {
		return fmt.Errorf("чанк %v: блок %d: %w", r.Position, i, ErrBlockOutOfChunk)
	}
	if int(r.Active.Count()) != len(r.Materials) {
		return fmt.Errorf("чанк %v: %d активных блоков, %d материалов", r.Position, r.Active.Count(), len(r.Materials))
	}
	if r.sum() != r.Checksum {
		return fmt.Errorf("чанк %v: %w", r.Position, ErrChecksumMismatch)
	}
	for _, m := range r.Materials {
		if !world.BlockMaterial(m).Valid() {
			return fmt.Errorf("чанк %v: неизвестный материал %d", r.Position, m)
		}
	}
	return nil
}

func marshalChunk(r *ChunkRecord) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации чанка: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func unmarshalChunk(data []byte) (*ChunkRecord, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки чанка: %w", err)
	}
	var r ChunkRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("ошибка десериализации чанка: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
