package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

var (
	// ErrStorageClosed возвращается при обращении к закрытому хранилищу
	ErrStorageClosed = errors.New("storage: хранилище закрыто")
	// ErrWorldNotFound возвращается, если мир с таким ID не сохранялся
	ErrWorldNotFound = errors.New("storage: мир не найден")
	// ErrChunkNotFound возвращается, если чанк не сохранялся
	ErrChunkNotFound = errors.New("storage: чанк не найден")
)

// WorldMeta описывает сохранённый мир
type WorldMeta struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Size         vec.Vec3  `json:"size"`
	Chunks       int       `json:"chunks"`
	ActiveBlocks int       `json:"active_blocks"`
	CreatedAt    time.Time `json:"created_at"`
	SavedAt      time.Time `json:"saved_at"`
}

// WorldStorage хранит воксельные миры в BadgerDB.
// Ключи: "world:<id>:meta" и "world:<id>:chunk:<index>".
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
	log     *logging.Logger
}

// NewWorldStorage открывает (или создаёт) хранилище в dataPath/worlds
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "worlds")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		log:     logging.GetStorageLogger(),
	}, nil
}

func worldPrefix(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("world:%s:", id))
}

func metaKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("world:%s:meta", id))
}

func chunkKey(id uuid.UUID, index int) []byte {
	return []byte(fmt.Sprintf("world:%s:chunk:%d", id, index))
}

func chunkPrefix(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("world:%s:chunk:", id))
}

// Close закрывает хранилище
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	return ws.db.Close()
}

// SaveWorld полностью перезаписывает мир под идентификатором id.
// uuid.Nil означает новый мир: идентификатор генерируется.
func (ws *WorldStorage) SaveWorld(id uuid.UUID, name string, w *world.World) (WorldMeta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return WorldMeta{}, ErrStorageClosed
	}

	now := time.Now().UTC()
	meta := WorldMeta{ID: id, Name: name, Size: w.Size(), CreatedAt: now, SavedAt: now}
	if id == uuid.Nil {
		meta.ID = uuid.New()
	} else if prev, err := ws.readMeta(id); err == nil {
		meta.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, ErrWorldNotFound) {
		return WorldMeta{}, err
	}

	// Набор чанков в базе совпадает с выделенными чанками мира
	if err := ws.db.DropPrefix(chunkPrefix(meta.ID)); err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка очистки мира %s: %w", meta.ID, err)
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()

	err := w.ForEachAllocated(func(index int, c *world.Chunk) error {
		rec := NewChunkRecord(c)
		data, err := marshalChunk(rec)
		if err != nil {
			return err
		}
		meta.Chunks++
		meta.ActiveBlocks += rec.Blocks()
		return wb.Set(chunkKey(meta.ID, index), data)
	})
	if err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка сохранения чанков мира %s: %w", meta.ID, err)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка сериализации мира: %w", err)
	}
	if err := wb.Set(metaKey(meta.ID), data); err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка сохранения мира %s: %w", meta.ID, err)
	}
	if err := wb.Flush(); err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	ws.log.Info("💾 Мир %s (%s) сохранён: %d чанков, %d блоков", meta.ID, meta.Name, meta.Chunks, meta.ActiveBlocks)
	return meta, nil
}

// SaveChunk сохраняет один чанк уже существующего мира
func (ws *WorldStorage) SaveChunk(id uuid.UUID, index int, c *world.Chunk) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}
	if !c.IsAllocated() {
		return fmt.Errorf("чанк %d: %w", index, world.ErrNotAllocated)
	}
	if _, err := ws.readMeta(id); err != nil {
		return err
	}

	data, err := marshalChunk(NewChunkRecord(c))
	if err != nil {
		return err
	}

	err = ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(id, index), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadChunk читает запись чанка
func (ws *WorldStorage) LoadChunk(id uuid.UUID, index int) (*ChunkRecord, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrStorageClosed
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(id, index))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("мир %s, чанк %d: %w", id, index, ErrChunkNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return unmarshalChunk(data)
}

// LoadWorld восстанавливает мир. Блоки проходят через SetVoxel,
// поэтому все загруженные чанки грязные и будут перестроены при первой отрисовке.
func (ws *WorldStorage) LoadWorld(id uuid.UUID) (*world.World, WorldMeta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, WorldMeta{}, ErrStorageClosed
	}

	meta, err := ws.readMeta(id)
	if err != nil {
		return nil, WorldMeta{}, err
	}

	w, err := world.NewWorld(meta.Size)
	if err != nil {
		return nil, WorldMeta{}, fmt.Errorf("мир %s: %w", id, err)
	}

	err = ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkPrefix(id)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := unmarshalChunk(data)
			if err != nil {
				return fmt.Errorf("ключ %s: %w", it.Item().Key(), err)
			}
			if err := ApplyChunk(w, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, WorldMeta{}, fmt.Errorf("ошибка загрузки мира %s: %w", id, err)
	}

	ws.log.Info("📂 Мир %s (%s) загружен: %d чанков", meta.ID, meta.Name, len(w.AllocatedChunks()))
	return w, meta, nil
}

// ApplyChunk записывает блоки из записи в мир
func ApplyChunk(w *world.World, rec *ChunkRecord) error {
	origin := rec.Position.Mul(world.ChunkSize)
	if w.OutOfBounds(origin) {
		return fmt.Errorf("чанк %v вне мира %v", rec.Position, w.Size())
	}
	// Пустой чанк тоже выделяется, чтобы сохранить набор чанков мира
	w.GetOrCreateChunk(origin)
	rec.ForEach(func(p vec.Vec3, m world.BlockMaterial) {
		w.SetVoxel(p, m)
	})
	return nil
}

// ListWorlds возвращает все сохранённые миры, новые первыми
func (ws *WorldStorage) ListWorlds() ([]WorldMeta, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrStorageClosed
	}

	var worlds []WorldMeta
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("world:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if !strings.HasSuffix(string(item.Key()), ":meta") {
				continue
			}
			err := item.Value(func(val []byte) error {
				var meta WorldMeta
				if err := json.Unmarshal(val, &meta); err != nil {
					return err
				}
				worlds = append(worlds, meta)
				return nil
			})
			if err != nil {
				return fmt.Errorf("ключ %s: %w", item.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	sort.Slice(worlds, func(i, j int) bool {
		return worlds[i].SavedAt.After(worlds[j].SavedAt)
	})
	return worlds, nil
}

// DeleteWorld удаляет мир со всеми чанками
func (ws *WorldStorage) DeleteWorld(id uuid.UUID) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}
	if _, err := ws.readMeta(id); err != nil {
		return err
	}

	if err := ws.db.DropPrefix(worldPrefix(id)); err != nil {
		return fmt.Errorf("ошибка удаления мира %s: %w", id, err)
	}
	ws.log.Info("🗑️ Мир %s удалён", id)
	return nil
}

func (ws *WorldStorage) readMeta(id uuid.UUID) (WorldMeta, error) {
	var meta WorldMeta
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return WorldMeta{}, fmt.Errorf("мир %s: %w", id, ErrWorldNotFound)
	}
	if err != nil {
		return WorldMeta{}, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return meta, nil
}
