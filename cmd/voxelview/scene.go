package main

import (
	"fmt"

	"github.com/annel0/voxel-chunks/internal/config"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/storage"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/google/uuid"
)

// generatorFromConfig собирает генератор рельефа по настройкам мира
func generatorFromConfig(wc *config.WorldConfig) (world.Generator, error) {
	var g world.Generator
	switch name := wc.GetGenerator(); name {
	case "sine":
		g.Height = world.SineHills
	case "perlin":
		g.Height = world.PerlinHills(wc.Seed, wc.GetNoiseScale(), wc.GetMaxHeight())
	case "flat":
		g.Height = func(x, z int) int { return 1 }
	case "empty":
		g.Height = world.ZeroHeight
	default:
		return g, fmt.Errorf("неизвестный генератор %q (sine, perlin, flat, empty)", name)
	}
	if wc.Layered {
		g.Material = world.LayeredMaterial
	}
	return g, nil
}

// buildWorld создаёт мир из конфигурации и засеивает его генератором
func buildWorld(wc *config.WorldConfig) (*world.World, error) {
	x, y, z := wc.GetSize()
	w, err := world.NewWorld(vec.New(x, y, z))
	if err != nil {
		return nil, err
	}

	g, err := generatorFromConfig(wc)
	if err != nil {
		return nil, err
	}

	fx, fz := wc.GetFootprint()
	placed := g.Fill(w, fx, fz)
	logging.Info("🏔️ Мир %dx%dx%d засеян генератором %s: %d блоков, %d чанков",
		x, y, z, wc.GetGenerator(), placed, len(w.AllocatedChunks()))
	return w, nil
}

// openWorld загружает мир из хранилища, если задан id, иначе генерирует новый
func openWorld(st *storage.WorldStorage, id string) (*world.World, storage.WorldMeta, error) {
	if id == "" {
		w, err := buildWorld(&cfg.World)
		return w, storage.WorldMeta{Name: cfg.World.GetGenerator()}, err
	}

	worldID, err := uuid.Parse(id)
	if err != nil {
		return nil, storage.WorldMeta{}, fmt.Errorf("неверный идентификатор мира %q: %w", id, err)
	}
	if st == nil {
		return nil, storage.WorldMeta{}, fmt.Errorf("для загрузки мира нужно хранилище")
	}
	return st.LoadWorld(worldID)
}

func openStorage() (*storage.WorldStorage, error) {
	path := cfg.Storage.GetPath()
	st, err := storage.NewWorldStorage(path)
	if err != nil {
		return nil, fmt.Errorf("хранилище %s: %w", path, err)
	}
	return st, nil
}
