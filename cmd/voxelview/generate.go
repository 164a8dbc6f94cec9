package main

import (
	"context"

	"github.com/annel0/voxel-chunks/internal/gpu/headless"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/render"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "засеять мир, построить меши всех чанков и вывести статистику",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "save",
				Usage: "сохранить мир в хранилище под этим именем",
			},
		},
		Action: func(c *cli.Context) error {
			w, err := buildWorld(&cfg.World)
			if err != nil {
				return err
			}

			dev := headless.NewDevice()
			r := render.NewWorldRenderer(dev, w)
			defer r.Release()

			report, err := r.MeshDirty(context.Background())
			if err != nil {
				return err
			}
			stats := w.Stats()
			logging.Info("✅ Меши построены: %d чанков, %d вершин, %d индексов, %d буферов",
				report.ChunksMeshed, report.Vertices, report.Indices, dev.LiveBuffers())
			logging.Info("📊 Чанков выделено %d из %d, активных блоков %d",
				stats.AllocatedChunks, stats.TotalChunks, stats.ActiveBlocks)

			name := c.String("save")
			if name == "" {
				return nil
			}
			st, err := openStorage()
			if err != nil {
				return err
			}
			defer st.Close()

			meta, err := st.SaveWorld(uuid.Nil, name, w)
			if err != nil {
				return err
			}
			logging.Info("💾 Идентификатор мира: %s", meta.ID)
			return nil
		},
	}
}
