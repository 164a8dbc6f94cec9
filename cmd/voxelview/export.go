package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/annel0/voxel-chunks/internal/export"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/storage"
	"github.com/urfave/cli/v2"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "выгрузить меши чанков в Wavefront OBJ (.obj или .obj.gz)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "world.obj",
				Usage:   "файл назначения; суффикс .gz включает сжатие",
			},
			&cli.StringFlag{
				Name:  "world",
				Usage: "идентификатор сохранённого мира (по умолчанию генерируется новый)",
			},
			&cli.IntSliceFlag{
				Name:  "chunk",
				Usage: "индексы чанков для выгрузки (по умолчанию все)",
			},
		},
		Action: func(c *cli.Context) error {
			var st *storage.WorldStorage
			if c.String("world") != "" {
				var err error
				if st, err = openStorage(); err != nil {
					return err
				}
				defer st.Close()
			}

			w, _, err := openWorld(st, c.String("world"))
			if err != nil {
				return err
			}

			out := c.String("out")
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("создание %s: %w", out, err)
			}

			write := export.WriteOBJ
			if strings.HasSuffix(out, ".gz") {
				write = export.WriteOBJGzip
			}
			var chunks []int
			if len(c.IntSlice("chunk")) > 0 {
				chunks = c.IntSlice("chunk")
			}
			sum, err := write(f, w, chunks)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("выгрузка %s: %w", out, err)
			}

			logging.Info("📦 %s: %d чанков, %d вершин, %d треугольников", out, sum.Chunks, sum.Vertices, sum.Faces)
			return nil
		},
	}
}
