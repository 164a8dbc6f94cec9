package main

import (
	"fmt"

	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func worldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "worlds",
		Usage: "управление сохранёнными мирами",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "список сохранённых миров",
				Action: func(c *cli.Context) error {
					st, err := openStorage()
					if err != nil {
						return err
					}
					defer st.Close()

					worlds, err := st.ListWorlds()
					if err != nil {
						return err
					}
					if len(worlds) == 0 {
						logging.Info("Сохранённых миров нет")
						return nil
					}
					for _, m := range worlds {
						fmt.Printf("%s  %-20s %v  чанков=%d блоков=%d  %s\n",
							m.ID, m.Name, m.Size, m.Chunks, m.ActiveBlocks, m.SavedAt.Format("2006-01-02 15:04:05"))
					}
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "удалить мир",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("нужен идентификатор мира")
					}
					id, err := uuid.Parse(c.Args().Get(0))
					if err != nil {
						return fmt.Errorf("неверный идентификатор мира: %w", err)
					}

					st, err := openStorage()
					if err != nil {
						return err
					}
					defer st.Close()
					return st.DeleteWorld(id)
				},
			},
		},
	}
}
