package main

import (
	"log"
	"os"

	"github.com/annel0/voxel-chunks/internal/config"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "voxelview",
		Usage: "генерация, просмотр и выгрузка воксельных миров из чанков 32³",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "путь к YAML конфигурации",
				EnvVars: []string{"VOXEL_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "TRACE, DEBUG, INFO, WARN или ERROR",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			logging.CloseDefaultLogger()
			if err := logging.GetLoggerManager().CloseAll(); err != nil {
				log.Printf("⚠️ %v", err)
			}
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			exportCommand(),
			serveCommand(),
			worldsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// cfg заполняется в setup до запуска любой команды
var cfg *config.Config

func setup(c *cli.Context) error {
	var err error
	cfg, err = config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if cfg.Log.Dir != "" {
		logging.LogDir = cfg.Log.Dir
	}
	if cfg.Log.ToFiles {
		if err := logging.InitDefaultLogger("voxelview"); err != nil {
			return err
		}
	}

	level := cfg.Log.Level
	if c.String("log-level") != "" {
		level = c.String("log-level")
	}
	if level != "" {
		logging.SetGlobalLevels(logging.ParseLevel(level), logging.TRACE)
	}
	return nil
}
