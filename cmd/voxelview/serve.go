package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-chunks/internal/api"
	"github.com/annel0/voxel-chunks/internal/eventbus"
	"github.com/annel0/voxel-chunks/internal/gpu/headless"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/metrics"
	"github.com/annel0/voxel-chunks/internal/observability"
	"github.com/annel0/voxel-chunks/internal/render"
	"github.com/annel0/voxel-chunks/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "крутить цикл кадров на headless-устройстве и отдавать HTTP-инспектор",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "world",
				Usage: "идентификатор сохранённого мира (по умолчанию генерируется новый)",
			},
			&cli.BoolFlag{
				Name:  "no-storage",
				Usage: "не открывать хранилище миров",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("🧊 Запуск voxelview serve...")

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName())
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	var st *storage.WorldStorage
	if !c.Bool("no-storage") {
		var err error
		if st, err = openStorage(); err != nil {
			return err
		}
		defer st.Close()
	}

	w, meta, err := openWorld(st, c.String("world"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus, err := openEventBus()
	if err != nil {
		return err
	}
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("events")); err != nil {
		return err
	}
	busMetrics := eventbus.NewMetricsExporter(bus, reg)
	busMetrics.Start(time.Second)
	defer busMetrics.Stop()

	dev := headless.NewDevice()
	renderer := render.NewWorldRenderer(dev, w,
		render.WithMetrics(metrics.NewMeshMetrics(reg)),
		render.WithLogger(logging.GetRenderLogger()),
	)
	scene, err := api.NewScene(renderer, dev, meta.Name, api.WithEvents(bus))
	if err != nil {
		return err
	}
	defer scene.Close()
	scene.SetWorldID(meta.ID)

	port := fmt.Sprintf(":%d", cfg.Server.GetHTTPPort())
	server := api.NewRestServer(api.Config{
		Port:     port,
		Scene:    scene,
		Storage:  st,
		Registry: reg,
		Events:   bus,
	})

	errCh := make(chan error, 1)
	go func() {
		err := server.Start()
		errCh <- err
		if err != nil {
			stop()
		}
	}()

	logging.Info("✅ Сервисы запущены")
	logging.Info("   🌐 Инспектор: http://localhost%s/api/world", port)
	logging.Info("   📈 Метрики: http://localhost%s/metrics", port)
	logging.Info("   ❤️  Health check: http://localhost%s/health", port)

	frameErr := runFrames(ctx, scene, time.Duration(cfg.Server.GetFrameMS())*time.Millisecond)

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ Ошибка HTTP-инспектора: %v", err)
		}
	default:
	}

	logging.Debug("Остановка HTTP-инспектора...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки инспектора: %v", err)
	}

	if frameErr != nil {
		return frameErr
	}
	logging.Info("👋 voxelview остановлен")
	return nil
}

// runFrames рисует кадры с периодом period до отмены ctx.
// Ошибка устройства прерывает цикл.
func runFrames(ctx context.Context, scene *api.Scene, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("📡 Получен сигнал завершения, остановка цикла кадров...")
			return nil
		case <-ticker.C:
			report, err := scene.Frame(ctx)
			if err != nil {
				return fmt.Errorf("кадр: %w", err)
			}
			if report.ChunksMeshed > 0 {
				logging.Debug("🔁 Перестроено чанков: %d", report.ChunksMeshed)
			}
		case <-statsTicker.C:
			snap := scene.Snapshot()
			logging.Info("📊 FPS=%d кадров=%d чанков=%d блоков=%d",
				snap.FPS.FPS, snap.Frames, snap.World.AllocatedChunks, snap.World.ActiveBlocks)
		}
	}
}

// openEventBus подключается к NATS JetStream, если он настроен, иначе создаёт шину в памяти
func openEventBus() (eventbus.EventBus, error) {
	url := cfg.Events.GetNatsURL()
	if url == "" {
		return eventbus.NewMemoryBus(cfg.Events.GetBufferSize()), nil
	}

	bus, err := eventbus.NewJetStreamBus(url, cfg.Events.GetStream(), cfg.Events.GetRetention())
	if err != nil {
		return nil, fmt.Errorf("шина событий %s: %w", url, err)
	}
	logging.Info("📨 События мира публикуются в NATS JetStream %s (стрим %s)", url, cfg.Events.GetStream())
	return bus, nil
}
