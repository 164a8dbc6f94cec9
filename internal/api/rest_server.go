// Package api - HTTP-инспектор воксельной сцены: состояние мира, чанки,
// правка вокселей, выгрузка OBJ и сохранение в хранилище.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-chunks/internal/eventbus"
	"github.com/annel0/voxel-chunks/internal/export"
	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/annel0/voxel-chunks/internal/middleware"
	"github.com/annel0/voxel-chunks/internal/storage"
	"github.com/annel0/voxel-chunks/internal/vec"
	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет HTTP-инспектор
type RestServer struct {
	router     *gin.Engine
	scene      *Scene
	storage    *storage.WorldStorage
	port       string
	metrics    *ProcessMetrics
	log        *logging.Logger
	events     eventbus.EventBus
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                // порт для запуска сервера
	Scene    *Scene                // сцена (обязательна)
	Storage  *storage.WorldStorage // хранилище миров, может быть nil
	Registry *prometheus.Registry  // регистр метрик, nil - регистр по умолчанию
	Events   eventbus.EventBus     // шина событий, может быть nil
	Logger   *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// VoxelRequest - координаты вокселя и (для POST) материал
type VoxelRequest struct {
	X        *int   `json:"x" form:"x" binding:"required"`
	Y        *int   `json:"y" form:"y" binding:"required"`
	Z        *int   `json:"z" form:"z" binding:"required"`
	Material string `json:"material" form:"material"`
}

func (r VoxelRequest) coord() vec.Vec3 {
	return vec.New(*r.X, *r.Y, *r.Z)
}

// ChunkInfo описывает выделенный чанк
type ChunkInfo struct {
	Index         int      `json:"index"`
	Position      vec.Vec3 `json:"position"`
	WorldPosition vec.Vec3 `json:"world_position"`
	ActiveBlocks  int      `json:"active_blocks"`
	Dirty         bool     `json:"dirty"`
	IndexCount    int      `json:"index_count"`
	IndexBits     int      `json:"index_bits,omitempty"`
}

// SaveRequest - параметры сохранения мира
type SaveRequest struct {
	Name string `json:"name"`
}

// NewRestServer создает новый HTTP-инспектор
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel_inspector"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	var (
		reg    prometheus.Registerer
		gather prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gather = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware("voxel_inspector", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gather)

	server := &RestServer{
		router:  router,
		scene:   config.Scene,
		storage: config.Storage,
		port:    config.Port,
		metrics: NewProcessMetrics(),
		log:     config.Logger,
		events:  config.Events,
	}

	server.httpServer = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	server.setupRoutes()
	return server
}

// Router возвращает gin.Engine (используется в тестах и для встраивания)
func (rs *RestServer) Router() *gin.Engine {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/world", rs.handleWorld)
		api.GET("/chunks", rs.handleChunks)
		api.GET("/chunks/:index/obj", rs.handleChunkOBJ)
		api.POST("/voxels", rs.handleAddVoxel)
		api.DELETE("/voxels", rs.handleRemoveVoxel)
		api.GET("/stats", rs.handleStats)
		api.GET("/worlds", rs.handleListWorlds)
		api.POST("/worlds", rs.handleSaveWorld)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// publish отправляет событие в шину, если она настроена
func (rs *RestServer) publish(c *gin.Context, eventType string, payload interface{}) {
	if rs.events == nil {
		return
	}
	ev, err := eventbus.NewEnvelope("api", eventType, eventbus.PriorityHigh, payload)
	if err == nil {
		err = rs.events.Publish(c.Request.Context(), ev)
	}
	if err != nil {
		rs.log.Warn("⚠️ Событие %s не опубликовано: %v", eventType, err)
	}
}

func (rs *RestServer) fail(c *gin.Context, status int, format string, args ...interface{}) {
	c.JSON(status, GenericResponse{
		Success: false,
		Message: fmt.Sprintf(format, args...),
	})
}

// handleWorld возвращает сводку по миру и последнему кадру
func (rs *RestServer) handleWorld(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние мира",
		Data:    rs.scene.Snapshot(),
	})
}

// handleChunks перечисляет выделенные чанки
func (rs *RestServer) handleChunks(c *gin.Context) {
	var chunks []ChunkInfo
	_ = rs.scene.WithWorld(func(w *world.World) error {
		return w.ForEachAllocated(func(index int, ch *world.Chunk) error {
			info := ChunkInfo{
				Index:         index,
				Position:      ch.LocalPosition(),
				WorldPosition: ch.WorldPosition(),
				ActiveBlocks:  ch.ActiveBlocks(),
				Dirty:         ch.IsDirty(),
				IndexCount:    ch.IndexCount(),
			}
			if ch.HasBuffers() {
				info.IndexBits = ch.IndexFormat().Size() * 8
			}
			chunks = append(chunks, info)
			return nil
		})
	})

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Чанков: %d", len(chunks)),
		Data:    chunks,
	})
}

// handleChunkOBJ выгружает меш чанка в OBJ; ?gzip=1 сжимает ответ
func (rs *RestServer) handleChunkOBJ(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		rs.fail(c, http.StatusBadRequest, "Неверный индекс чанка")
		return
	}
	compress := c.Query("gzip") == "1"

	err = rs.scene.WithWorld(func(w *world.World) error {
		if index < 0 || index >= w.ChunkCount() || !w.Chunk(index).IsAllocated() {
			return world.ErrNotAllocated
		}
		if compress {
			c.Header("Content-Type", "application/gzip")
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=chunk_%d.obj.gz", index))
			c.Status(http.StatusOK)
			_, err := export.WriteOBJGzip(c.Writer, w, []int{index})
			return err
		}
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
		_, err := export.WriteOBJ(c.Writer, w, []int{index})
		return err
	})

	switch {
	case errors.Is(err, world.ErrNotAllocated):
		rs.fail(c, http.StatusNotFound, "Чанк %d не выделен", index)
	case err != nil:
		rs.log.Error("❌ Ошибка выгрузки чанка %d: %v", index, err)
	}
}

// handleAddVoxel активирует воксель
func (rs *RestServer) handleAddVoxel(c *gin.Context) {
	var req VoxelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	material, err := world.ParseMaterial(req.Material)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, "%v", err)
		return
	}

	p := req.coord()
	var (
		ok    bool
		chunk int
	)
	_ = rs.scene.WithWorld(func(w *world.World) error {
		if ok = w.SetVoxel(p, material); ok {
			chunk = w.ChunkIndex(world.WorldToChunk(p))
		}
		return nil
	})
	if !ok {
		rs.fail(c, http.StatusUnprocessableEntity, "Координата %v вне мира", p)
		return
	}

	rs.log.Debug("➕ Воксель %v (%s)", p, material)
	rs.publish(c, eventbus.EventVoxelChanged, eventbus.VoxelChanged{
		Position: p,
		Active:   true,
		Material: material.String(),
		Chunk:    chunk,
	})
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Воксель добавлен",
		Data:    p,
	})
}

// handleRemoveVoxel деактивирует воксель, координаты передаются в query
func (rs *RestServer) handleRemoveVoxel(c *gin.Context) {
	var req VoxelRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, "Нужны параметры x, y, z")
		return
	}

	p := req.coord()
	var (
		removed bool
		chunk   int
	)
	_ = rs.scene.WithWorld(func(w *world.World) error {
		if removed = w.RemoveVoxel(p); removed {
			chunk = w.ChunkIndex(world.WorldToChunk(p))
		}
		return nil
	})
	if !removed {
		rs.fail(c, http.StatusNotFound, "В точке %v нет активного вокселя", p)
		return
	}

	rs.log.Debug("➖ Воксель %v", p)
	rs.publish(c, eventbus.EventVoxelChanged, eventbus.VoxelChanged{Position: p, Chunk: chunk})
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Воксель удалён",
		Data:    p,
	})
}

// handleStats возвращает статистику процесса и мира
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := map[string]interface{}{
		"process":     rs.metrics.Snapshot(),
		"scene":       rs.scene.Snapshot(),
		"server_time": time.Now().Unix(),
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleListWorlds перечисляет сохранённые миры
func (rs *RestServer) handleListWorlds(c *gin.Context) {
	if rs.storage == nil {
		rs.fail(c, http.StatusServiceUnavailable, "Хранилище не настроено")
		return
	}
	worlds, err := rs.storage.ListWorlds()
	if err != nil {
		rs.log.Error("❌ Ошибка чтения списка миров: %v", err)
		rs.fail(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Миров: %d", len(worlds)),
		Data:    worlds,
	})
}

// handleSaveWorld сохраняет текущий мир сцены
func (rs *RestServer) handleSaveWorld(c *gin.Context) {
	if rs.storage == nil {
		rs.fail(c, http.StatusServiceUnavailable, "Хранилище не настроено")
		return
	}

	var req SaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			rs.fail(c, http.StatusBadRequest, "Неверный формат запроса")
			return
		}
	}
	if req.Name == "" {
		req.Name = rs.scene.WorldName()
	}

	id := rs.scene.WorldID()
	var meta storage.WorldMeta
	err := rs.scene.WithWorld(func(w *world.World) error {
		var err error
		meta, err = rs.storage.SaveWorld(id, req.Name, w)
		return err
	})
	if err != nil {
		rs.log.Error("❌ Ошибка сохранения мира: %v", err)
		rs.fail(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	rs.scene.SetWorldID(meta.ID)
	rs.publish(c, eventbus.EventWorldSaved, eventbus.WorldSaved{
		ID:           meta.ID.String(),
		Name:         meta.Name,
		Chunks:       meta.Chunks,
		ActiveBlocks: meta.ActiveBlocks,
	})

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Мир сохранён",
		Data:    meta,
	})
}

// handleHealth обрабатывает проверку здоровья
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP-сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.log.Info("🌐 Инспектор слушает %s", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает HTTP-сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.httpServer.Shutdown(ctx)
}
