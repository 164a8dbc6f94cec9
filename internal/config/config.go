package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Events    EventsConfig    `yaml:"events"`
	Log       LogConfig       `yaml:"log"`
}

type WorldConfig struct {
	SizeX      int     `yaml:"size_x"`
	SizeY      int     `yaml:"size_y"`
	SizeZ      int     `yaml:"size_z"`
	FootprintX int     `yaml:"footprint_x"`
	FootprintZ int     `yaml:"footprint_z"`
	Generator  string  `yaml:"generator"` // sine | perlin | flat
	Seed       int64   `yaml:"seed"`
	NoiseScale float64 `yaml:"noise_scale"`
	MaxHeight  int     `yaml:"max_height"`
	Layered    bool    `yaml:"layered_materials"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
	FrameMS  int `yaml:"frame_ms"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// EventsConfig настраивает шину событий мира. Пустой NatsURL - шина в памяти.
type EventsConfig struct {
	NatsURL      string `yaml:"nats_url"`
	Stream       string `yaml:"stream"`
	RetentionMin int    `yaml:"retention_min"`
	BufferSize   int    `yaml:"buffer_size"`
}

type LogConfig struct {
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level"`
	ToFiles bool   `yaml:"to_files"`
}

// Значения по умолчанию
const (
	DefaultWorldSize  = 64
	DefaultGenerator  = "sine"
	DefaultNoiseScale = 0.05
	DefaultMaxHeight  = 24
	DefaultHTTPPort   = 8088
	DefaultFrameMS    = 16
	DefaultStorage    = "data"
	DefaultService    = "voxel-chunks"
	DefaultStream     = "VOXEL"
	DefaultRetention  = 60
	DefaultBuffer     = 1024
)

// GetSize возвращает размер мира в блоках
func (w *WorldConfig) GetSize() (x, y, z int) {
	return getIntWithEnvFallback(w.SizeX, "VOXEL_WORLD_SIZE_X", DefaultWorldSize),
		getIntWithEnvFallback(w.SizeY, "VOXEL_WORLD_SIZE_Y", DefaultWorldSize),
		getIntWithEnvFallback(w.SizeZ, "VOXEL_WORLD_SIZE_Z", DefaultWorldSize)
}

// GetFootprint возвращает область генерации ландшафта (по умолчанию - весь мир по X/Z)
func (w *WorldConfig) GetFootprint() (x, z int) {
	sx, _, sz := w.GetSize()
	return getIntWithEnvFallback(w.FootprintX, "VOXEL_FOOTPRINT_X", sx),
		getIntWithEnvFallback(w.FootprintZ, "VOXEL_FOOTPRINT_Z", sz)
}

// GetGenerator возвращает имя генератора высот
func (w *WorldConfig) GetGenerator() string {
	return getStringWithEnvFallback(w.Generator, "VOXEL_GENERATOR", DefaultGenerator)
}

// GetNoiseScale возвращает масштаб шума
func (w *WorldConfig) GetNoiseScale() float64 {
	if w.NoiseScale > 0 {
		return w.NoiseScale
	}
	return DefaultNoiseScale
}

// GetMaxHeight возвращает максимальную высоту для шумового генератора
func (w *WorldConfig) GetMaxHeight() int {
	return getIntWithEnvFallback(w.MaxHeight, "VOXEL_MAX_HEIGHT", DefaultMaxHeight)
}

// GetPath возвращает каталог хранилища
func (s *StorageConfig) GetPath() string {
	return getStringWithEnvFallback(s.Path, "VOXEL_STORAGE_PATH", DefaultStorage)
}

// GetHTTPPort возвращает порт HTTP-инспектора
func (s *ServerConfig) GetHTTPPort() int {
	return getIntWithEnvFallback(s.HTTPPort, "VOXEL_HTTP_PORT", DefaultHTTPPort)
}

// GetFrameMS возвращает длительность кадра в миллисекундах
func (s *ServerConfig) GetFrameMS() int {
	return getIntWithEnvFallback(s.FrameMS, "VOXEL_FRAME_MS", DefaultFrameMS)
}

// GetServiceName возвращает имя сервиса для телеметрии
func (t *TelemetryConfig) GetServiceName() string {
	return getStringWithEnvFallback(t.ServiceName, "OTEL_SERVICE_NAME", DefaultService)
}

// GetNatsURL возвращает адрес NATS; пустая строка - NATS не используется
func (e *EventsConfig) GetNatsURL() string {
	return getStringWithEnvFallback(e.NatsURL, "VOXEL_NATS_URL", "")
}

// GetStream возвращает имя стрима JetStream
func (e *EventsConfig) GetStream() string {
	return getStringWithEnvFallback(e.Stream, "VOXEL_NATS_STREAM", DefaultStream)
}

// GetRetention возвращает срок хранения событий в стриме
func (e *EventsConfig) GetRetention() time.Duration {
	return time.Duration(getIntWithEnvFallback(e.RetentionMin, "VOXEL_EVENTS_RETENTION_MIN", DefaultRetention)) * time.Minute
}

// GetBufferSize возвращает размер буфера шины в памяти
func (e *EventsConfig) GetBufferSize() int {
	return getIntWithEnvFallback(e.BufferSize, "VOXEL_EVENTS_BUFFER", DefaultBuffer)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}

// getStringWithEnvFallback - то же для строк
func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает пустой конфиг
// (все значения берутся из env и дефолтов).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	return &cfg, nil
}
