package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает имя уровня. Неизвестные значения дают INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// LogDir - каталог для файлов логов
var LogDir = "logs"

// Logger представляет логгер компонента: консоль + файл
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
	mu              sync.Mutex
}

// Логгер по умолчанию пишет только в консоль, пока не вызван InitDefaultLogger
var (
	defaultMu     sync.RWMutex
	defaultLogger = NewConsoleLogger("app", os.Stdout)
	fileLogging   bool
)

// Уровни, которые получают все логгеры компонентов (см. SetGlobalLevels)
var (
	globalConsoleLevel = INFO
	globalFileLevel    = TRACE
)

// SetGlobalLevels задаёт уровни логгеру по умолчанию, всем уже созданным
// логгерам компонентов и тем, что будут созданы позже.
func SetGlobalLevels(console, file LogLevel) {
	defaultMu.Lock()
	globalConsoleLevel = console
	globalFileLevel = file
	l := defaultLogger
	defaultMu.Unlock()

	l.SetLevels(console, file)
	GetLoggerManager().SetAllLevels(console, file)
}

// GlobalLevels возвращает уровни, заданные SetGlobalLevels
func GlobalLevels() (console, file LogLevel) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return globalConsoleLevel, globalFileLevel
}

// NewConsoleLogger создаёт логгер без файла
func NewConsoleLogger(component string, w io.Writer) *Logger {
	return &Logger{
		component:       component,
		consoleLogger:   log.New(w, "", log.LstdFlags),
		minConsoleLevel: INFO,
		minFileLevel:    TRACE,
	}
}

// NewLogger создаёт логгер компонента с файлом logs/<component>_<timestamp>.log
func NewLogger(component string) (*Logger, error) {
	// Создаем директорию для логов
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", LogDir, err)
	}

	// Создаем файл для логов с временной меткой
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(LogDir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l := NewConsoleLogger(component, os.Stdout)
	l.fileLogger = log.New(file, "", log.LstdFlags)
	l.file = file
	return l, nil
}

// SetLevels задаёт минимальные уровни для консоли и файла
func (l *Logger) SetLevels(console, file LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minConsoleLevel = console
	l.minFileLevel = file
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logMessage(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logMessage(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logMessage(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logMessage(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logMessage(ERROR, format, args...) }

// logMessage внутренняя функция для логирования
func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLogger != nil && level >= l.minFileLevel {
		l.fileLogger.Println(message)
	}
	if level >= l.minConsoleLevel {
		l.consoleLogger.Println(message)
	}
}

// InitDefaultLogger инициализирует логгер по умолчанию с файлом
func InitDefaultLogger(component string) error {
	l, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defaultLogger = l
	fileLogging = true
	defaultMu.Unlock()
	return nil
}

func filesEnabled() bool {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return fileLogging
}

// CloseDefaultLogger закрывает файл логгера по умолчанию
func CloseDefaultLogger() {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	_ = l.Close()
}

// Default возвращает логгер по умолчанию
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует через логгер по умолчанию
func Trace(format string, args ...interface{}) { Default().Trace(format, args...) }

// Debug логирует через логгер по умолчанию
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

// Info логирует через логгер по умолчанию
func Info(format string, args ...interface{}) { Default().Info(format, args...) }

// Warn логирует через логгер по умолчанию
func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

// Error логирует через логгер по умолчанию
func Error(format string, args ...interface{}) { Default().Error(format, args...) }

// LogChunkMeshed логирует перестроение чанка
func LogChunkMeshed(l *Logger, index int, vertices, indices int, took time.Duration) {
	l.Trace("Chunk %d meshed: %d vertices, %d indices in %s", index, vertices, indices, took)
}
