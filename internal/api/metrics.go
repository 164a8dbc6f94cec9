package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessMetrics собирает показатели процесса инспектора
type ProcessMetrics struct {
	StartTime time.Time
}

// ProcessSnapshot - показатели процесса на момент запроса
type ProcessSnapshot struct {
	Uptime     string  `json:"uptime"`
	MemoryMB   float64 `json:"memory_mb"`
	HeapMB     float64 `json:"heap_mb"`
	NumGC      uint32  `json:"num_gc"`
	Goroutines int     `json:"goroutines"`
	CPUPercent float64 `json:"cpu_percent"`
}

// NewProcessMetrics создает новый экземпляр метрик
func NewProcessMetrics() *ProcessMetrics {
	return &ProcessMetrics{
		StartTime: time.Now(),
	}
}

// GetUptime возвращает время работы в виде "1д 2ч 3м 4с"
func (pm *ProcessMetrics) GetUptime() string {
	uptime := time.Since(pm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// GetCPUUsage возвращает использование CPU процессом в процентах.
// Если метрика процесса недоступна, возвращается системная.
func (pm *ProcessMetrics) GetCPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// Snapshot собирает показатели памяти, GC и CPU
func (pm *ProcessMetrics) Snapshot() ProcessSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuPercent, _ := pm.GetCPUUsage()
	return ProcessSnapshot{
		Uptime:     pm.GetUptime(),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		CPUPercent: cpuPercent,
	}
}
