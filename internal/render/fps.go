package render

import "time"

// Fps - статистика кадров за последнюю секунду
type Fps struct {
	FPS          int64         `json:"fps"`
	TimePerFrame time.Duration `json:"time_per_frame"`
}

// FpsCalculator считает кадры в секунду по общему времени таймера
type FpsCalculator struct {
	timer      *Timer
	framesSeen int64
	elapsed    time.Duration
	current    Fps
}

// NewFpsCalculator создаёт калькулятор поверх таймера
func NewFpsCalculator(timer *Timer) *FpsCalculator {
	return &FpsCalculator{timer: timer}
}

// CalculateFrameStatistics учитывает кадр и раз в секунду обновляет статистику
func (f *FpsCalculator) CalculateFrameStatistics() Fps {
	f.framesSeen++
	if f.timer.TotalTime()-f.elapsed > time.Second {
		fps := f.framesSeen
		f.current = Fps{
			FPS:          fps,
			TimePerFrame: time.Second / time.Duration(fps),
		}
		f.framesSeen = 0
		f.elapsed += time.Second
	}
	return f.current
}

// Current возвращает последнюю посчитанную статистику
func (f *FpsCalculator) Current() Fps {
	return f.current
}
