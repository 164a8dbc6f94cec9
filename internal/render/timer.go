package render

import "time"

// Timer измеряет общее время игры (без пауз) и время между кадрами
type Timer struct {
	now func() time.Time

	start     time.Time
	idle      time.Duration
	pausedAt  time.Time
	current   time.Time
	previous  time.Time
	delta     time.Duration
	isStopped bool
}

// NewTimer создаёт запущенный таймер. now == nil означает time.Now.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	t := &Timer{now: now}
	t.Reset()
	return t
}

// Reset перезапускает таймер
func (t *Timer) Reset() {
	now := t.now()
	t.start = now
	t.current = now
	t.previous = now
	t.idle = 0
	t.delta = 0
	t.pausedAt = time.Time{}
	t.isStopped = false
}

// Start возобновляет таймер после Stop
func (t *Timer) Start() {
	if !t.isStopped {
		return
	}
	now := t.now()
	t.idle += now.Sub(t.pausedAt)
	t.previous = now
	t.pausedAt = time.Time{}
	t.isStopped = false
}

// Stop ставит таймер на паузу
func (t *Timer) Stop() {
	if t.isStopped {
		return
	}
	t.pausedAt = t.now()
	t.isStopped = true
}

// Tick вычисляет время, прошедшее с прошлого кадра
func (t *Timer) Tick() {
	if t.isStopped {
		t.delta = 0
		return
	}
	now := t.now()
	t.current = now
	t.delta = now.Sub(t.previous)
	t.previous = now
	if t.delta < 0 {
		t.delta = 0
	}
}

// TotalTime возвращает время с момента запуска за вычетом пауз
func (t *Timer) TotalTime() time.Duration {
	if t.isStopped {
		return t.pausedAt.Sub(t.start) - t.idle
	}
	return t.current.Sub(t.start) - t.idle
}

// DeltaTime возвращает время между двумя последними Tick
func (t *Timer) DeltaTime() time.Duration {
	return t.delta
}
