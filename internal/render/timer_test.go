package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTimer_TickAndPause(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	timer := NewTimer(clock.now)

	clock.advance(16 * time.Millisecond)
	timer.Tick()
	assert.Equal(t, 16*time.Millisecond, timer.DeltaTime())
	assert.Equal(t, 16*time.Millisecond, timer.TotalTime())

	timer.Stop()
	clock.advance(time.Second)
	timer.Tick()
	assert.Equal(t, time.Duration(0), timer.DeltaTime())
	assert.Equal(t, 16*time.Millisecond, timer.TotalTime(), "Пауза не учитывается")

	timer.Start()
	clock.advance(10 * time.Millisecond)
	timer.Tick()
	assert.Equal(t, 10*time.Millisecond, timer.DeltaTime())
	assert.Equal(t, 26*time.Millisecond, timer.TotalTime())

	timer.Reset()
	assert.Equal(t, time.Duration(0), timer.TotalTime())
}

func TestFpsCalculator(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	timer := NewTimer(clock.now)
	fps := NewFpsCalculator(timer)

	// 50 кадров по 25 мс = 1.25 с
	var last Fps
	for i := 0; i < 50; i++ {
		clock.advance(25 * time.Millisecond)
		timer.Tick()
		last = fps.CalculateFrameStatistics()
	}

	assert.Equal(t, int64(41), last.FPS)
	assert.Equal(t, time.Second/41, last.TimePerFrame)
	assert.Equal(t, last, fps.Current())
}
