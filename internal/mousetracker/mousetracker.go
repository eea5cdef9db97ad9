// Package mousetracker polls the pointer position and reports movement to
// the step counter.
package mousetracker

import (
	"context"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/aayushbajaj/step-telemetry/internal/pedometer"
)

// DefaultInterval is how often the pointer is sampled.
const DefaultInterval = 50 * time.Millisecond

// MousePosition is a pointer position in screen pixels.
type MousePosition struct {
	X float64
	Y float64
}

// Tracker samples the pointer at a fixed interval.
type Tracker struct {
	interval time.Duration
	position func() (int, int)

	last        MousePosition
	initialized bool
}

// New returns a tracker reading the system pointer through robotgo.
func New(interval time.Duration) *Tracker {
	return NewWithPosition(interval, robotgo.GetMousePos)
}

// NewWithPosition returns a tracker reading positions from fn.
func NewWithPosition(interval time.Duration, fn func() (int, int)) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{interval: interval, position: fn}
}

// Sample reads the pointer once. It reports false when the pointer has not
// moved since the previous sample. The first sample is always reported.
// Distance is left to the counter, which owns the threshold.
func (t *Tracker) Sample() (MousePosition, bool) {
	x, y := t.position()
	pos := MousePosition{X: float64(x), Y: float64(y)}

	if t.initialized && pos == t.last {
		return MousePosition{}, false
	}
	t.last = pos
	t.initialized = true
	return pos, true
}

// Run polls the pointer and forwards moves to sink until ctx is done.
func (t *Tracker) Run(ctx context.Context, sink pedometer.Sink) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if pos, ok := t.Sample(); ok {
				sink.OnMove(pos.X, pos.Y)
			}
		}
	}
}
