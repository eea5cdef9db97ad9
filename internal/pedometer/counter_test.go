package pedometer

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNewCounterDefaults(t *testing.T) {
	c := NewCounter(Options{})

	movement, steps := c.Thresholds()
	if movement != DefaultMovementThreshold {
		t.Errorf("Expected movement threshold %f, got %f", DefaultMovementThreshold, movement)
	}
	if steps != DefaultStepThreshold {
		t.Errorf("Expected step threshold %d, got %d", DefaultStepThreshold, steps)
	}

	state := c.Snapshot()
	if !state.Active {
		t.Error("Expected new counter to be active")
	}
	if state.LastPosition != nil {
		t.Error("Expected no last position before the first move")
	}
	if state.TotalSteps != 0 || state.MovementAccumulator != 0 {
		t.Errorf("Expected zero state, got %+v", state)
	}
}

func TestFirstMoveSetsBaselineOnly(t *testing.T) {
	c := NewCounter(Options{})

	c.OnMove(1000, 1000)

	state := c.Snapshot()
	if state.MovementAccumulator != 0 {
		t.Errorf("Expected first move not to count, accumulator=%d", state.MovementAccumulator)
	}
	if state.LastPosition == nil || state.LastPosition.X != 1000 || state.LastPosition.Y != 1000 {
		t.Errorf("Expected baseline (1000, 1000), got %+v", state.LastPosition)
	}
}

func TestSmallMovesNeverStep(t *testing.T) {
	tests := []struct {
		name  string
		moves [][2]float64
	}{
		{"stationary", [][2]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}}},
		{"exactly threshold", [][2]float64{{0, 0}, {20, 0}, {40, 0}, {60, 0}, {80, 0}, {100, 0}, {120, 0}}},
		{"diagonal under threshold", [][2]float64{{0, 0}, {10, 10}, {20, 20}, {30, 30}, {40, 40}, {50, 50}, {60, 60}}},
		{"jitter", [][2]float64{{5, 5}, {6, 4}, {5, 5}, {4, 6}, {5, 5}, {6, 6}, {5, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCounter(Options{})
			for i := 0; i < 10; i++ {
				for _, m := range tt.moves {
					c.OnMove(m[0], m[1])
				}
			}
			if steps := c.Steps(); steps != 0 {
				t.Errorf("Expected 0 steps for sub-threshold moves, got %d", steps)
			}
		})
	}
}

func TestQualifyingMovesMakeOneStep(t *testing.T) {
	c := NewCounter(Options{})
	c.OnMove(0, 0)

	for i := 1; i < DefaultStepThreshold; i++ {
		c.OnMove(float64(i*30), 0)
		state := c.Snapshot()
		if state.TotalSteps != 0 {
			t.Fatalf("Expected no step after %d events, got %d", i, state.TotalSteps)
		}
		if state.MovementAccumulator != i {
			t.Fatalf("Expected accumulator %d, got %d", i, state.MovementAccumulator)
		}
	}

	c.OnMove(float64(DefaultStepThreshold*30), 0)

	state := c.Snapshot()
	if state.TotalSteps != 1 {
		t.Errorf("Expected 1 step, got %d", state.TotalSteps)
	}
	if state.MovementAccumulator != 0 {
		t.Errorf("Expected accumulator reset to 0, got %d", state.MovementAccumulator)
	}
}

func TestKeyPressesMakeOneStep(t *testing.T) {
	c := NewCounter(Options{})

	for i := 0; i < DefaultStepThreshold; i++ {
		c.OnKeyPress(42)
	}

	state := c.Snapshot()
	if state.TotalSteps != 1 || state.MovementAccumulator != 0 {
		t.Errorf("Expected 1 step and empty accumulator, got %+v", state)
	}
}

func TestMixedEventsMakeOneStep(t *testing.T) {
	patterns := []string{"mmkkk", "kmkmk", "kkkkm", "mkkkk", "mmmmk"}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			c := NewCounter(Options{})
			c.OnMove(0, 0)
			x := 0.0
			for _, ev := range pattern {
				if ev == 'm' {
					x += 25
					c.OnMove(x, 0)
				} else {
					c.OnKeyPress(1)
				}
			}
			state := c.Snapshot()
			if state.TotalSteps != 1 {
				t.Errorf("Expected 1 step, got %d", state.TotalSteps)
			}
			if state.MovementAccumulator != 0 {
				t.Errorf("Expected accumulator 0, got %d", state.MovementAccumulator)
			}
		})
	}
}

func TestResetThenQualifyingEvent(t *testing.T) {
	c := NewCounter(Options{})
	for i := 0; i < 12; i++ {
		c.OnKeyPress(i)
	}
	if c.Steps() != 2 {
		t.Fatalf("Expected 2 steps before reset, got %d", c.Steps())
	}

	c.Reset()
	c.OnKeyPress(7)

	state := c.Snapshot()
	if state.MovementAccumulator != 1 {
		t.Errorf("Expected accumulator 1 after reset and one event, got %d", state.MovementAccumulator)
	}
	if state.TotalSteps != 0 {
		t.Errorf("Expected steps to stay 0, got %d", state.TotalSteps)
	}
}

func TestResetKeepsBaseline(t *testing.T) {
	c := NewCounter(Options{})
	c.OnMove(100, 100)
	c.Reset()

	c.OnMove(200, 100)
	if acc := c.Snapshot().MovementAccumulator; acc != 1 {
		t.Errorf("Expected move after reset to count against kept baseline, accumulator=%d", acc)
	}
}

func TestTakeZeroesCounter(t *testing.T) {
	c := NewCounter(Options{})
	for i := 0; i < 12; i++ {
		c.OnKeyPress(0)
	}

	if got := c.Take(); got != 2 {
		t.Errorf("Expected Take to return 2, got %d", got)
	}
	state := c.Snapshot()
	if state.TotalSteps != 0 || state.MovementAccumulator != 0 {
		t.Errorf("Expected zero state after Take, got %+v", state)
	}

	for i := 0; i < DefaultStepThreshold; i++ {
		c.OnKeyPress(0)
	}
	if got := c.Take(); got != 1 {
		t.Errorf("Expected events after Take to start a new total, got %d", got)
	}
}

func TestAddReturnsSteps(t *testing.T) {
	c := NewCounter(Options{})
	for i := 0; i < DefaultStepThreshold; i++ {
		c.OnKeyPress(0)
	}

	n := c.Take()
	c.OnKeyPress(0)
	for i := 0; i < DefaultStepThreshold; i++ {
		c.OnKeyPress(0)
	}
	c.Add(n)

	if got := c.Steps(); got != 2 {
		t.Errorf("Expected 2 steps after Add, got %d", got)
	}

	c.Add(0)
	c.Add(-3)
	if got := c.Steps(); got != 2 {
		t.Errorf("Expected non-positive Add to be ignored, got %d", got)
	}

	c.Stop()
	c.Add(1)
	if got := c.Steps(); got != 3 {
		t.Errorf("Expected Add to work on a stopped counter, got %d", got)
	}
}

func TestStopIgnoresEvents(t *testing.T) {
	c := NewCounter(Options{})
	c.OnMove(0, 0)
	c.OnKeyPress(1)
	c.Stop()

	for i := 0; i < 20; i++ {
		c.OnKeyPress(1)
		c.OnMove(float64(i*100), 0)
	}

	state := c.Snapshot()
	if state.Active {
		t.Error("Expected counter to be inactive after Stop")
	}
	if state.MovementAccumulator != 1 || state.TotalSteps != 0 {
		t.Errorf("Expected state frozen at stop, got %+v", state)
	}
	if state.LastPosition == nil || state.LastPosition.X != 0 {
		t.Errorf("Expected last position frozen at stop, got %+v", state.LastPosition)
	}
}

func TestCustomThresholds(t *testing.T) {
	c := NewCounter(Options{MovementThreshold: 5, StepThreshold: 2})
	c.OnMove(0, 0)
	c.OnMove(6, 0)
	c.OnMove(12, 0)

	if steps := c.Steps(); steps != 1 {
		t.Errorf("Expected 1 step with custom thresholds, got %d", steps)
	}
}

func TestConcurrentEvents(t *testing.T) {
	c := NewCounter(Options{})

	var wg sync.WaitGroup
	const perWorker = 1000
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.OnKeyPress(i)
			}
		}()
	}
	wg.Wait()

	expected := 4 * perWorker / DefaultStepThreshold
	if steps := c.Steps(); steps != expected {
		t.Errorf("Expected %d steps from concurrent key presses, got %d", expected, steps)
	}
}

func TestAttachRunsAllSources(t *testing.T) {
	c := NewCounter(Options{})

	keys := EventSourceFunc(func(ctx context.Context, sink Sink) error {
		for i := 0; i < 10; i++ {
			sink.OnKeyPress(i)
		}
		return nil
	})
	moves := EventSourceFunc(func(ctx context.Context, sink Sink) error {
		for i := 0; i <= 5; i++ {
			sink.OnMove(float64(i*50), 0)
		}
		return context.Canceled
	})

	if err := Attach(context.Background(), c, keys, nil, moves); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if steps := c.Steps(); steps != 3 {
		t.Errorf("Expected 3 steps, got %d", steps)
	}
}

func TestAttachReportsSourceError(t *testing.T) {
	boom := errors.New("tap failed")
	failing := EventSourceFunc(func(ctx context.Context, sink Sink) error { return boom })
	ok := EventSourceFunc(func(ctx context.Context, sink Sink) error { return nil })

	err := Attach(context.Background(), NewCounter(Options{}), ok, failing)
	if !errors.Is(err, boom) {
		t.Errorf("Expected source error, got %v", err)
	}
}
