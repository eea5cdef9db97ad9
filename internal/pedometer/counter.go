package pedometer

import (
	"math"
	"sync"
)

// Default thresholds for the step heuristic
const (
	DefaultMovementThreshold = 20.0 // pointer distance (screen units) a move must exceed
	DefaultStepThreshold     = 5    // qualifying events per step
)

// Options tunes the heuristic. Zero values fall back to the defaults.
type Options struct {
	MovementThreshold float64
	StepThreshold     int
}

// Position is a pointer location in screen coordinates.
type Position struct {
	X float64
	Y float64
}

// MotionState is a point-in-time copy of the counter's state.
type MotionState struct {
	LastPosition        *Position
	MovementAccumulator int
	TotalSteps          int
	Active              bool
}

// Counter turns pointer moves and key presses into steps.
// It is safe for concurrent use by multiple event sources.
type Counter struct {
	movementThreshold float64
	stepThreshold     int

	mu          sync.Mutex
	last        Position
	hasLast     bool
	accumulator int
	steps       int
	active      bool
}

// NewCounter creates an active counter.
func NewCounter(opts Options) *Counter {
	if opts.MovementThreshold <= 0 {
		opts.MovementThreshold = DefaultMovementThreshold
	}
	if opts.StepThreshold <= 0 {
		opts.StepThreshold = DefaultStepThreshold
	}
	return &Counter{
		movementThreshold: opts.MovementThreshold,
		stepThreshold:     opts.StepThreshold,
		active:            true,
	}
}

// OnMove records a pointer position. The first position only sets the baseline.
func (c *Counter) OnMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}

	distance := 0.0
	if c.hasLast {
		distance = math.Hypot(x-c.last.X, y-c.last.Y)
	}
	c.last = Position{X: x, Y: y}
	c.hasLast = true

	if distance > c.movementThreshold {
		c.countEvent()
	}
}

// OnKeyPress records a key press. The key identity is not used.
func (c *Counter) OnKeyPress(key int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	c.countEvent()
}

// countEvent must be called with mu held.
func (c *Counter) countEvent() {
	c.accumulator++
	if c.accumulator >= c.stepThreshold {
		c.steps++
		c.accumulator = 0
	}
}

// Steps returns the current step total.
func (c *Counter) Steps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps
}

// Snapshot returns a consistent copy of the counter state.
func (c *Counter) Snapshot() MotionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := MotionState{
		MovementAccumulator: c.accumulator,
		TotalSteps:          c.steps,
		Active:              c.active,
	}
	if c.hasLast {
		pos := c.last
		state.LastPosition = &pos
	}
	return state
}

// Reset zeroes the step total and the accumulator. The pointer baseline is kept.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = 0
	c.accumulator = 0
}

// Take returns the step total and zeroes it along with the accumulator, in one
// locked section. Events arriving afterwards count towards the next total.
func (c *Counter) Take() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.steps
	c.steps = 0
	c.accumulator = 0
	return n
}

// Add puts n steps back, e.g. after a taken total could not be saved.
// It works on a stopped counter too.
func (c *Counter) Add(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps += n
}

// Stop makes the counter ignore all further events. It cannot be undone.
func (c *Counter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Thresholds reports the configured movement and step thresholds.
func (c *Counter) Thresholds() (movement float64, steps int) {
	return c.movementThreshold, c.stepThreshold
}
