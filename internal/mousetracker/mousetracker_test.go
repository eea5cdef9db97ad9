package mousetracker

import (
	"context"
	"sync"
	"testing"
	"time"
)

// scripted returns positions from a list, repeating the last one.
func scripted(points ...[2]int) func() (int, int) {
	var mu sync.Mutex
	i := 0
	return func() (int, int) {
		mu.Lock()
		defer mu.Unlock()
		p := points[i]
		if i < len(points)-1 {
			i++
		}
		return p[0], p[1]
	}
}

type moveSink struct {
	mu    sync.Mutex
	moves []MousePosition
}

func (s *moveSink) OnMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, MousePosition{X: x, Y: y})
}

func (s *moveSink) OnKeyPress(key int) {}

func (s *moveSink) snapshot() []MousePosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MousePosition(nil), s.moves...)
}

func TestNewDefaultsInterval(t *testing.T) {
	tr := NewWithPosition(0, scripted([2]int{0, 0}))
	if tr.interval != DefaultInterval {
		t.Errorf("Expected interval %v, got %v", DefaultInterval, tr.interval)
	}
}

func TestSampleFirstIsReported(t *testing.T) {
	tr := NewWithPosition(time.Millisecond, scripted([2]int{100, 200}))

	pos, ok := tr.Sample()
	if !ok {
		t.Fatal("Expected first sample to be reported")
	}
	if pos != (MousePosition{X: 100, Y: 200}) {
		t.Errorf("Unexpected first position %+v", pos)
	}
}

func TestSampleSkipsUnchangedPosition(t *testing.T) {
	tr := NewWithPosition(time.Millisecond, scripted([2]int{10, 10}, [2]int{10, 10}, [2]int{13, 14}, [2]int{10, 10}))

	tr.Sample()
	if _, ok := tr.Sample(); ok {
		t.Error("Expected unchanged position to be skipped")
	}

	pos, ok := tr.Sample()
	if !ok || pos != (MousePosition{X: 13, Y: 14}) {
		t.Errorf("Expected move to 13,14 to be reported, got %+v ok=%v", pos, ok)
	}

	// returning to an earlier position is still a change
	pos, ok = tr.Sample()
	if !ok || pos != (MousePosition{X: 10, Y: 10}) {
		t.Errorf("Expected move back to 10,10 to be reported, got %+v ok=%v", pos, ok)
	}
}

func TestSampleOriginIsAPosition(t *testing.T) {
	tr := NewWithPosition(time.Millisecond, scripted([2]int{0, 0}, [2]int{0, 0}))

	if _, ok := tr.Sample(); !ok {
		t.Error("Expected first sample at the origin to be reported")
	}
	if _, ok := tr.Sample(); ok {
		t.Error("Expected repeated origin to be skipped")
	}
}

func TestRunForwardsMoves(t *testing.T) {
	tr := NewWithPosition(time.Millisecond, scripted([2]int{0, 0}, [2]int{30, 0}, [2]int{30, 0}, [2]int{30, 40}))
	sink := &moveSink{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx, sink) }()

	deadline := time.After(2 * time.Second)
	for len(sink.snapshot()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("Timed out, got %d moves", len(sink.snapshot()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	want := []MousePosition{{0, 0}, {30, 0}, {30, 40}}
	got := sink.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Expected %d moves, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Move %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
