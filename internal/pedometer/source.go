package pedometer

import (
	"context"
	"errors"
	"sync"
)

// Sink receives device notifications. *Counter implements it.
type Sink interface {
	OnMove(x, y float64)
	OnKeyPress(key int)
}

// EventSource delivers device events to a sink until ctx is done.
type EventSource interface {
	Run(ctx context.Context, sink Sink) error
}

// EventSourceFunc adapts a function literal to the EventSource interface.
type EventSourceFunc func(ctx context.Context, sink Sink) error

// Run calls the underlying function.
func (f EventSourceFunc) Run(ctx context.Context, sink Sink) error {
	return f(ctx, sink)
}

// Attach runs every source against sink concurrently and blocks until all of
// them return. Cancellation errors are not reported; the first other error is.
// A failing source does not stop the others.
func Attach(ctx context.Context, sink Sink, sources ...EventSource) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, src := range sources {
		if src == nil {
			continue
		}
		wg.Add(1)
		go func(src EventSource) {
			defer wg.Done()
			err := src.Run(ctx, sink)
			if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(src)
	}

	wg.Wait()
	return firstErr
}
