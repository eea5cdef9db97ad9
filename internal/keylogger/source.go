// Package keylogger captures global key presses and feeds them to the step counter.
package keylogger

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/aayushbajaj/step-telemetry/internal/pedometer"
)

var (
	// ErrUnsupported means this platform has no global key capture.
	ErrUnsupported = errors.New("global key capture is not supported on this platform")

	// ErrPermission means the process has not been granted Accessibility trust.
	ErrPermission = errors.New("accessibility permissions not granted - please enable in System Settings > Privacy & Security > Accessibility")

	// ErrAlreadyRunning is returned by Start when capture is already active.
	ErrAlreadyRunning = errors.New("keylogger already running")
)

// Source is a pedometer.EventSource for key presses.
type Source struct {
	log logrus.FieldLogger

	// RetryInitial and RetryMax bound the wait between startup attempts.
	RetryInitial time.Duration
	RetryMax     time.Duration

	start func() (<-chan int, error)
	stop  func()
}

// NewSource returns a source backed by the system key tap.
func NewSource(logger logrus.FieldLogger) *Source {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Source{
		log:          logger.WithField("component", "keylogger"),
		RetryInitial: time.Second,
		RetryMax:     30 * time.Second,
		start:        Start,
		stop:         Stop,
	}
}

// Run starts the key tap, retrying while permission is missing, and forwards
// key presses to sink until ctx is done or the tap closes.
func (s *Source) Run(ctx context.Context, sink pedometer.Sink) error {
	var keys <-chan int

	attempt := 0
	start := func() error {
		attempt++
		ch, err := s.start()
		switch {
		case err == nil:
			keys = ch
			return nil
		case errors.Is(err, ErrUnsupported), errors.Is(err, ErrAlreadyRunning):
			return backoff.Permanent(err)
		default:
			if attempt == 1 {
				s.log.WithError(err).Warn("key capture unavailable, retrying")
			}
			return err
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.RetryInitial
	b.MaxInterval = s.RetryMax
	b.MaxElapsedTime = 0

	if err := backoff.Retry(start, backoff.WithContext(b, ctx)); err != nil {
		if errors.Is(err, ErrUnsupported) {
			s.log.Warn("key capture disabled, counting pointer movement only")
		}
		return err
	}
	defer s.stop()

	s.log.WithField("attempts", attempt).Info("key capture started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code, ok := <-keys:
			if !ok {
				return nil
			}
			sink.OnKeyPress(code)
		}
	}
}
