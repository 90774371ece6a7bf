// Package barometer reads station pressure from an optional local sensor.
// Every failure is recoverable: callers fall back to the API pressure.
package barometer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultTimeout = 3 * time.Second

var (
	ErrUnavailable = errors.New("barometer unavailable")
	ErrTimeout     = errors.New("barometer read timed out")
)

// Reader returns the current pressure in hPa.
type Reader interface {
	ReadPressure(ctx context.Context) (float64, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context) (float64, error)

func (f ReaderFunc) ReadPressure(ctx context.Context) (float64, error) {
	return f(ctx)
}

// Future is the single result of a background sensor read.
type Future struct {
	done     chan struct{}
	deadline time.Time

	hPa float64
	err error
}

// Start reads r in the background. A nil reader resolves immediately to
// ErrUnavailable. The read is cancelled once timeout has elapsed.
func Start(ctx context.Context, r Reader, timeout time.Duration) *Future {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Future{
		done:     make(chan struct{}),
		deadline: time.Now().Add(timeout),
	}

	if r == nil {
		f.err = ErrUnavailable
		close(f.done)
		return f
	}

	ctx, cancel := context.WithDeadline(ctx, f.deadline)
	go func() {
		defer cancel()
		defer close(f.done)

		hPa, err := r.ReadPressure(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			f.err = ErrTimeout
		case err != nil:
			f.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		case hPa <= 0:
			f.err = fmt.Errorf("%w: implausible reading %.2f hPa", ErrUnavailable, hPa)
		default:
			f.hPa = hPa
		}
	}()
	return f
}

// Await blocks until the read finishes or the deadline passes. It may be
// called more than once.
func (f *Future) Await() (float64, error) {
	select {
	case <-f.done:
		return f.hPa, f.err
	default:
	}

	timer := time.NewTimer(time.Until(f.deadline))
	defer timer.Stop()

	select {
	case <-f.done:
		return f.hPa, f.err
	case <-timer.C:
		return 0, ErrTimeout
	}
}
