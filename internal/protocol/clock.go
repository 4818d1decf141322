package protocol

import (
	"context"
	"time"
)

// Clock abstracts wall time so the retry windows and backoff sequences
// are testable without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns the real-time clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoff yields the waiting-for-result delay sequence: a fixed start,
// multiplied on each step, capped at a maximum.
type backoff struct {
	delay  time.Duration
	factor float64
	max    time.Duration
}

// next returns the current delay and advances the sequence.
func (b *backoff) next() time.Duration {
	d := b.delay
	scaled := time.Duration(float64(b.delay) * b.factor)
	if scaled > b.max {
		scaled = b.max
	}
	b.delay = scaled
	return d
}
