package core

// run_limiter.go bounds the number of pipeline runs held in memory at once.
//
// Each run keeps the whole upload and its output buffers in memory, so the
// limiter is what caps memory under concurrent requests. When all slots are
// taken a caller waits up to maxWait, then fails with ErrTooManyRuns.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyRuns is returned when no run slot frees up within the wait time.
var ErrTooManyRuns = errors.New("too many conversions in progress, please try again later")

const (
	// DefaultMaxConcurrentRuns is used when a non-positive limit is configured.
	DefaultMaxConcurrentRuns = 5

	// DefaultMaxWait is used when a non-positive wait is configured.
	DefaultMaxWait = 30 * time.Second
)

// RunLimiter is a counting semaphore over pipeline runs.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewRunLimiter allows at most maxConcurrent simultaneous runs.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the configured maximum.
// Every successful Acquire must be paired with one Release.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyRuns
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *RunLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of runs holding a slot.
func (l *RunLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the maximum number of concurrent runs.
func (l *RunLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no run holds a slot or ctx is done.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a point-in-time view of the limiter.
type LimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

// Status returns the current limiter state.
func (l *RunLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:    l.Active(),
		Available: l.Capacity() - len(l.slots),
		Capacity:  l.Capacity(),
	}
}
