package web2pdf

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one render can run.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// Unbounded disables admission control when passed to NewLimiter.
const Unbounded = -1

// DefaultAdmissionWait is how long a request may queue for a render slot.
const DefaultAdmissionWait = 10 * time.Second

// Limiter gates how many browser sessions run at once.
// Every in-flight render holds one slot from Acquire until release.
type Limiter struct {
	sem      *semaphore.Weighted // nil when unbounded
	size     int
	wait     time.Duration
	inFlight atomic.Int64
}

// NewLimiter creates a Limiter admitting n concurrent renders.
// n == 0 sizes the limiter with ResolvePoolSize; n < 0 is Unbounded.
// wait bounds how long Acquire queues; zero or less fails immediately when
// every slot is taken.
func NewLimiter(n int, wait time.Duration) *Limiter {
	l := &Limiter{wait: wait}
	if n < 0 {
		l.size = Unbounded
		return l
	}
	l.size = ResolvePoolSize(n)
	l.sem = semaphore.NewWeighted(int64(l.size))
	return l
}

// Acquire takes a render slot. The returned release func is idempotent.
// Errors wrap ErrAdmission; callers check ctx.Err() to tell cancellation
// from saturation.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if l.sem != nil {
		if err := l.acquire(ctx); err != nil {
			return nil, err
		}
	}

	l.inFlight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			l.inFlight.Add(-1)
			if l.sem != nil {
				l.sem.Release(1)
			}
		})
	}, nil
}

func (l *Limiter) acquire(ctx context.Context) error {
	if l.wait <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrAdmission, err)
		}
		if !l.sem.TryAcquire(1) {
			return fmt.Errorf("%w: all %d slots busy", ErrAdmission, l.size)
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		return fmt.Errorf("%w: all %d slots busy after %s: %v", ErrAdmission, l.size, l.wait, err)
	}
	return nil
}

// InFlight returns the number of renders currently holding a slot.
func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}

// Capacity returns the slot count, or Unbounded.
func (l *Limiter) Capacity() int {
	return l.size
}

// ResolvePoolSize determines the concurrency ceiling.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
