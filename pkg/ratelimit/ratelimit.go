// Package ratelimit gates outbound model calls behind a fixed request budget
// per rolling window. Acquire never rejects; it only waits, and waiters are
// served strictly in arrival order.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrWaitTimeout is returned by AcquireWithin when the configured maximum
// wait elapses before a permit becomes available.
var ErrWaitTimeout = errors.New("rate limit wait exceeded the configured bound")

// Limiter admits at most limit permits within any rolling window. It is safe
// for concurrent use across sessions sharing one process.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	grants  []time.Time
	waiters []*waiter

	now func() time.Time
}

type waiter struct {
	ready chan struct{}
}

// New constructs a limiter admitting limit permits per window. Non-positive
// inputs fall back to a single permit per minute.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Acquire blocks until the current window has budget, deducts one unit and
// returns. Cancellation of ctx abandons the wait cleanly: the caller's queue
// slot is released and the next waiter is woken.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.prune(l.now())
	if len(l.waiters) == 0 && len(l.grants) < l.limit {
		l.grants = append(l.grants, l.now())
		l.mu.Unlock()
		return nil
	}
	w := &waiter{ready: make(chan struct{}, 1)}
	l.waiters = append(l.waiters, w)
	l.mu.Unlock()

	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.waiters) > 0 && l.waiters[0] == w && len(l.grants) < l.limit {
			l.waiters = l.waiters[1:]
			l.grants = append(l.grants, now)
			// A freed slot may already cover the next waiter too.
			l.wakeHead()
			l.mu.Unlock()
			return nil
		}
		var timerC <-chan time.Time
		var timer *time.Timer
		if len(l.waiters) > 0 && l.waiters[0] == w && len(l.grants) > 0 {
			// Head of the line: sleep until the oldest grant rolls
			// out of the window.
			timer = time.NewTimer(l.grants[0].Add(l.window).Sub(now))
			timerC = timer.C
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			l.abandon(w)
			return ctx.Err()
		case <-timerC:
		case <-w.ready:
			if timer != nil {
				timer.Stop()
			}
		}
	}
}

// AcquireWithin bounds the wait for a permit. A zero or negative maxWait means
// wait indefinitely. When the bound elapses first, ErrWaitTimeout is returned;
// cancellation of the parent context is reported as-is.
func (l *Limiter) AcquireWithin(ctx context.Context, maxWait time.Duration) error {
	if maxWait <= 0 {
		return l.Acquire(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	err := l.Acquire(waitCtx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w (%s)", ErrWaitTimeout, maxWait)
	}
	return err
}

// Limit reports the configured permits-per-window ceiling.
func (l *Limiter) Limit() int { return l.limit }

// Window reports the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// prune drops grant timestamps that have rolled out of the window. Callers
// hold l.mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.grants) && !l.grants[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.grants = append(l.grants[:0], l.grants[i:]...)
	}
}

// wakeHead nudges the first waiter in line, if any. Callers hold l.mu.
func (l *Limiter) wakeHead() {
	if len(l.waiters) == 0 {
		return
	}
	select {
	case l.waiters[0].ready <- struct{}{}:
	default:
	}
}

// abandon removes a cancelled waiter from the queue and, if it was at the
// head, promotes the next waiter so the line keeps moving.
func (l *Limiter) abandon(w *waiter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, queued := range l.waiters {
		if queued == w {
			wasHead := i == 0
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			if wasHead {
				l.wakeHead()
			}
			return
		}
	}
}
