package ratelimit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestAcquireWithinBudget(t *testing.T) {
	l := New(3, time.Second)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d returned error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("in-budget acquires blocked for %s", elapsed)
	}
}

func TestOverBudgetAcquireWaitsForRollover(t *testing.T) {
	const window = 200 * time.Millisecond
	l := New(2, window)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed < window-20*time.Millisecond {
		t.Fatalf("third acquire admitted after %s, before window rollover", elapsed)
	}
}

func TestNeverExceedsLimitWithinAnyWindow(t *testing.T) {
	const (
		limit  = 3
		window = 150 * time.Millisecond
	)
	l := New(limit, window)

	var (
		mu     sync.Mutex
		grants []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(grants, func(i, j int) bool { return grants[i].Before(grants[j]) })
	for i := 0; i+limit < len(grants); i++ {
		gap := grants[i+limit].Sub(grants[i])
		if gap < window-20*time.Millisecond {
			t.Fatalf("grants %d..%d span %s, tighter than the %s window", i, i+limit, gap, window)
		}
	}
}

func TestWaitersServedInArrivalOrder(t *testing.T) {
	const window = 120 * time.Millisecond
	l := New(1, window)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}(i)
		// Stagger arrivals so queue positions are deterministic.
		time.Sleep(15 * time.Millisecond)
	}
	wg.Wait()

	for i, id := range order {
		if id != i {
			t.Fatalf("waiters served out of order: %v", order)
		}
	}
}

func TestCancelledWaiterReleasesItsSlot(t *testing.T) {
	l := New(1, 300*time.Millisecond)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()
	time.Sleep(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- l.Acquire(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter returned %v", err)
	}
	// The second waiter must still be admitted once the window rolls.
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("queued waiter failed after cancellation: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("queued waiter starved after head cancellation")
	}
}

func TestAcquireWithinTimesOut(t *testing.T) {
	l := New(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	err := l.AcquireWithin(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
}

func TestAcquireWithinReportsParentCancellation(t *testing.T) {
	l := New(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := l.AcquireWithin(ctx, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
