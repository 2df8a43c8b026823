package web

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCommandLimiter_AcquireRelease(t *testing.T) {
	limiter := NewCommandLimiter(2, time.Second)
	ctx := context.Background()

	if diff := cmp.Diff(LimiterStatus{Available: 2, MaxConcurrent: 2}, limiter.Status()); diff != "" {
		t.Errorf("initial status mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i+1, err)
		}
	}
	if diff := cmp.Diff(LimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}, limiter.Status()); diff != "" {
		t.Errorf("full status mismatch (-want +got):\n%s", diff)
	}

	limiter.Release()
	limiter.Release()
	if got := limiter.Status().Active; got != 0 {
		t.Errorf("after Release, Active = %d, want 0", got)
	}
}

func TestCommandLimiter_Timeout(t *testing.T) {
	limiter := NewCommandLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyCommands) {
		t.Fatalf("second Acquire error = %v, want ErrTooManyCommands", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Acquire returned after %v, want it to wait for maxWait", elapsed)
	}
}

func TestCommandLimiter_ContextCancelled(t *testing.T) {
	limiter := NewCommandLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire error = %v, want context.Canceled", err)
	}
}

func TestCommandLimiter_WaitsForRelease(t *testing.T) {
	limiter := NewCommandLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		err = limiter.Acquire(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	limiter.Release()
	wg.Wait()

	if err != nil {
		t.Fatalf("waiting Acquire failed: %v", err)
	}
	limiter.Release()
}

func TestCommandLimiter_Defaults(t *testing.T) {
	limiter := NewCommandLimiter(0, 0)
	if got := limiter.Status().MaxConcurrent; got != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
}
