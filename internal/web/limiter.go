package web

// limiter.go bounds how many query commands run against the store at once.
//
// When every slot is taken, a request waits up to maxWait before failing
// with ErrTooManyCommands.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyCommands is returned when no command slot frees up in time.
var ErrTooManyCommands = errors.New("too many concurrent commands, please try again later")

// DefaultMaxConcurrent is the slot count used when none is configured.
const DefaultMaxConcurrent = 8

// DefaultMaxWait is how long to wait for a slot before rejecting.
const DefaultMaxWait = 5 * time.Second

// CommandLimiter is a semaphore over command execution.
type CommandLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewCommandLimiter creates a limiter allowing maxConcurrent commands.
func NewCommandLimiter(maxConcurrent int, maxWait time.Duration) *CommandLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	return &CommandLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must call Release on success.
func (l *CommandLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyCommands
	}
}

// Release frees a slot taken by Acquire.
func (l *CommandLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// LimiterStatus is a snapshot of slot usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current slot usage.
func (l *CommandLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
