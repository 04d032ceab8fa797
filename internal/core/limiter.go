package core

// limiter.go caps in-flight FetchAll, Upsert and DeleteOne calls for the
// whole process. Sessions share one Limiter through the Service, so a bulk
// delete in one browser tab competes for the same slots as a refresh in
// another. A call that finds no slot within maxWait gets ErrTooManyRequests.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRequests means the remote store is saturated by this process.
var ErrTooManyRequests = errors.New("too many concurrent requests, please try again later")

// Defaults used when GATEWAY_MAX_CONCURRENT or GATEWAY_MAX_WAIT_TIME is zero.
const (
	DefaultMaxConcurrent = 16
	DefaultMaxWaitTime   = 10 * time.Second
)

// Limiter hands out slots to gateway calls.
type Limiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter builds a Limiter with maxConcurrent slots.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire blocks for a slot. Pair every nil return with one Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// caller gave up
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyRequests
	}
}

// Release returns a slot.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount reports gateway calls currently in flight.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *Limiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain returns once no gateway call is in flight. cmd/server calls it
// after the HTTP server stops so pending deletes reach the store.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// do wraps one gateway call. A nil Limiter means unlimited.
func (l *Limiter) do(ctx context.Context, fn func(context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}
