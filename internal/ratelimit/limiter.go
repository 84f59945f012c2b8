// Package ratelimit spaces page loads against the catalog site.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter grants permits one at a time, in arrival order, with at least the
// configured delay between the starts of consecutive grants. A single drain
// goroutine owns the queue while it is non-empty.
type Limiter struct {
	delay time.Duration

	mu       sync.Mutex
	bucket   *rate.Limiter
	queue    []chan struct{}
	draining bool
	reset    chan struct{}
}

// New creates a limiter with the given minimum spacing. A zero delay grants immediately.
func New(delay time.Duration) *Limiter {
	return &Limiter{
		delay:  delay,
		bucket: newBucket(delay),
		reset:  make(chan struct{}),
	}
}

func newBucket(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Acquire blocks until the caller is granted a permit or ctx is done.
// A waiter dropped by ClearQueue is only released by its own context.
func (l *Limiter) Acquire(ctx context.Context) error {
	w := make(chan struct{})

	l.mu.Lock()
	l.queue = append(l.queue, w)
	if !l.draining {
		l.draining = true
		go l.drain()
	}
	l.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		removed := l.remove(w)
		l.mu.Unlock()
		if !removed {
			// Granted between ctx firing and the lock.
			select {
			case <-w:
				return nil
			default:
			}
		}
		return ctx.Err()
	}
}

func (l *Limiter) remove(w chan struct{}) bool {
	for i, q := range l.queue {
		if q == w {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Limiter) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.draining = false
			l.mu.Unlock()
			return
		}
		bucket, reset := l.bucket, l.reset
		l.mu.Unlock()

		r := bucket.Reserve()
		if d := r.Delay(); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-reset:
				timer.Stop()
				r.Cancel()
				continue
			}
		}

		l.mu.Lock()
		if len(l.queue) == 0 {
			r.Cancel()
			l.draining = false
			l.mu.Unlock()
			return
		}
		next := l.queue[0]
		l.queue = l.queue[1:]
		close(next)
		l.mu.Unlock()
	}
}

// Reset forgets the last grant so the next one is immediate.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bucket = newBucket(l.delay)
	close(l.reset)
	l.reset = make(chan struct{})
}

// ClearQueue drops all pending waiters without granting them.
func (l *Limiter) ClearQueue() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = nil
}

// QueueLength reports how many callers are waiting.
func (l *Limiter) QueueLength() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
