package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_FirstGrantImmediate(t *testing.T) {
	l := New(time.Second)

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	require.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestLimiter_SpacesConcurrentGrants(t *testing.T) {
	const delay = 60 * time.Millisecond
	l := New(delay)

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background()))
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	require.Len(t, times, 4)
	// Three gaps of at least delay, minus scheduling slack on the recording side.
	require.GreaterOrEqual(t, times[3].Sub(times[0]), 3*delay-15*time.Millisecond)
	require.Equal(t, 0, l.QueueLength())
}

func TestLimiter_FIFO(t *testing.T) {
	l := New(100 * time.Millisecond)
	require.NoError(t, l.Acquire(context.Background()))

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background()))
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}(i)
		want := i + 1
		require.Eventually(t, func() bool { return l.QueueLength() == want }, time.Second, time.Millisecond)
	}
	wg.Wait()
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestLimiter_ResetGrantsImmediately(t *testing.T) {
	l := New(time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	l.Reset()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Acquire(ctx))
}

func TestLimiter_ClearQueueAbandonsWaiters(t *testing.T) {
	l := New(time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Acquire(ctx) }()

	require.Eventually(t, func() bool { return l.QueueLength() == 1 }, time.Second, time.Millisecond)
	l.ClearQueue()
	require.Equal(t, 0, l.QueueLength())

	select {
	case <-done:
		t.Fatal("cleared waiter must not be granted")
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestLimiter_CancelRemovesWaiter(t *testing.T) {
	l := New(time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Acquire(ctx), context.DeadlineExceeded)
	require.Equal(t, 0, l.QueueLength())
}
