package colorgate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	colorgate "github.com/knzm/go-colorgate"
)

type timeoutError struct{}

func (e timeoutError) Error() string   { return "timeout" }
func (e timeoutError) IsTimeout() bool { return true }

func isTimeout(err error) bool {
	terr, ok := err.(timeoutError)
	return ok && terr.IsTimeout()
}

// acquireWithTimeout reports timeoutError if Acquire is still blocked after
// timeout. The blocked call keeps running; cancel ctx to end it.
func acquireWithTimeout(ctx context.Context, waiter colorgate.Waiter, timeout time.Duration) error {
	ch := make(chan error, 1)
	go func() {
		ch <- waiter.Acquire(ctx)
	}()
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return timeoutError{}
	}
}

func releaseWithTimeout(waiter colorgate.Waiter, timeout time.Duration) error {
	ch := make(chan struct{}, 1)
	go func() {
		waiter.Release()
		ch <- struct{}{}
	}()
	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return timeoutError{}
	}
}

func TestWaiter(t *testing.T) {
	t.Run("non blocking", func(t *testing.T) {
		ctx := context.Background()
		c := newController(t)
		white := c.Waiter(colorgate.White)
		for i := 0; i < 3; i++ {
			err := acquireWithTimeout(ctx, white, blockingThreshold)
			require.NoError(t, err, "[%d] Acquire()", i)
		}
		assert.Equal(t, 3, c.Stats().Active)
		for i := 0; i < 3; i++ {
			white.Release()
		}
		requireIdle(t, c)
	})

	t.Run("blocking", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := newController(t)
		white, black := c.Waiter(colorgate.White), c.Waiter(colorgate.Black)

		require.NoError(t, acquireWithTimeout(ctx, white, blockingThreshold))
		// black.Acquire() should be blocked while white holds the resource
		err := acquireWithTimeout(ctx, black, blockingThreshold)
		require.Error(t, err)
		assert.True(t, isTimeout(err), "expected a timeout, got %v", err)

		cancel()
		require.Eventually(t, func() bool {
			return c.Stats().Canceled == 1
		}, time.Second, time.Millisecond)
		white.Release()
		requireIdle(t, c)
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		c := newController(t)
		white, black := c.Waiter(colorgate.White), c.Waiter(colorgate.Black)

		require.NoError(t, acquireWithTimeout(ctx, white, blockingThreshold))
		// black.Acquire() should be timed out after 100ms
		err := acquireWithTimeout(ctx, black, time.Second)
		require.Error(t, err)
		assert.False(t, isTimeout(err), "timed out without the context")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		white.Release()
		requireIdle(t, c)
	})

	t.Run("acquire and release", func(t *testing.T) {
		ctx := context.Background()
		c := newController(t)
		for i := 0; i < 5; i++ {
			w := c.Waiter(colorgate.White)
			if i%2 == 1 {
				w = c.Waiter(colorgate.Black)
			}
			require.NoError(t, acquireWithTimeout(ctx, w, blockingThreshold), "[%d] Acquire()", i)
			require.NoError(t, releaseWithTimeout(w, blockingThreshold), "[%d] Release()", i)
		}
		requireIdle(t, c)
	})

	t.Run("slow worker", func(t *testing.T) {
		var mu sync.Mutex
		alive := map[colorgate.Color]int{}
		maxAlive := map[colorgate.Color]int{}
		mixed := false

		workerStarted := func(color colorgate.Color) {
			mu.Lock()
			defer mu.Unlock()

			alive[color]++
			if alive[color] > maxAlive[color] {
				maxAlive[color] = alive[color]
			}
			if alive[color.Opposite()] > 0 {
				mixed = true
			}
		}

		workerFinished := func(color colorgate.Color) {
			mu.Lock()
			defer mu.Unlock()

			alive[color]--
		}

		worker := func(ctx context.Context, waiter colorgate.Waiter, color colorgate.Color) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			err := waiter.Acquire(ctx)
			if err != nil {
				return err
			}
			defer waiter.Release()

			workerStarted(color)
			// do the heavy task
			time.Sleep(10 * time.Millisecond)
			workerFinished(color)
			return nil
		}

		const numJobs = 100

		c := newController(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := make(chan error)
		for i := 0; i < numJobs; i++ {
			color := colorgate.White
			if i%3 == 0 {
				color = colorgate.Black
			}
			go func() {
				ch <- worker(ctx, c.Waiter(color), color)
			}()
		}

		for i := 0; i < numJobs; i++ {
			err := <-ch
			assert.NoError(t, err, "[%d]", i)
		}

		assert.False(t, mixed, "both colors were inside at once")
		assert.Greater(t, maxAlive[colorgate.White], 1, "white callers never shared the resource")
		requireIdle(t, c)
	})
}
