package colorgate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	colorgate "github.com/knzm/go-colorgate"
)

func TestExecutor(t *testing.T) {
	t.Run("returns the job result", func(t *testing.T) {
		c := newController(t)
		e := colorgate.NewExecutor(c.Waiter(colorgate.A))

		res, err := e.Execute(context.Background(), func() colorgate.Result {
			s := c.Stats()
			assert.Equal(t, colorgate.A, s.ActiveColor)
			assert.Equal(t, 1, s.Active)
			return 42
		})
		require.NoError(t, err)
		assert.Equal(t, 42, res)
		requireIdle(t, c)
		require.NoError(t, c.Close())
	})

	t.Run("not granted", func(t *testing.T) {
		c := newController(t)
		require.NoError(t, c.Acquire(context.Background(), colorgate.A))
		e := colorgate.NewExecutor(c.Waiter(colorgate.B))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		ran := false
		_, err := e.Execute(ctx, func() colorgate.Result {
			ran = true
			return nil
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "resource was not granted")
		e.Wait()
		assert.False(t, ran)

		c.Release(colorgate.A)
		requireIdle(t, c)
	})

	t.Run("job is cancelled", func(t *testing.T) {
		c := newController(t)
		e := colorgate.NewExecutor(c.Waiter(colorgate.B))

		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		finish := make(chan struct{})
		errCh := make(chan error, 1)
		go func() {
			_, err := e.Execute(ctx, func() colorgate.Result {
				close(started)
				<-finish
				return nil
			})
			errCh <- err
		}()

		<-started
		cancel()
		err := <-errCh
		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "job is cancelled")

		// The job still holds the resource until it finishes.
		assert.Equal(t, 1, c.Stats().Active)
		require.ErrorIs(t, c.Close(), colorgate.ErrBusy)

		close(finish)
		e.Wait()
		requireIdle(t, c)
		require.NoError(t, c.Close())
	})
}
