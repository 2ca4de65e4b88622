package colorgate

import (
	"context"
)

// Waiter is one caller class's view of a Controller.
type Waiter interface {
	Acquire(ctx context.Context) error
	Release()
}

type waiter struct {
	c     *Controller
	color Color
}

// Waiter binds the controller to a single color.
func (c *Controller) Waiter(color Color) Waiter {
	return &waiter{
		c:     c,
		color: color,
	}
}

func (w *waiter) Acquire(ctx context.Context) error {
	return w.c.Acquire(ctx, w.color)
}

func (w *waiter) Release() {
	w.c.Release(w.color)
}
