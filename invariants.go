package colorgate

import (
	"fmt"

	"github.com/pkg/errors"
)

// verify panics if the controller state is inconsistent. It is a no-op
// unless the controller was built WithInvariantChecks. Callers hold c.mu.
func (c *Controller) verify() {
	if !c.checks {
		return
	}
	if err := c.consistent(); err != nil {
		panic(fmt.Sprintf("colorgate: %v", err))
	}
}

func (c *Controller) consistent() error {
	if c.active < 0 {
		return errors.Errorf("negative occupancy %d", c.active)
	}
	if c.active > 0 && !c.color.Valid() {
		return errors.Errorf("%d occupants without an active color", c.active)
	}
	if c.color == Unset && (c.active != 0 || c.queue.Len() != 0) {
		return errors.Errorf("idle with %d occupants and %d groups", c.active, c.queue.Len())
	}
	if c.active == 0 && c.queue.Len() == 0 && c.color != Unset {
		return errors.Errorf("empty resource and queue but %v is active", c.color)
	}

	var prev *waitGroup
	for i := 0; i < c.queue.Len(); i++ {
		g := c.queue.At(i)
		if g.waiting < 0 || g.granted < 0 || g.granted > g.waiting {
			return errors.Errorf("group %d (%v): waiting=%d granted=%d", i, g.color, g.waiting, g.granted)
		}
		if !g.color.Valid() {
			return errors.Errorf("group %d has color %v", i, g.color)
		}
		if prev != nil && prev.color == g.color {
			return errors.Errorf("groups %d and %d are both %v", i-1, i, g.color)
		}
		prev = g
	}

	if n := c.queue.Len(); n > 0 {
		if c.queue.Front().drained() || c.queue.Back().drained() {
			return errors.New("empty group at an end of the queue")
		}
		if c.active == 0 && c.queue.Front().granted == 0 {
			return errors.Errorf("resource is empty but head group (%v) is not granted", c.queue.Front().color)
		}
		if g := c.queue.Front(); c.active > 0 && g.color == c.color && g.granted < g.waiting {
			return errors.Errorf("head group (%v) of the running color has %d callers not granted", g.color, g.waiting-g.granted)
		}
	}
	return nil
}
