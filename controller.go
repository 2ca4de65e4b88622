// Package colorgate admits two classes of callers ("colors") to a shared
// resource. Callers of one color may use the resource together, callers of
// different colors never overlap, and neither color can starve the other:
// callers that cannot enter immediately queue in alternating same-color
// groups, and each group is let in as a whole once the resource drains.
package colorgate

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Controller is the admission state shared by all callers of one resource.
// It must be created with New.
type Controller struct {
	mu     sync.Mutex
	color  Color
	active int
	queue  deque.Deque[*waitGroup]
	closed bool

	fast     [3]uint64
	queued   [3]uint64
	canceled uint64
	grants   uint64

	log    *zap.Logger
	checks bool
}

// New returns an idle controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		color: Unset,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire blocks until a caller of the given color may use the resource.
// Every successful Acquire must be paired with one Release of the same
// color.
//
// A caller that has to queue gives up when ctx ends, unless its group was
// let in before it noticed. With a context that never ends, Acquire only
// fails for invalid colors or a closed controller.
func (c *Controller) Acquire(ctx context.Context, color Color) error {
	if !color.Valid() {
		return errors.Wrapf(ErrInvalidColor, "acquire %v", color)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.Wrapf(ErrClosed, "acquire %v", color)
	}

	if c.admits(color) {
		c.enter(color)
		c.fast[color]++
		c.verify()
		return nil
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "acquire %v", color)
	}

	g := c.join(color)
	c.verify()

	for g.granted == 0 {
		wake := g.wake
		c.mu.Unlock()
		select {
		case <-wake:
		case <-ctx.Done():
		}
		c.mu.Lock()

		if g.granted == 0 && ctx.Err() != nil {
			c.abandon(g)
			c.verify()
			return errors.Wrapf(ctx.Err(), "acquire %v: gave up while queued", color)
		}
	}

	g.consume()
	c.enter(color)
	c.queued[color]++
	if g.drained() && c.head() == g {
		c.queue.PopFront()
		c.log.Debug("group drained", zap.Stringer("color", color))
	}
	c.handOff()
	c.verify()
	return nil
}

// Release gives back the resource obtained by a matching Acquire. When the
// last occupant leaves, the whole group at the head of the queue is let in.
//
// Releasing without a matching Acquire, or with a color other than the
// active one, panics.
func (c *Controller) Release(color Color) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !color.Valid():
		panic(fmt.Sprintf("colorgate: release of invalid color %v", color))
	case c.active == 0:
		panic("colorgate: too much release")
	case color != c.color:
		panic(fmt.Sprintf("colorgate: release of %v while %v is active", color, c.color))
	}

	c.active--
	if c.active == 0 {
		c.handOff()
	}
	c.verify()
}

// Close tears down an idle controller. It fails with ErrBusy and changes
// nothing while any caller holds or waits for the resource. Acquire calls
// made after a successful Close return ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	if c.active > 0 {
		return errors.Wrapf(ErrBusy, "%d %v callers hold the resource", c.active, c.color)
	}
	parked := 0
	for i := 0; i < c.queue.Len(); i++ {
		parked += c.queue.At(i).waiting
	}
	if parked > 0 {
		return errors.Wrapf(ErrBusy, "%d callers are queued", parked)
	}

	if n := c.queue.Len(); n > 0 {
		c.log.Debug("dropping empty groups on close", zap.Int("groups", n))
	}
	c.queue.Clear()
	c.color = Unset
	c.closed = true
	return nil
}

// admits reports whether color may enter without queueing. Once a group of
// the other color waits at the head, the active color has to queue too.
func (c *Controller) admits(color Color) bool {
	if c.color == Unset {
		return true
	}
	if c.color != color {
		return false
	}
	head := c.head()
	return head == nil || head.color == color
}

func (c *Controller) enter(color Color) {
	c.color = color
	c.active++
}

// join parks a caller in the tail group, starting a new group when the tail
// has the other color.
func (c *Controller) join(color Color) *waitGroup {
	g := c.tail()
	if g == nil || g.color != color {
		g = newWaitGroup(color)
		c.queue.PushBack(g)
		c.log.Debug("group queued",
			zap.Stringer("color", color),
			zap.Stringer("active", c.color),
			zap.Int("groups", c.queue.Len()))
	}
	g.waiting++
	return g
}

// abandon removes a canceled caller from its group.
func (c *Controller) abandon(g *waitGroup) {
	g.waiting--
	c.canceled++
	c.log.Debug("queued caller canceled",
		zap.Stringer("color", g.color),
		zap.Int("waiting", g.waiting))
	c.handOff()
}

// handOff lets the head group in if the resource is empty, or marks the
// controller idle when nobody is queued. A head group of the color already
// inside joins the running batch at once: newcomers of that color take the
// fast path past it, so occupancy might never drop to zero for it.
func (c *Controller) handOff() {
	c.prune()
	g := c.head()
	switch {
	case g == nil:
		if c.active == 0 {
			c.color = Unset
		}
	case c.active == 0, g.color == c.color:
		if g.granted < g.waiting {
			g.grant()
			c.grants++
			c.log.Debug("group granted",
				zap.Stringer("color", g.color),
				zap.Int("size", g.granted),
				zap.Int("active", c.active))
		}
	}
}

// prune drops empty groups from both ends of the queue. Groups emptied by
// cancellation in the middle stay put until they reach an end, which keeps
// neighbouring groups from sharing a color.
func (c *Controller) prune() {
	for c.queue.Len() > 0 && c.queue.Front().drained() {
		c.queue.PopFront()
	}
	for c.queue.Len() > 0 && c.queue.Back().drained() {
		c.queue.PopBack()
	}
}

func (c *Controller) head() *waitGroup {
	if c.queue.Len() == 0 {
		return nil
	}
	return c.queue.Front()
}

func (c *Controller) tail() *waitGroup {
	if c.queue.Len() == 0 {
		return nil
	}
	return c.queue.Back()
}
