// Package occupancy records who is inside a shared resource and flags the
// first moment callers of both colors overlap.
package occupancy

import (
	"sync"

	"github.com/pkg/errors"

	colorgate "github.com/knzm/go-colorgate"
)

// Token identifies one stay inside the resource.
type Token uint64

// Event is one entry or exit, stamped with a logical clock.
type Event struct {
	Seq   uint64
	Token Token
	Name  string
	Color colorgate.Color
	Enter bool
	// Inside is the number of callers of Color inside after the event.
	Inside int
}

type visit struct {
	name  string
	color colorgate.Color
}

// Recorder is safe for concurrent use. Callers must Enter after their
// Acquire returns and Exit before they Release.
type Recorder struct {
	mu     sync.Mutex
	seq    uint64
	next   Token
	inside map[colorgate.Color]int
	peak   map[colorgate.Color]int
	open   map[Token]visit
	events []Event
	err    error
}

func New() *Recorder {
	return &Recorder{
		inside: make(map[colorgate.Color]int),
		peak:   make(map[colorgate.Color]int),
		open:   make(map[Token]visit),
	}
}

// Enter records name entering with color.
func (r *Recorder) Enter(name string, color colorgate.Color) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	t := r.next
	r.open[t] = visit{name: name, color: color}

	if other := r.inside[color.Opposite()]; other > 0 && r.err == nil {
		r.err = errors.Errorf("%s (%v) entered at %d while %d %v callers were inside",
			name, color, r.seq+1, other, color.Opposite())
	}
	r.inside[color]++
	if r.inside[color] > r.peak[color] {
		r.peak[color] = r.inside[color]
	}
	r.record(t, name, color, true)
	return t
}

// Exit records the end of the stay started by t.
func (r *Recorder) Exit(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.open[t]
	if !ok {
		if r.err == nil {
			r.err = errors.Errorf("exit with unknown token %d", t)
		}
		return
	}
	delete(r.open, t)
	r.inside[v.color]--
	r.record(t, v.name, v.color, false)
}

func (r *Recorder) record(t Token, name string, color colorgate.Color, enter bool) {
	r.seq++
	r.events = append(r.events, Event{
		Seq:    r.seq,
		Token:  t,
		Name:   name,
		Color:  color,
		Enter:  enter,
		Inside: r.inside[color],
	})
}

// Err returns the first exclusion violation or bookkeeping error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Events returns a copy of the event log in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Admissions returns caller names in the order they entered.
func (r *Recorder) Admissions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, e := range r.events {
		if e.Enter {
			names = append(names, e.Name)
		}
	}
	return names
}

// Peak returns the largest number of color callers seen inside at once.
func (r *Recorder) Peak(color colorgate.Color) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak[color]
}

// Inside returns how many callers are currently recorded inside.
func (r *Recorder) Inside() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}
