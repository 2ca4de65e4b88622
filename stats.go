package colorgate

// GroupStats describes one queued group.
type GroupStats struct {
	Color Color
	// Waiting includes members already granted entry.
	Waiting int
	Granted int
}

// Stats is a point-in-time snapshot of a Controller.
type Stats struct {
	ActiveColor Color
	Active      int
	// Groups lists the queue from head to tail.
	Groups []GroupStats
	Closed bool

	// Admissions that skipped the queue, and those that went through it,
	// per color.
	Fast   map[Color]uint64
	Queued map[Color]uint64
	// Canceled counts queued callers that gave up.
	Canceled uint64
	// Grants counts how many times a head group was let in.
	Grants uint64
}

// Waiting returns the number of parked callers across all groups.
func (s Stats) Waiting() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Waiting
	}
	return n
}

// Stats returns a consistent snapshot of the controller.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		ActiveColor: c.color,
		Active:      c.active,
		Groups:      make([]GroupStats, 0, c.queue.Len()),
		Closed:      c.closed,
		Fast:        map[Color]uint64{A: c.fast[A], B: c.fast[B]},
		Queued:      map[Color]uint64{A: c.queued[A], B: c.queued[B]},
		Canceled:    c.canceled,
		Grants:      c.grants,
	}
	for i := 0; i < c.queue.Len(); i++ {
		g := c.queue.At(i)
		s.Groups = append(s.Groups, GroupStats{
			Color:   g.color,
			Waiting: g.waiting,
			Granted: g.granted,
		})
	}
	return s
}
