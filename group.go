package colorgate

// waitGroup is a run of same-colored callers queued behind the active
// color. All fields are guarded by the owning Controller's mutex.
type waitGroup struct {
	color Color
	// waiting counts parked callers, including those already granted.
	waiting int
	// granted counts callers allowed in that have not yet consumed the grant.
	granted int
	// wake is closed on every grant and replaced, so parked callers can
	// select on it alongside their context.
	wake chan struct{}
}

func newWaitGroup(color Color) *waitGroup {
	return &waitGroup{
		color: color,
		wake:  make(chan struct{}),
	}
}

// grant admits every parked member at once.
func (g *waitGroup) grant() {
	g.granted = g.waiting
	close(g.wake)
	g.wake = make(chan struct{})
}

// consume turns one grant into an admission.
func (g *waitGroup) consume() {
	g.waiting--
	g.granted--
}

func (g *waitGroup) drained() bool {
	return g.waiting == 0 && g.granted == 0
}
