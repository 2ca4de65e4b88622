package app

import (
	"fmt"
	"io"
	"strings"

	colorgate "github.com/knzm/go-colorgate"
)

// Report summarizes a finished run.
type Report struct {
	// Admissions lists caller names in the order they entered.
	Admissions []string
	// Peak is the largest same-color occupancy observed per color.
	Peak  map[colorgate.Color]int
	Stats colorgate.Stats
}

func (r *Report) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "admitted %d callers: %s\n", len(r.Admissions), strings.Join(r.Admissions, " "))
	for _, c := range []colorgate.Color{colorgate.A, colorgate.B} {
		fmt.Fprintf(&b, "%v: peak %d inside, %d fast, %d queued\n",
			c, r.Peak[c], r.Stats.Fast[c], r.Stats.Queued[c])
	}
	fmt.Fprintf(&b, "groups granted: %d, canceled waits: %d\n", r.Stats.Grants, r.Stats.Canceled)
	_, err := io.WriteString(w, b.String())
	return err
}
