package colorgate

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Color identifies one of the two caller classes sharing the resource.
type Color int

const (
	// Unset is the active color of an idle controller.
	Unset Color = iota
	A
	B
)

// White and Black are the names the classic problem statement uses.
const (
	White = A
	Black = B
)

func (c Color) String() string {
	switch c {
	case Unset:
		return "unset"
	case A:
		return "A"
	case B:
		return "B"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Valid reports whether c may be passed to Acquire and Release.
func (c Color) Valid() bool {
	return c == A || c == B
}

// Opposite returns the other caller class. Unset and invalid colors are
// returned unchanged.
func (c Color) Opposite() Color {
	switch c {
	case A:
		return B
	case B:
		return A
	default:
		return c
	}
}

// ParseColor accepts the names printed by String, case-insensitively, as
// well as "white" and "black".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "white":
		return A, nil
	case "b", "black":
		return B, nil
	default:
		return Unset, errors.Wrapf(ErrInvalidColor, "parse %q", s)
	}
}
