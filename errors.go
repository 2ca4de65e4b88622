package colorgate

import "github.com/pkg/errors"

var (
	// ErrInvalidColor is returned for colors other than A and B.
	ErrInvalidColor = errors.New("invalid color")
	// ErrClosed is returned by Acquire after Close.
	ErrClosed = errors.New("controller is closed")
	// ErrBusy is returned by Close while callers hold or wait for the resource.
	ErrBusy = errors.New("controller is busy")
)
