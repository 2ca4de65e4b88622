package colorgate

import "go.uber.org/zap"

// Option configures a Controller.
type Option func(*Controller)

// WithLogger makes the controller report queueing decisions at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithInvariantChecks verifies the controller state after every mutation
// and panics on the first inconsistency.
func WithInvariantChecks() Option {
	return func(c *Controller) {
		c.checks = true
	}
}
