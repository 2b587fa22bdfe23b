package event

import "github.com/rs/zerolog"

// BusOption configures an event Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// name identifies the bus in logs.
	name string

	// logger receives debug and warning output.
	logger *zerolog.Logger

	// observer is notified of every emit.
	observer Observer

	// panicHandler, when set, recovers handler panics.
	panicHandler PanicHandler
}

// WithName sets the bus name used in logs.
func WithName(name string) BusOption {
	return func(c *busConfig) {
		c.name = name
	}
}

// WithLogger overrides the logger derived from the global zerolog logger.
func WithLogger(l zerolog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = &l
	}
}

// WithObserver sets an observer notified of every emit.
func WithObserver(o Observer) BusOption {
	return func(c *busConfig) {
		c.observer = o
	}
}

// WithPanicHandler makes the bus recover handler panics and report them to h.
// Without it, a panicking handler unwinds through Emit.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}
