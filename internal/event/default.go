package event

import "sync"

var defaultBus struct {
	mu       sync.Mutex
	provider func() *Bus
	bus      *Bus
}

// SetDefaultProvider installs the function that creates the process-wide bus.
// It must be called at startup, before the first call to Default.
func SetDefaultProvider(fn func() *Bus) error {
	defaultBus.mu.Lock()
	defer defaultBus.mu.Unlock()

	if defaultBus.bus != nil {
		return ErrDefaultBusFrozen
	}
	defaultBus.provider = fn
	return nil
}

// Default returns the process-wide bus, creating it on first use. The bus is
// never re-created.
func Default() *Bus {
	defaultBus.mu.Lock()
	defer defaultBus.mu.Unlock()

	if defaultBus.bus == nil {
		if defaultBus.provider != nil {
			defaultBus.bus = defaultBus.provider()
		}
		if defaultBus.bus == nil {
			defaultBus.bus = NewBus(WithName("default"))
		}
	}
	return defaultBus.bus
}
