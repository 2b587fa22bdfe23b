package event

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/chartkit/internal/event/topic"
)

// Subscription is the handle returned by On and OnAny. Passing it to Bus.Off
// is the only way to remove the handler.
type Subscription struct {
	id        string
	key       *topic.Key
	bus       *Bus
	handle    func(payload any)
	handleAny func(env *Envelope)
	cancelled atomic.Bool
}

func newSubscription(b *Bus, key *topic.Key) *Subscription {
	return &Subscription{
		id:  uuid.NewString(),
		key: key,
		bus: b,
	}
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed key, or nil for a wildcard subscription.
func (s *Subscription) Topic() *topic.Key {
	return s.key
}

// Bus returns the bus the subscription was registered on.
func (s *Subscription) Bus() *Bus {
	return s.bus
}

// IsActive returns true until the subscription is removed.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// IsWildcard reports whether the subscription receives every topic.
func (s *Subscription) IsWildcard() bool {
	return s.handleAny != nil
}

func (s *Subscription) deliver(env *Envelope) {
	if s.handleAny != nil {
		s.handleAny(env)
		return
	}
	s.handle(env.Payload)
}
