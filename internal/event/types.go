package event

import (
	"fmt"

	"github.com/dshills/chartkit/internal/event/topic"
)

// Topic is a typed handle on a topic key. The zero Topic is invalid.
type Topic[T any] struct {
	key *topic.Key
}

// NewTopic declares a new static topic. It panics with ErrInvalidTopic if
// name has an empty segment or a wildcard; patterns belong to WithTopics.
func NewTopic[T any](name topic.Topic) Topic[T] {
	return Topic[T]{key: topic.NewKey(checkName(name))}
}

func checkName(name topic.Topic) topic.Topic {
	if !name.IsValid() || name.IsWildcard() {
		panic(fmt.Errorf("%w: %q", ErrInvalidTopic, name))
	}
	return name
}

// Key returns the opaque key identifying the topic.
func (t Topic[T]) Key() *topic.Key {
	return t.key
}

// Name returns the topic name.
func (t Topic[T]) Name() topic.Topic {
	return t.key.Name()
}

// IsZero reports whether the topic was never initialized.
func (t Topic[T]) IsZero() bool {
	return t.key == nil
}

// Observer receives bus activity, typically for metrics.
type Observer interface {
	ObserveEmit(name topic.Topic, handlers int)
}

// PanicHandler is called with a recovered handler panic.
type PanicHandler func(err *PanicError)

// Stats contains event bus statistics.
type Stats struct {
	// Emitted is the number of envelopes dispatched.
	Emitted uint64

	// HandlerCalls is the number of handler invocations.
	HandlerCalls uint64

	// Panics is the number of recovered handler panics.
	Panics uint64

	// Subscriptions is the current number of registered handlers.
	Subscriptions int
}
