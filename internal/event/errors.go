package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrDefaultBusFrozen is returned when the default provider is changed
	// after the default bus was created.
	ErrDefaultBusFrozen = errors.New("default bus already created")

	// ErrInvalidTopic is the panic value of topics declared with an empty
	// segment or a wildcard in their name.
	ErrInvalidTopic = errors.New("invalid topic name")

	// ErrHandlerPanic is matched by PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// PanicError wraps a recovered handler panic.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Topic is the name of the topic being emitted.
	Topic string

	// Value is the value passed to panic().
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %s on topic %s: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
