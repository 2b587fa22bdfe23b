package event

import "github.com/dshills/chartkit/internal/event/topic"

// Envelope carries one emitted payload through the bus. Wildcard handlers
// receive the envelope itself so they can inspect the topic and re-dispatch it.
type Envelope struct {
	// Topic is the key the payload was emitted on.
	Topic *topic.Key

	// Payload is the emitted value.
	Payload any

	marks map[any]struct{}
}

// Mark records that owner has seen the envelope. It returns false if owner
// had already marked it.
func (e *Envelope) Mark(owner any) bool {
	if e.marks == nil {
		e.marks = make(map[any]struct{}, 1)
	}
	if _, ok := e.marks[owner]; ok {
		return false
	}
	e.marks[owner] = struct{}{}
	return true
}

// Marked reports whether owner has marked the envelope.
func (e *Envelope) Marked(owner any) bool {
	_, ok := e.marks[owner]
	return ok
}
