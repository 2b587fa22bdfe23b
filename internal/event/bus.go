package event

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/event/topic"
)

// Bus is a synchronous publish/subscribe registry of topic key → ordered
// handlers. The zero value is not usable; create buses with NewBus.
type Bus struct {
	mu       sync.RWMutex
	subs     map[*topic.Key][]*Subscription
	wildcard []*Subscription

	config busConfig
	log    zerolog.Logger

	emitted      atomic.Uint64
	handlerCalls atomic.Uint64
	panics       atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := busConfig{name: "bus"}
	for _, opt := range opts {
		opt(&config)
	}

	logger := log.Logger
	if config.logger != nil {
		logger = *config.logger
	}

	return &Bus{
		subs:   make(map[*topic.Key][]*Subscription),
		config: config,
		log:    logger.With().Str("component", "bus").Str("bus", config.name).Logger(),
	}
}

// Name returns the bus name.
func (b *Bus) Name() string {
	return b.config.name
}

// On registers fn for topic t and returns the subscription handle.
// A nil bus, nil fn or zero topic returns nil.
func On[T any](b *Bus, t Topic[T], fn func(T)) *Subscription {
	if b == nil || fn == nil || t.IsZero() {
		return nil
	}

	sub := newSubscription(b, t.key)
	sub.handle = func(payload any) {
		v, ok := payload.(T)
		if !ok && payload != nil {
			b.log.Warn().Str("topic", t.key.String()).Msgf("dropping payload of type %T", payload)
			return
		}
		fn(v)
	}
	b.add(sub)
	return sub
}

// OnAny registers fn for every topic emitted on the bus. Wildcard handlers
// run after the topic's own handlers.
func OnAny(b *Bus, fn func(env *Envelope)) *Subscription {
	if b == nil || fn == nil {
		return nil
	}

	sub := newSubscription(b, nil)
	sub.handleAny = fn
	b.add(sub)
	return sub
}

// Emit synchronously delivers payload to every handler currently registered
// for t, in subscription order. Emitting with no listeners is a no-op.
func Emit[T any](b *Bus, t Topic[T], payload T) {
	if b == nil || t.IsZero() {
		return
	}
	b.Dispatch(&Envelope{Topic: t.key, Payload: payload})
}

func (b *Bus) add(sub *Subscription) {
	b.mu.Lock()
	if sub.key == nil {
		b.wildcard = append(b.wildcard, sub)
	} else {
		b.subs[sub.key] = append(b.subs[sub.key], sub)
	}
	b.mu.Unlock()

	b.log.Debug().Str("topic", sub.key.String()).Str("subscription", sub.id).Msg("subscribed")
}

// Off removes a subscription. It is a no-op for nil, already removed, or
// foreign subscriptions.
func (b *Bus) Off(sub *Subscription) {
	if b == nil || sub == nil || sub.bus != b {
		return
	}
	if sub.cancelled.Swap(true) {
		return
	}

	b.mu.Lock()
	if sub.key == nil {
		b.wildcard = removeSub(b.wildcard, sub)
	} else {
		remaining := removeSub(b.subs[sub.key], sub)
		if len(remaining) == 0 {
			delete(b.subs, sub.key)
		} else {
			b.subs[sub.key] = remaining
		}
	}
	b.mu.Unlock()

	b.log.Debug().Str("topic", sub.key.String()).Str("subscription", sub.id).Msg("unsubscribed")
}

// OffAll removes every given subscription.
func (b *Bus) OffAll(subs ...*Subscription) {
	for _, sub := range subs {
		b.Off(sub)
	}
}

// removeSub returns a new slice without sub so that snapshots taken by an
// in-flight Dispatch stay intact.
func removeSub(subs []*Subscription, sub *Subscription) []*Subscription {
	out := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		if s != sub {
			out = append(out, s)
		}
	}
	return out
}

// Dispatch delivers an envelope to the handlers of its topic and then to the
// wildcard handlers. It is used by Emit and by bridges re-emitting an
// envelope they already hold.
func (b *Bus) Dispatch(env *Envelope) {
	if b == nil || env == nil || env.Topic == nil {
		return
	}

	b.mu.RLock()
	exact := b.subs[env.Topic]
	wildcard := b.wildcard
	b.mu.RUnlock()

	b.emitted.Add(1)
	if b.config.observer != nil {
		b.config.observer.ObserveEmit(env.Topic.Name(), len(exact)+len(wildcard))
	}

	for _, sub := range exact {
		b.call(sub, env)
	}
	for _, sub := range wildcard {
		b.call(sub, env)
	}
}

func (b *Bus) call(sub *Subscription, env *Envelope) {
	if sub.cancelled.Load() {
		return
	}
	b.handlerCalls.Add(1)

	if b.config.panicHandler != nil {
		defer func() {
			if r := recover(); r != nil {
				b.panics.Add(1)
				perr := &PanicError{SubscriptionID: sub.id, Topic: env.Topic.Name().String(), Value: r}
				b.log.Warn().Err(perr).Msg("recovered handler panic")
				b.config.panicHandler(perr)
			}
		}()
	}

	sub.deliver(env)
}

// ListenerCount returns the number of handlers registered for key, not
// counting wildcard handlers.
func (b *Bus) ListenerCount(key *topic.Key) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key])
}

// HasListeners reports whether t has at least one handler of its own.
func HasListeners[T any](b *Bus, t Topic[T]) bool {
	return b.ListenerCount(t.key) > 0
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	count := len(b.wildcard)
	for _, subs := range b.subs {
		count += len(subs)
	}
	b.mu.RUnlock()

	return Stats{
		Emitted:       b.emitted.Load(),
		HandlerCalls:  b.handlerCalls.Load(),
		Panics:        b.panics.Load(),
		Subscriptions: count,
	}
}
