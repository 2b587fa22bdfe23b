package event

// EndpointAdded is emitted on a bus when an endpoint with an owner attaches
// to it, so existing subscribers can replay state to the newcomer.
var EndpointAdded = NewTopic[any]("endpoint.added")

// Listener is one declared (topic, handler) pair of an Endpoint.
type Listener interface {
	subscribe(b *Bus) *Subscription
}

type listener[T any] struct {
	topic Topic[T]
	fn    func(T)
}

func (l listener[T]) subscribe(b *Bus) *Subscription {
	return On(b, l.topic, l.fn)
}

// Listen declares a listener for use with NewEndpoint.
func Listen[T any](t Topic[T], fn func(T)) Listener {
	return listener[T]{topic: t, fn: fn}
}

// Hooks are called around bus reassignment. Any field may be nil.
type Hooks struct {
	BeforeAdd    func(b *Bus)
	AfterAdd     func(b *Bus)
	BeforeRemove func(b *Bus)
	AfterRemove  func(b *Bus)
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) EndpointOption {
	return func(e *Endpoint) {
		e.hooks = h
	}
}

// WithOwner sets the object announced through EndpointAdded.
func WithOwner(owner any) EndpointOption {
	return func(e *Endpoint) {
		e.owner = owner
	}
}

// Endpoint binds a fixed listener set to a swappable bus. The listeners
// registered on the current bus are always exactly the declared set.
type Endpoint struct {
	listeners []Listener
	hooks     Hooks
	owner     any
	bus       *Bus
	subs      []*Subscription
}

// NewEndpoint creates a detached endpoint.
func NewEndpoint(listeners []Listener, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{
		listeners: append([]Listener(nil), listeners...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bus returns the current bus, or nil when detached.
func (e *Endpoint) Bus() *Bus {
	return e.bus
}

// Owner returns the owner set with WithOwner.
func (e *Endpoint) Owner() any {
	return e.owner
}

// SetBus moves every declared listener from the current bus to b. A nil b
// detaches the endpoint. Setting the current bus again is a no-op.
func (e *Endpoint) SetBus(b *Bus) {
	if b == e.bus {
		return
	}

	if old := e.bus; old != nil {
		if e.hooks.BeforeRemove != nil {
			e.hooks.BeforeRemove(old)
		}
		old.OffAll(e.subs...)
		e.subs = nil
		e.bus = nil
		if e.hooks.AfterRemove != nil {
			e.hooks.AfterRemove(old)
		}
	}

	if b == nil {
		return
	}

	if e.hooks.BeforeAdd != nil {
		e.hooks.BeforeAdd(b)
	}
	subs := make([]*Subscription, 0, len(e.listeners))
	for _, l := range e.listeners {
		if sub := l.subscribe(b); sub != nil {
			subs = append(subs, sub)
		}
	}
	e.subs = subs
	e.bus = b
	if e.owner != nil {
		Emit(b, EndpointAdded, e.owner)
	}
	if e.hooks.AfterAdd != nil {
		e.hooks.AfterAdd(b)
	}
}

// Close detaches the endpoint from its bus.
func (e *Endpoint) Close() {
	e.SetBus(nil)
}
