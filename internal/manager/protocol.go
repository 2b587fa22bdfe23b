package manager

import (
	"sync"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
)

// Entity is something a manager keeps by name.
type Entity interface {
	comparable
	Name() string
}

// Protocol derives the discovery topics of one manager kind. The topics of a
// chart live until the chart is destroyed; after that every topic of the
// chart is the zero topic, so Add, Remove, Lookup and Watch do nothing.
type Protocol[M any, E Entity] struct {
	kind   string
	topics *event.TopicRegistry

	mu      sync.Mutex
	tracked map[chart.Source]*event.Subscription
}

// NewProtocol creates the protocol for a manager kind such as "axes".
func NewProtocol[M any, E Entity](kind string) *Protocol[M, E] {
	return &Protocol[M, E]{
		kind:    kind,
		topics:  event.NewTopicRegistry(kind),
		tracked: make(map[chart.Source]*event.Subscription),
	}
}

// Kind returns the manager kind.
func (p *Protocol[M, E]) Kind() string {
	return p.kind
}

// chartTopic returns the (c, name) topic, arranging for the chart's keys to
// be released when c is destroyed.
func chartTopic[T any, M any, E Entity](p *Protocol[M, E], c chart.Source, name string) event.Topic[T] {
	if c == nil || c.IsDestroyed() {
		return event.Topic[T]{}
	}
	p.track(c)
	return event.Dynamic[T](p.topics, c, name)
}

func (p *Protocol[M, E]) track(c chart.Source) {
	p.mu.Lock()
	_, ok := p.tracked[c]
	p.mu.Unlock()
	if ok {
		return
	}

	sub := event.On(c.Bus(), chart.DestroyedTopic(c), func(*chart.Chart) {
		p.release(c)
	})
	p.mu.Lock()
	p.tracked[c] = sub
	p.mu.Unlock()
}

func (p *Protocol[M, E]) release(c chart.Source) {
	p.mu.Lock()
	sub, ok := p.tracked[c]
	delete(p.tracked, c)
	p.mu.Unlock()
	if ok {
		c.Bus().Off(sub)
	}
	p.topics.Release(c)
}

// AddTopic is the topic entities are announced on.
func (p *Protocol[M, E]) AddTopic(c chart.Source) event.Topic[E] {
	return chartTopic[E](p, c, "add")
}

// RemoveTopic is the topic entities are withdrawn on.
func (p *Protocol[M, E]) RemoveTopic(c chart.Source) event.Topic[E] {
	return chartTopic[E](p, c, "remove")
}

// GetTopic is the request topic answered by the chart's manager.
func (p *Protocol[M, E]) GetTopic(c chart.Source) event.Topic[func(M)] {
	return chartTopic[func(M)](p, c, "get")
}

// ChangedTopic carries the chart's manager when it appears and the zero
// value when it goes away.
func (p *Protocol[M, E]) ChangedTopic(c chart.Source) event.Topic[M] {
	return chartTopic[M](p, c, "changed")
}

// Add announces e to the chart's manager, if there is one.
func (p *Protocol[M, E]) Add(c chart.Source, e E) {
	event.Emit(c.Bus(), p.AddTopic(c), e)
}

// Remove withdraws e from the chart's manager.
func (p *Protocol[M, E]) Remove(c chart.Source, e E) {
	event.Emit(c.Bus(), p.RemoveTopic(c), e)
}

// Lookup asks the chart for its manager. With no manager it returns the zero
// value and false.
func (p *Protocol[M, E]) Lookup(c chart.Source) (M, bool) {
	var (
		found M
		ok    bool
	)
	event.Emit(c.Bus(), p.GetTopic(c), func(m M) {
		if !ok {
			found, ok = m, true
		}
	})
	return found, ok
}

// Watch calls fn with the chart's manager now, if it exists, and on every
// later change (with the zero value when the manager is destroyed). The
// returned subscription stops the watch; it is nil for a destroyed chart.
func (p *Protocol[M, E]) Watch(c chart.Source, fn func(M)) *event.Subscription {
	sub := event.On(c.Bus(), p.ChangedTopic(c), fn)
	if m, ok := p.Lookup(c); ok {
		fn(m)
	}
	return sub
}
