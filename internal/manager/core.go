package manager

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
)

// Core is the reusable body of a per-chart manager. Concrete managers embed
// it and pass themselves as self so that get requests answer with the
// concrete type.
type Core[M any, E Entity] struct {
	id       string
	protocol *Protocol[M, E]
	self     M
	chart    chart.Source

	entities map[string]E
	order    []string

	changed   event.Topic[M]
	subs      []*event.Subscription
	started   bool
	destroyed bool
	log       zerolog.Logger
}

// NewCore creates a manager core for c. It does nothing observable until
// Start, so the embedding manager can finish construction first.
func NewCore[M any, E Entity](p *Protocol[M, E], c chart.Source, self M) *Core[M, E] {
	return &Core[M, E]{
		id:       uuid.NewString(),
		protocol: p,
		self:     self,
		chart:    c,
		entities: make(map[string]E),
		log: log.With().
			Str("component", p.kind+".manager").
			Str("chart", c.ID()).
			Logger(),
	}
}

// ID returns the unique manager id.
func (m *Core[M, E]) ID() string { return m.id }

// Chart returns the managed chart.
func (m *Core[M, E]) Chart() chart.Source { return m.chart }

// Protocol returns the discovery protocol.
func (m *Core[M, E]) Protocol() *Protocol[M, E] { return m.protocol }

// ListChangedTopic carries the full entity list after every change. It is
// the zero topic once the manager is destroyed.
func (m *Core[M, E]) ListChangedTopic() event.Topic[[]E] {
	if m.destroyed {
		return event.Topic[[]E]{}
	}
	return event.Dynamic[[]E](m.protocol.topics, m, "listChanged")
}

// Start subscribes to the protocol topics and announces the manager. A core
// started on a destroyed chart is destroyed at once.
func (m *Core[M, E]) Start() {
	if m.started || m.destroyed {
		return
	}
	if m.chart.IsDestroyed() {
		m.destroyed = true
		return
	}
	m.started = true

	bus := m.chart.Bus()
	m.changed = m.protocol.ChangedTopic(m.chart)
	m.subs = []*event.Subscription{
		event.On(bus, m.protocol.AddTopic(m.chart), m.Add),
		event.On(bus, m.protocol.RemoveTopic(m.chart), m.Remove),
		event.On(bus, m.protocol.GetTopic(m.chart), func(reply func(M)) {
			if reply != nil {
				reply(m.self)
			}
		}),
		event.On(bus, chart.DestroyedTopic(m.chart), func(*chart.Chart) {
			m.Destroy()
		}),
	}

	m.log.Info().Str("manager", m.id).Msg("manager started")
	event.Emit(bus, m.changed, m.self)
}

// Add registers e under its name, replacing an entity of the same name, and
// emits the full list. A zero entity is ignored.
func (m *Core[M, E]) Add(e E) {
	var zero E
	if m.destroyed || e == zero {
		return
	}

	name := e.Name()
	if existing, ok := m.entities[name]; ok {
		if existing == e {
			return
		}
		m.log.Debug().Str("name", name).Msg("replacing entity")
	} else {
		m.order = append(m.order, name)
	}
	m.entities[name] = e
	m.emitList()
}

// Remove unregisters e if it is the entity registered under its name.
func (m *Core[M, E]) Remove(e E) {
	var zero E
	if m.destroyed || e == zero {
		return
	}

	name := e.Name()
	if existing, ok := m.entities[name]; !ok || existing != e {
		return
	}
	delete(m.entities, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	m.emitList()
}

func (m *Core[M, E]) emitList() {
	event.Emit(m.chart.Bus(), m.ListChangedTopic(), m.Entities())
}

// Get returns the entity registered under name.
func (m *Core[M, E]) Get(name string) (E, bool) {
	e, ok := m.entities[name]
	return e, ok
}

// Entities returns the registered entities in registration order.
func (m *Core[M, E]) Entities() []E {
	out := make([]E, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.entities[name])
	}
	return out
}

// Len returns the number of registered entities.
func (m *Core[M, E]) Len() int {
	return len(m.entities)
}

// IsDestroyed reports whether Destroy was called.
func (m *Core[M, E]) IsDestroyed() bool {
	return m.destroyed
}

// Destroy unsubscribes from the chart, announces that the chart no longer has
// a manager and releases the manager's own topics. The announcement uses the
// topic captured by Start, which still reaches watchers while the chart
// itself is being destroyed.
func (m *Core[M, E]) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true

	bus := m.chart.Bus()
	bus.OffAll(m.subs...)
	m.subs = nil

	m.log.Info().Str("manager", m.id).Msg("manager destroyed")
	var zero M
	event.Emit(bus, m.changed, zero)
	m.protocol.topics.Release(m)
}
