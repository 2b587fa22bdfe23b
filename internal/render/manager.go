package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/event"
)

// Target is what a renderable draws into, usually a chart. Targets are used
// as map keys and must be comparable.
type Target any

// Renderable is implemented by anything the manager can redraw. Renderables
// compare their own state to decide how much work a render needs; the
// manager only carries identity. Implementations must be comparable.
type Renderable interface {
	Render(target Target)
}

// RenderFunc adapts a function to Renderable. Because funcs are not
// comparable, use a pointer: render.NewRenderFunc(fn).
type RenderFunc struct {
	fn func(target Target)
}

// NewRenderFunc wraps fn as a Renderable.
func NewRenderFunc(fn func(target Target)) *RenderFunc {
	return &RenderFunc{fn: fn}
}

// Render implements Renderable.
func (f *RenderFunc) Render(target Target) {
	f.fn(target)
}

// DirtyEvent marks Renderable stale for Target.
type DirtyEvent struct {
	Target     Target
	Renderable Renderable
}

// Frame is the payload of FrameTopic.
type Frame struct {
	Seq  uint64
	Time time.Time
}

var (
	// DirtyTopic carries marks to a manager attached to a bus.
	DirtyTopic = event.NewTopic[DirtyEvent]("render.dirty")

	// FrameTopic triggers a flush of a manager attached to a bus.
	FrameTopic = event.NewTopic[Frame]("render.frame")
)

// Observer receives flush activity, typically for metrics.
type Observer interface {
	ObserveFlush(rendered int, d time.Duration)
	ObservePending(pending int)
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver sets the flush observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// Manager accumulates dirty (target, renderable) pairs between flushes.
// MarkDirty is safe to call from any goroutine; Render calls happen on the
// goroutine that calls Flush.
type Manager struct {
	mu      sync.Mutex
	pending map[Target]map[Renderable]struct{}
	count   int

	observer Observer
	log      zerolog.Logger

	flushes  atomic.Uint64
	rendered atomic.Uint64
}

// NewManager creates an empty render manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		pending: make(map[Target]map[Renderable]struct{}),
		log:     log.With().Str("component", "render").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MarkDirty records that r must render into target on the next flush.
// Marking the same pair again before the flush has no further effect.
func (m *Manager) MarkDirty(target Target, r Renderable) {
	if r == nil {
		return
	}

	m.mu.Lock()
	set, ok := m.pending[target]
	if !ok {
		set = make(map[Renderable]struct{})
		m.pending[target] = set
	}
	if _, dup := set[r]; !dup {
		set[r] = struct{}{}
		m.count++
	}
	pending := m.count
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.ObservePending(pending)
	}
}

// IsDirty reports whether the pair is waiting for the next flush.
func (m *Manager) IsDirty(target Target, r Renderable) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[target][r]
	return ok
}

// Pending returns the number of distinct pairs waiting for the next flush.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Flush renders every pending pair once and returns how many renders ran.
// Marks made while flushing are kept for the next flush. There is no
// ordering guarantee between targets or between renderables of one target.
func (m *Manager) Flush() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = make(map[Target]map[Renderable]struct{}, len(batch))
	m.count = 0
	m.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	start := time.Now()
	rendered := 0
	for target, set := range batch {
		for r := range set {
			r.Render(target)
			rendered++
		}
	}
	elapsed := time.Since(start)

	m.flushes.Add(1)
	m.rendered.Add(uint64(rendered))
	m.log.Debug().Int("rendered", rendered).Int("targets", len(batch)).Dur("elapsed", elapsed).Msg("flushed")

	if m.observer != nil {
		m.observer.ObserveFlush(rendered, elapsed)
		m.observer.ObservePending(m.Pending())
	}
	return rendered
}

// Attach returns an endpoint that feeds DirtyTopic into MarkDirty and
// flushes on FrameTopic, already attached to b.
func (m *Manager) Attach(b *event.Bus) *event.Endpoint {
	ep := event.NewEndpoint([]event.Listener{
		event.Listen(DirtyTopic, func(e DirtyEvent) { m.MarkDirty(e.Target, e.Renderable) }),
		event.Listen(FrameTopic, func(Frame) { m.Flush() }),
	})
	ep.SetBus(b)
	return ep
}

// Stats contains render manager statistics.
type Stats struct {
	Flushes  uint64
	Rendered uint64
	Pending  int
}

// Stats returns current statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		Flushes:  m.flushes.Load(),
		Rendered: m.rendered.Load(),
		Pending:  m.Pending(),
	}
}
