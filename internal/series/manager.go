package series

import (
	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/manager"
	"github.com/dshills/chartkit/internal/render"
)

// Renderer draws a series into a chart and is registered by name with the
// chart's series-renderer manager.
type Renderer interface {
	Name() string
	render.Renderable
}

// Protocol is the discovery protocol of series-renderer managers.
var Protocol = manager.NewProtocol[*Manager, Renderer]("seriesRenderers")

// Manager keeps a chart's series renderers by name.
type Manager struct {
	*manager.Core[*Manager, Renderer]
}

// NewManager creates and announces the series-renderer manager of c.
func NewManager(c chart.Source) *Manager {
	m := &Manager{}
	m.Core = manager.NewCore(Protocol, c, m)
	m.Start()
	return m
}

// Lookup returns the series-renderer manager of c, if any.
func Lookup(c chart.Source) (*Manager, bool) {
	return Protocol.Lookup(c)
}

// Watch calls fn with the series-renderer manager of c now and whenever it
// changes.
func Watch(c chart.Source, fn func(*Manager)) *event.Subscription {
	return Protocol.Watch(c, fn)
}

// Renderers returns every renderer in registration order.
func (m *Manager) Renderers() []Renderer {
	return m.Entities()
}

// Renderer returns the renderer with the given name, or nil.
func (m *Manager) Renderer(name string) Renderer {
	r, _ := m.Get(name)
	return r
}

// RenderersChangedTopic carries the full renderer list after every change.
func (m *Manager) RenderersChangedTopic() event.Topic[[]Renderer] {
	return m.ListChangedTopic()
}
