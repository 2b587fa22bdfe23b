package axis

import (
	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/manager"
)

// Protocol is the discovery protocol of axis managers.
var Protocol = manager.NewProtocol[*Manager, *Axis]("axes")

// Manager keeps a chart's axes by name.
type Manager struct {
	*manager.Core[*Manager, *Axis]
}

// NewManager creates and announces the axis manager of c.
func NewManager(c chart.Source) *Manager {
	m := &Manager{}
	m.Core = manager.NewCore(Protocol, c, m)
	m.Start()
	return m
}

// Lookup returns the axis manager of c, if any.
func Lookup(c chart.Source) (*Manager, bool) {
	return Protocol.Lookup(c)
}

// Watch calls fn with the axis manager of c now and whenever it changes.
func Watch(c chart.Source, fn func(*Manager)) *event.Subscription {
	return Protocol.Watch(c, fn)
}

// Axes returns every axis in registration order.
func (m *Manager) Axes() []*Axis {
	return m.Entities()
}

// XAxes returns the horizontal axes.
func (m *Manager) XAxes() []*Axis {
	return m.byOrientation(X)
}

// YAxes returns the vertical axes.
func (m *Manager) YAxes() []*Axis {
	return m.byOrientation(Y)
}

func (m *Manager) byOrientation(o Orientation) []*Axis {
	var out []*Axis
	for _, a := range m.Entities() {
		if a.orientation == o {
			out = append(out, a)
		}
	}
	return out
}

// XAxis returns the horizontal axis with the given name, or nil.
func (m *Manager) XAxis(name string) *Axis {
	return m.lookup(name, X)
}

// YAxis returns the vertical axis with the given name, or nil.
func (m *Manager) YAxis(name string) *Axis {
	return m.lookup(name, Y)
}

func (m *Manager) lookup(name string, o Orientation) *Axis {
	a, ok := m.Get(name)
	if !ok || a.orientation != o {
		return nil
	}
	return a
}

// AxesChangedTopic carries the full axis list after every change.
func (m *Manager) AxesChangedTopic() event.Topic[[]*Axis] {
	return m.ListChangedTopic()
}
