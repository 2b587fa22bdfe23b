package axis

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
)

// Ref names an axis to follow: either a concrete axis or an axis name that
// is resolved against the discovered managers.
type Ref struct {
	axis *Axis
	name string
}

// ByAxis refers to a concrete axis.
func ByAxis(a *Axis) Ref { return Ref{axis: a} }

// ByName refers to the first axis called name among the discovered managers.
func ByName(name string) Ref { return Ref{name: name} }

// Axis returns the concrete axis, or nil for a name reference.
func (r Ref) Axis() *Axis { return r.axis }

// Name returns the referenced name.
func (r Ref) Name() string {
	if r.axis != nil {
		return r.axis.Name()
	}
	return r.name
}

// DiscoveryOptions configures a Discovery.
type DiscoveryOptions struct {
	// Axes lists the axes to follow, in priority order.
	Axes []Ref

	// Charts are searched for axis managers in order.
	Charts []chart.Source

	// All follows every axis of every discovered manager.
	All bool

	// Bus receives ChangedTopic. Defaults to the first chart's bus, then
	// event.Default().
	Bus *event.Bus
}

var discoveryTopics = event.NewTopicRegistry("axesDiscovery")

// ChangedTopic is emitted whenever the resolved axis set may have changed.
func ChangedTopic(d *Discovery) event.Topic[*Discovery] {
	return discoveryTopic(d, "changed")
}

// DiscoveryDestroyedTopic is emitted once by Destroy, after every
// subscription was removed.
func DiscoveryDestroyedTopic(d *Discovery) event.Topic[*Discovery] {
	return discoveryTopic(d, "destroyed")
}

func discoveryTopic(d *Discovery, name string) event.Topic[*Discovery] {
	if d.destroyed {
		return event.Topic[*Discovery]{}
	}
	return event.Dynamic[*Discovery](discoveryTopics, d, name)
}

type source struct {
	chart   chart.Source
	manager *Manager

	watch     *event.Subscription
	destroyed *event.Subscription
	list      *event.Subscription
}

// Discovery resolves a set of axis references against the axis managers of
// one or more charts and follows changes to them.
type Discovery struct {
	id  string
	bus *event.Bus
	log zerolog.Logger

	explicit []*Axis
	axisSubs map[*Axis]*event.Subscription
	names    []string
	all      bool

	sources   []*source
	destroyed bool
}

// NewDiscovery starts following opts.
func NewDiscovery(opts DiscoveryOptions) *Discovery {
	d := &Discovery{
		id:       uuid.NewString(),
		bus:      opts.Bus,
		axisSubs: make(map[*Axis]*event.Subscription),
		all:      opts.All,
	}
	if d.bus == nil {
		if len(opts.Charts) > 0 {
			d.bus = opts.Charts[0].Bus()
		} else {
			d.bus = event.Default()
		}
	}
	d.log = log.With().Str("component", "axes.discovery").Str("discovery", d.id).Logger()

	for _, ref := range opts.Axes {
		if ref.axis != nil {
			d.followAxis(ref.axis)
		} else if ref.name != "" {
			d.names = append(d.names, ref.name)
		}
	}
	for _, c := range opts.Charts {
		d.followChart(c)
	}
	return d
}

// ID returns the unique discovery id.
func (d *Discovery) ID() string { return d.id }

// Bus returns the bus ChangedTopic is emitted on.
func (d *Discovery) Bus() *event.Bus { return d.bus }

func (d *Discovery) followAxis(a *Axis) {
	if a == nil || a.IsDestroyed() {
		return
	}
	if _, ok := d.axisSubs[a]; ok {
		return
	}
	d.explicit = append(d.explicit, a)
	d.axisSubs[a] = event.On(a.Bus(), DestroyedTopic(a), d.forgetAxis)
}

func (d *Discovery) forgetAxis(a *Axis) {
	sub, ok := d.axisSubs[a]
	if !ok {
		return
	}
	a.Bus().Off(sub)
	delete(d.axisSubs, a)
	for i, e := range d.explicit {
		if e == a {
			d.explicit = append(d.explicit[:i:i], d.explicit[i+1:]...)
			break
		}
	}
	d.notify()
}

func (d *Discovery) followChart(c chart.Source) {
	if c == nil || c.IsDestroyed() {
		return
	}
	for _, s := range d.sources {
		if s.chart.ID() == c.ID() {
			return
		}
	}
	s := &source{chart: c}
	d.sources = append(d.sources, s)
	s.destroyed = event.On(c.Bus(), chart.DestroyedTopic(c), func(*chart.Chart) {
		d.dropSource(s)
	})
	s.watch = Watch(c, func(m *Manager) {
		d.setManager(s, m)
	})
}

func (d *Discovery) setManager(s *source, m *Manager) {
	if s.manager == m {
		return
	}
	if s.list != nil {
		s.chart.Bus().Off(s.list)
		s.list = nil
	}
	s.manager = m
	if m != nil {
		s.list = event.On(s.chart.Bus(), m.AxesChangedTopic(), func([]*Axis) {
			d.notify()
		})
	}
	d.log.Debug().Str("chart", s.chart.ID()).Bool("manager", m != nil).Msg("axis manager changed")
	d.notify()
}

func (d *Discovery) dropSource(s *source) {
	d.unsubscribe(s)
	for i, e := range d.sources {
		if e == s {
			d.sources = append(d.sources[:i:i], d.sources[i+1:]...)
			break
		}
	}
	d.notify()
}

func (d *Discovery) unsubscribe(s *source) {
	s.chart.Bus().OffAll(s.watch, s.destroyed, s.list)
	s.watch, s.destroyed, s.list = nil, nil, nil
	s.manager = nil
}

func (d *Discovery) notify() {
	if d.destroyed {
		return
	}
	event.Emit(d.bus, ChangedTopic(d), d)
}

// Managers returns the discovered axis managers in chart order.
func (d *Discovery) Managers() []*Manager {
	var out []*Manager
	for _, s := range d.sources {
		if s.manager != nil {
			out = append(out, s.manager)
		}
	}
	return out
}

// GetAxes returns the resolved axes of either orientation.
func (d *Discovery) GetAxes() []*Axis {
	return d.resolve(func(*Axis) bool { return true })
}

// GetXAxes returns the resolved horizontal axes.
func (d *Discovery) GetXAxes() []*Axis {
	return d.resolve(func(a *Axis) bool { return a.orientation == X })
}

// GetYAxes returns the resolved vertical axes.
func (d *Discovery) GetYAxes() []*Axis {
	return d.resolve(func(a *Axis) bool { return a.orientation == Y })
}

// resolve lists explicit axes first, then either every managed axis or the
// first axis matching each name, in manager order. No axis appears twice.
func (d *Discovery) resolve(keep func(*Axis) bool) []*Axis {
	var out []*Axis
	seen := make(map[*Axis]struct{})
	add := func(a *Axis) {
		if a == nil || !keep(a) {
			return
		}
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}

	for _, a := range d.explicit {
		add(a)
	}

	managers := d.Managers()
	if d.all {
		for _, m := range managers {
			for _, a := range m.Axes() {
				add(a)
			}
		}
		return out
	}

	for _, name := range d.names {
		for _, m := range managers {
			if a, ok := m.Get(name); ok && keep(a) {
				add(a)
				break
			}
		}
	}
	return out
}

// IsDestroyed reports whether Destroy was called.
func (d *Discovery) IsDestroyed() bool { return d.destroyed }

// Destroy stops following every axis and chart.
func (d *Discovery) Destroy() {
	if d.destroyed {
		return
	}
	destroyed := DiscoveryDestroyedTopic(d)
	d.destroyed = true
	for a, sub := range d.axisSubs {
		a.Bus().Off(sub)
	}
	d.axisSubs = nil
	d.explicit = nil
	for _, s := range d.sources {
		d.unsubscribe(s)
	}
	d.sources = nil
	event.Emit(d.bus, destroyed, d)
	discoveryTopics.Release(d)
}
