// Package axis provides chart axes, the per-chart axis manager and
// AxesDiscovery, which resolves the axes a component should follow.
package axis

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
)

// Orientation tells whether an axis maps the horizontal or vertical dimension.
type Orientation int

const (
	// X is a horizontal axis.
	X Orientation = iota

	// Y is a vertical axis.
	Y
)

// String returns "x" or "y".
func (o Orientation) String() string {
	switch o {
	case X:
		return "x"
	case Y:
		return "y"
	default:
		return "unknown"
	}
}

// ParseOrientation parses "x" or "y" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return X, nil
	case "y":
		return Y, nil
	default:
		return 0, errs.Configuration("parse orientation", s, errs.ErrInvalid)
	}
}

// Domain is the value range assigned to an axis.
type Domain struct {
	Min float64
	Max float64
}

var topics = event.NewTopicRegistry("axis")

// DomainChangedTopic is emitted on the axis bus when SetDomain changes the
// domain. Topics of a destroyed axis are zero topics.
func DomainChangedTopic(a *Axis) event.Topic[*Axis] {
	return axisTopic(a, "domainChanged")
}

// DestroyedTopic is emitted on the axis bus by Destroy.
func DestroyedTopic(a *Axis) event.Topic[*Axis] {
	return axisTopic(a, "destroyed")
}

func axisTopic(a *Axis, name string) event.Topic[*Axis] {
	if a.destroyed {
		return event.Topic[*Axis]{}
	}
	return event.Dynamic[*Axis](topics, a, name)
}

// Option configures an Axis.
type Option func(*Axis)

// WithChart registers the axis with the chart's axis manager and uses the
// chart's bus.
func WithChart(c chart.Source) Option {
	return func(a *Axis) {
		a.chart = c
	}
}

// WithBus sets the bus for an axis that is not attached to a chart.
func WithBus(b *event.Bus) Option {
	return func(a *Axis) {
		a.bus = b
	}
}

// WithDomain sets the initial domain.
func WithDomain(min, max float64) Option {
	return func(a *Axis) {
		a.domain = Domain{Min: min, Max: max}
		a.hasDomain = true
	}
}

// Axis is a named value axis. Scale construction happens elsewhere; the axis
// only owns its domain and announces changes to it.
type Axis struct {
	id          string
	name        string
	orientation Orientation
	chart       chart.Source
	bus         *event.Bus

	domain    Domain
	hasDomain bool
	destroyed bool
}

// New creates an axis. With WithChart the axis is added to that chart's
// axis manager.
func New(name string, o Orientation, opts ...Option) *Axis {
	a := &Axis{
		id:          uuid.NewString(),
		name:        name,
		orientation: o,
	}
	for _, opt := range opts {
		opt(a)
	}
	switch {
	case a.chart != nil:
		a.bus = a.chart.Bus()
	case a.bus == nil:
		a.bus = event.Default()
	}
	if a.chart != nil {
		Protocol.Add(a.chart, a)
	}
	return a
}

// ID returns the unique axis id.
func (a *Axis) ID() string { return a.id }

// Name returns the axis name, unique within its chart.
func (a *Axis) Name() string { return a.name }

// Orientation returns X or Y.
func (a *Axis) Orientation() Orientation { return a.orientation }

// Chart returns the chart the axis belongs to, or nil.
func (a *Axis) Chart() chart.Source { return a.chart }

// Bus returns the bus the axis emits on.
func (a *Axis) Bus() *event.Bus { return a.bus }

// Domain returns the current domain; ok is false until one is assigned.
func (a *Axis) Domain() (d Domain, ok bool) {
	return a.domain, a.hasDomain
}

// SetDomain assigns [min, max], swapping reversed bounds, and emits
// DomainChangedTopic when the domain actually changed.
func (a *Axis) SetDomain(min, max float64) {
	if a.destroyed {
		return
	}
	if min > max {
		min, max = max, min
	}
	d := Domain{Min: min, Max: max}
	if a.hasDomain && d == a.domain {
		return
	}
	a.domain = d
	a.hasDomain = true
	event.Emit(a.bus, DomainChangedTopic(a), a)
}

// IsDestroyed reports whether Destroy was called.
func (a *Axis) IsDestroyed() bool { return a.destroyed }

// Destroy removes the axis from its chart's manager and emits DestroyedTopic.
func (a *Axis) Destroy() {
	if a.destroyed {
		return
	}
	destroyed := DestroyedTopic(a)
	a.destroyed = true
	if a.chart != nil {
		Protocol.Remove(a.chart, a)
	}
	event.Emit(a.bus, destroyed, a)
	topics.Release(a)
}
