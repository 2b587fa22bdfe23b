// Package tool provides chart interaction tools and the Toolbox that keeps
// their activation state, including mutually exclusive groups.
package tool

import (
	"github.com/dshills/chartkit/internal/chart"
)

// Tool is an interaction that can be attached to charts while active.
type Tool interface {
	Name() string
	AddToChart(c chart.Source)
	RemoveFromChart(c chart.Source)
}

// Base is an embeddable Tool that tracks the charts it is attached to.
// Attaching twice or detaching an unknown chart is a no-op.
type Base struct {
	name   string
	charts []chart.Source

	// OnAttach and OnDetach run after the attachment set changed.
	OnAttach func(c chart.Source)
	OnDetach func(c chart.Source)
}

// NewBase creates a tool with the given name.
func NewBase(name string) *Base {
	return &Base{name: name}
}

// Name returns the tool name.
func (b *Base) Name() string { return b.name }

// Charts returns the charts the tool is attached to.
func (b *Base) Charts() []chart.Source {
	return append([]chart.Source(nil), b.charts...)
}

// IsAttached reports whether the tool is attached to c.
func (b *Base) IsAttached(c chart.Source) bool {
	return b.index(c) >= 0
}

func (b *Base) index(c chart.Source) int {
	for i, e := range b.charts {
		if e == c {
			return i
		}
	}
	return -1
}

// AddToChart attaches the tool to c.
func (b *Base) AddToChart(c chart.Source) {
	if c == nil || b.IsAttached(c) {
		return
	}
	b.charts = append(b.charts, c)
	if b.OnAttach != nil {
		b.OnAttach(c)
	}
}

// RemoveFromChart detaches the tool from c.
func (b *Base) RemoveFromChart(c chart.Source) {
	i := b.index(c)
	if i < 0 {
		return
	}
	b.charts = append(b.charts[:i:i], b.charts[i+1:]...)
	if b.OnDetach != nil {
		b.OnDetach(c)
	}
}
