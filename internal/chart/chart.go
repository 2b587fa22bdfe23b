// Package chart provides the chart object that components attach to: an
// identity, the bus its components talk on, and its size and margins.
package chart

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/event"
)

// Source is anything components can discover managers on.
// A destroyed source no longer takes part in discovery.
type Source interface {
	ID() string
	Bus() *event.Bus
	IsDestroyed() bool
}

// Size is the outer size of a chart in pixels.
type Size struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Margin is the space between the chart edge and its plot area.
type Margin struct {
	Top    float64 `yaml:"top" toml:"top"`
	Right  float64 `yaml:"right" toml:"right"`
	Bottom float64 `yaml:"bottom" toml:"bottom"`
	Left   float64 `yaml:"left" toml:"left"`
}

var topics = event.NewTopicRegistry("chart")

// ResizedTopic is emitted on the chart's bus after Resize or SetMargin.
// It is the zero topic once c is destroyed.
func ResizedTopic(c Source) event.Topic[*Chart] {
	return chartTopic(c, "resized")
}

// DestroyedTopic is emitted on the chart's bus by Destroy. It is the zero
// topic once c is destroyed.
func DestroyedTopic(c Source) event.Topic[*Chart] {
	return chartTopic(c, "destroyed")
}

// chartTopic never creates keys for a destroyed chart: they would outlive
// the Release in Destroy and pin the chart.
func chartTopic(c Source, name string) event.Topic[*Chart] {
	if c.IsDestroyed() {
		return event.Topic[*Chart]{}
	}
	return event.Dynamic[*Chart](topics, c, name)
}

// Option configures a Chart.
type Option func(*Chart)

// WithBus sets the chart's bus. The default is event.Default().
func WithBus(b *event.Bus) Option {
	return func(c *Chart) {
		c.bus = b
	}
}

// WithName sets a human-readable name.
func WithName(name string) Option {
	return func(c *Chart) {
		c.name = name
	}
}

// WithSize sets the initial size.
func WithSize(s Size) Option {
	return func(c *Chart) {
		c.size = s
	}
}

// WithMargin sets the initial margin.
func WithMargin(m Margin) Option {
	return func(c *Chart) {
		c.margin = m
	}
}

// Chart is the shared object that axes, series renderers and tools attach to.
type Chart struct {
	id        string
	name      string
	bus       *event.Bus
	size      Size
	margin    Margin
	destroyed bool
	log       zerolog.Logger
}

// New creates a chart.
func New(opts ...Option) *Chart {
	c := &Chart{id: uuid.NewString()}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = event.Default()
	}
	if c.name == "" {
		c.name = c.id
	}
	c.log = log.With().Str("component", "chart").Str("chart", c.name).Logger()
	return c
}

// ID returns the unique chart id.
func (c *Chart) ID() string { return c.id }

// Name returns the chart name.
func (c *Chart) Name() string { return c.name }

// Bus returns the bus the chart's components communicate on.
func (c *Chart) Bus() *event.Bus { return c.bus }

// Size returns the current size.
func (c *Chart) Size() Size { return c.size }

// Margin returns the current margin.
func (c *Chart) Margin() Margin { return c.margin }

// PlotArea returns the size left inside the margins, never negative.
func (c *Chart) PlotArea() Size {
	w := c.size.Width - c.margin.Left - c.margin.Right
	h := c.size.Height - c.margin.Top - c.margin.Bottom
	return Size{Width: max(w, 0), Height: max(h, 0)}
}

// IsDestroyed reports whether Destroy was called.
func (c *Chart) IsDestroyed() bool { return c.destroyed }

// Resize updates the size and emits ResizedTopic when it changed.
func (c *Chart) Resize(s Size) {
	if c.destroyed || s == c.size {
		return
	}
	c.size = s
	event.Emit(c.bus, ResizedTopic(c), c)
}

// SetMargin updates the margin and emits ResizedTopic when it changed.
func (c *Chart) SetMargin(m Margin) {
	if c.destroyed || m == c.margin {
		return
	}
	c.margin = m
	event.Emit(c.bus, ResizedTopic(c), c)
}

// Destroy emits DestroyedTopic so attached components can tear down, then
// releases the chart's topic keys. Calling it again is a no-op.
func (c *Chart) Destroy() {
	if c.destroyed {
		return
	}
	destroyed := DestroyedTopic(c)
	c.destroyed = true
	c.log.Debug().Msg("destroying")
	event.Emit(c.bus, destroyed, c)
	topics.Release(c)
}
