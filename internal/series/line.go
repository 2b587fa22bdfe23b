package series

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/render"
)

// Point is a projected row in plot-area pixels.
type Point struct {
	X float64
	Y float64
}

// PlotAreaer is implemented by targets that know their plot area size.
type PlotAreaer interface {
	PlotArea() chart.Size
}

// LineOptions configures a Line.
type LineOptions struct {
	Name   string
	Chart  chart.Source
	Series *Series
	X      *axis.Axis
	Y      *axis.Axis

	// XComponent and YComponent index into each row. Defaults 0 and 1.
	XComponent int
	YComponent int

	// Listeners shares axis subscriptions between renderers. A private table
	// is used when nil.
	Listeners *AxisListeners

	// OnRender, if set, receives the projected points after every render.
	OnRender func(l *Line, points []Point)
}

// Line draws a series as a polyline in the chart's plot area. It registers
// with the chart's series-renderer manager and asks for a redraw when the
// series data or either axis domain changes.
type Line struct {
	opts      LineOptions
	listeners *AxisListeners
	subs      []*event.Subscription
	points    []Point
	renders   int
	destroyed bool
	log       zerolog.Logger
}

// NewLine creates a line renderer and marks it dirty for its chart.
func NewLine(opts LineOptions) *Line {
	if opts.XComponent == 0 && opts.YComponent == 0 {
		opts.YComponent = 1
	}
	if opts.Name == "" && opts.Series != nil {
		opts.Name = opts.Series.Name()
	}
	l := &Line{
		opts:      opts,
		listeners: opts.Listeners,
		log: log.With().
			Str("component", "series.line").
			Str("name", opts.Name).
			Logger(),
	}
	if l.listeners == nil {
		l.listeners = NewAxisListeners()
	}

	if s := opts.Series; s != nil {
		l.subs = append(l.subs,
			event.On(s.Bus(), DataChangedTopic(s), func(*Series) { l.markDirty() }),
			event.On(s.Bus(), DestroyedTopic(s), func(*Series) { l.Destroy() }),
		)
	}
	l.listeners.Acquire(opts.X, opts.Chart, l)
	l.listeners.Acquire(opts.Y, opts.Chart, l)

	if opts.Chart != nil {
		Protocol.Add(opts.Chart, l)
	}
	l.markDirty()
	return l
}

// Name returns the renderer name.
func (l *Line) Name() string { return l.opts.Name }

// Series returns the drawn series.
func (l *Line) Series() *Series { return l.opts.Series }

// Points returns the points of the last render.
func (l *Line) Points() []Point { return l.points }

// Renders returns how many times Render ran.
func (l *Line) Renders() int { return l.renders }

func (l *Line) markDirty() {
	if l.destroyed || l.opts.Chart == nil {
		return
	}
	event.Emit(l.opts.Chart.Bus(), render.DirtyTopic, render.DirtyEvent{Target: l.opts.Chart, Renderable: l})
}

// Render projects the series rows through the axis domains into the target's
// plot area. Rows that are too short or hold NaN are skipped.
func (l *Line) Render(target render.Target) {
	if l.destroyed {
		return
	}
	l.renders++

	area := chart.Size{Width: 1, Height: 1}
	if pa, ok := target.(PlotAreaer); ok {
		area = pa.PlotArea()
	}

	var points []Point
	if s := l.opts.Series; s != nil {
		xd := domainOf(l.opts.X)
		yd := domainOf(l.opts.Y)
		for _, row := range s.Data() {
			if len(row) <= l.opts.XComponent || len(row) <= l.opts.YComponent {
				continue
			}
			x, y := row[l.opts.XComponent], row[l.opts.YComponent]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			points = append(points, Point{
				X: project(x, xd) * area.Width,
				Y: (1 - project(y, yd)) * area.Height,
			})
		}
	}
	l.points = points
	l.log.Debug().Int("points", len(points)).Msg("rendered")

	if l.opts.OnRender != nil {
		l.opts.OnRender(l, points)
	}
}

func domainOf(a *axis.Axis) axis.Domain {
	if a == nil {
		return axis.Domain{Min: 0, Max: 1}
	}
	d, ok := a.Domain()
	if !ok {
		return axis.Domain{Min: 0, Max: 1}
	}
	return d
}

// project maps v into [0, 1] over d. A zero-width domain maps to the middle.
func project(v float64, d axis.Domain) float64 {
	span := d.Max - d.Min
	if span == 0 {
		return 0.5
	}
	return (v - d.Min) / span
}

// IsDestroyed reports whether Destroy was called.
func (l *Line) IsDestroyed() bool { return l.destroyed }

// Destroy unregisters the renderer and drops its subscriptions.
func (l *Line) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	if s := l.opts.Series; s != nil {
		s.Bus().OffAll(l.subs...)
	}
	l.subs = nil
	l.listeners.Release(l.opts.X, l)
	l.listeners.Release(l.opts.Y, l)
	if l.opts.Chart != nil {
		Protocol.Remove(l.opts.Chart, l)
	}
}
