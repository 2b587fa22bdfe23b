// Package plot assembles charts, their managers, series renderers, the
// shared toolbox and AutoDomain from a scene configuration and drives the
// render cycle.
package plot

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/config"
	"github.com/dshills/chartkit/internal/domain"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/series"
)

// RenderHook receives the points of every line render.
type RenderHook func(p *Plot, l *series.Line, points []series.Point)

// Deps are the scene-wide collaborators a Plot uses.
type Deps struct {
	Bus        *event.Bus
	AutoDomain *domain.AutoDomain
	Listeners  *series.AxisListeners
	OnRender   RenderHook
}

// Plot is one chart with its axis and series-renderer managers.
type Plot struct {
	chart     *chart.Chart
	axes      *axis.Manager
	renderers *series.Manager
	deps      Deps

	fixed  map[*axis.Axis]bool
	series []*series.Series
	lines  []*series.Line
	log    zerolog.Logger
}

// New creates the chart described by cfg and its managers.
func New(cfg config.ChartConfig, deps Deps) *Plot {
	if deps.Bus == nil {
		deps.Bus = event.Default()
	}
	if deps.AutoDomain == nil {
		deps.AutoDomain = domain.New()
	}
	if deps.Listeners == nil {
		deps.Listeners = series.NewAxisListeners()
	}

	c := chart.New(
		chart.WithBus(deps.Bus),
		chart.WithName(cfg.Name),
		chart.WithSize(chart.Size{Width: cfg.Width, Height: cfg.Height}),
		chart.WithMargin(cfg.Margin),
	)
	return &Plot{
		chart:     c,
		axes:      axis.NewManager(c),
		renderers: series.NewManager(c),
		deps:      deps,
		fixed:     make(map[*axis.Axis]bool),
		log:       log.With().Str("component", "plot").Str("chart", cfg.Name).Logger(),
	}
}

// Chart returns the plot's chart.
func (p *Plot) Chart() *chart.Chart { return p.chart }

// Name returns the chart name.
func (p *Plot) Name() string { return p.chart.Name() }

// Axes returns the axis manager.
func (p *Plot) Axes() *axis.Manager { return p.axes }

// Renderers returns the series-renderer manager.
func (p *Plot) Renderers() *series.Manager { return p.renderers }

// Series returns the plot's series in creation order.
func (p *Plot) Series() []*series.Series { return p.series }

// Lines returns the plot's line renderers in creation order.
func (p *Plot) Lines() []*series.Line { return p.lines }

// AddAxis creates an axis. An axis with a configured domain is fixed and is
// never linked to AutoDomain.
func (p *Plot) AddAxis(cfg config.AxisConfig) (*axis.Axis, error) {
	o, err := axis.ParseOrientation(cfg.Orientation)
	if err != nil {
		return nil, err
	}
	opts := []axis.Option{axis.WithChart(p.chart)}
	if len(cfg.Domain) == 2 {
		opts = append(opts, axis.WithDomain(cfg.Domain[0], cfg.Domain[1]))
	}
	a := axis.New(cfg.Name, o, opts...)
	if len(cfg.Domain) == 2 {
		p.fixed[a] = true
	}
	p.log.Debug().Str("axis", cfg.Name).Stringer("orientation", o).Msg("axis added")
	return a, nil
}

// AddSeries creates a series with a line renderer against the configured
// axes and links it to AutoDomain for every axis that is not fixed.
func (p *Plot) AddSeries(cfg config.SeriesConfig) (*series.Series, error) {
	x, err := p.findAxis(cfg.XAxis, axis.X)
	if err != nil {
		return nil, errors.Wrapf(err, "series %s", cfg.Name)
	}
	y, err := p.findAxis(cfg.YAxis, axis.Y)
	if err != nil {
		return nil, errors.Wrapf(err, "series %s", cfg.Name)
	}

	s := series.New(cfg.Name, series.WithBus(p.chart.Bus()), series.WithData(cfg.Points))
	var hook func(*series.Line, []series.Point)
	if p.deps.OnRender != nil {
		hook = func(l *series.Line, pts []series.Point) { p.deps.OnRender(p, l, pts) }
	}
	l := series.NewLine(series.LineOptions{
		Chart:     p.chart,
		Series:    s,
		X:         x,
		Y:         y,
		Listeners: p.deps.Listeners,
		OnRender:  hook,
	})

	p.deps.AutoDomain.LinkSeries(s, []domain.AxisDomain{p.autoDomain(x), p.autoDomain(y)})
	p.series = append(p.series, s)
	p.lines = append(p.lines, l)
	p.log.Debug().Str("series", cfg.Name).Int("rows", s.Len()).Msg("series added")
	return s, nil
}

func (p *Plot) findAxis(name string, o axis.Orientation) (*axis.Axis, error) {
	if name == "" {
		return nil, nil
	}
	var a *axis.Axis
	if o == axis.X {
		a = p.axes.XAxis(name)
	} else {
		a = p.axes.YAxis(name)
	}
	if a == nil {
		return nil, errs.Configuration("find axis", o.String()+" "+name, errs.ErrUnknown)
	}
	return a, nil
}

// autoDomain returns a as a link target, or nil when a is missing or fixed.
// A typed nil must not reach AutoDomain as a non-nil interface.
func (p *Plot) autoDomain(a *axis.Axis) domain.AxisDomain {
	if a == nil || p.fixed[a] {
		return nil
	}
	return a
}

// Destroy destroys the series, the axes and the chart, which takes the
// managers down with it.
func (p *Plot) Destroy() {
	for _, s := range p.series {
		s.Destroy()
	}
	p.series, p.lines = nil, nil
	for _, a := range p.axes.Axes() {
		a.Destroy()
	}
	p.fixed = make(map[*axis.Axis]bool)
	p.chart.Destroy()
}
