package plot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/config"
	"github.com/dshills/chartkit/internal/domain"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/event/topic"
	"github.com/dshills/chartkit/internal/render"
	"github.com/dshills/chartkit/internal/series"
	"github.com/dshills/chartkit/internal/tool"
)

// SceneOption configures a Scene.
type SceneOption func(*sceneOptions)

type sceneOptions struct {
	busOpts        []event.BusOption
	renderObserver render.Observer
	onRender       RenderHook
	isolated       bool
}

// WithBusOptions passes options to every bus the scene creates.
func WithBusOptions(opts ...event.BusOption) SceneOption {
	return func(o *sceneOptions) {
		o.busOpts = append(o.busOpts, opts...)
	}
}

// WithRenderObserver sets the render manager observer.
func WithRenderObserver(obs render.Observer) SceneOption {
	return func(o *sceneOptions) {
		o.renderObserver = obs
	}
}

// WithRenderHook receives the points of every line render.
func WithRenderHook(h RenderHook) SceneOption {
	return func(o *sceneOptions) {
		o.onRender = h
	}
}

// WithIsolatedBuses gives every chart its own bus and bridges render topics
// between the chart buses and the scene bus.
func WithIsolatedBuses() SceneOption {
	return func(o *sceneOptions) {
		o.isolated = true
	}
}

// renderTopics are forwarded between isolated chart buses and the scene bus.
var renderTopics = topic.Topic("render.*")

// Scene is every plot of a configuration sharing one render manager,
// toolbox and AutoDomain.
type Scene struct {
	bus        *event.Bus
	render     *render.Manager
	endpoint   *event.Endpoint
	bridge     *event.Bridge
	toolbox    *tool.Toolbox
	autoDomain *domain.AutoDomain
	listeners  *series.AxisListeners
	discovery  *axis.Discovery

	plots  []*Plot
	frames uint64
	log    zerolog.Logger
}

// NewScene builds the scene described by cfg.
func NewScene(cfg config.Config, opts ...SceneOption) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o sceneOptions
	for _, opt := range opts {
		opt(&o)
	}

	var renderOpts []render.Option
	if o.renderObserver != nil {
		renderOpts = append(renderOpts, render.WithObserver(o.renderObserver))
	}
	s := &Scene{
		bus:        event.NewBus(append([]event.BusOption{event.WithName("scene")}, o.busOpts...)...),
		render:     render.NewManager(renderOpts...),
		listeners:  series.NewAxisListeners(),
		log:        log.With().Str("component", "scene").Logger(),
	}
	s.autoDomain = domain.New(domain.WithBus(s.bus))
	s.endpoint = s.render.Attach(s.bus)
	s.toolbox = tool.NewToolbox(tool.WithBus(s.bus))

	var chartBuses []*event.Bus
	for _, cc := range cfg.Charts {
		bus := s.bus
		if o.isolated {
			bus = event.NewBus(append([]event.BusOption{event.WithName(cc.Name)}, o.busOpts...)...)
			chartBuses = append(chartBuses, bus)
		}
		s.plots = append(s.plots, New(cc, Deps{
			Bus:        bus,
			AutoDomain: s.autoDomain,
			Listeners:  s.listeners,
			OnRender:   o.onRender,
		}))
	}
	if o.isolated && len(chartBuses) > 0 {
		s.bridge = event.NewBridge([][]*event.Bus{{s.bus}, chartBuses}, event.WithTopics(renderTopics))
	}

	if err := s.populate(cfg); err != nil {
		s.Destroy()
		return nil, err
	}

	charts := make([]chart.Source, 0, len(s.plots))
	for _, p := range s.plots {
		charts = append(charts, p.Chart())
		s.toolbox.AddToChart(p.Chart())
	}
	s.discovery = axis.NewDiscovery(axis.DiscoveryOptions{All: true, Charts: charts, Bus: s.bus})

	if err := s.ApplyToolbox(cfg.Toolbox); err != nil {
		s.Destroy()
		return nil, err
	}
	s.log.Info().Int("charts", len(s.plots)).Int("series", len(cfg.Series)).Msg("scene built")
	return s, nil
}

func (s *Scene) populate(cfg config.Config) error {
	for _, ac := range cfg.Axes {
		if _, err := s.Plot(ac.Chart).AddAxis(ac); err != nil {
			return errors.Wrapf(err, "chart %s", ac.Chart)
		}
	}
	for _, sc := range cfg.Series {
		if _, err := s.Plot(sc.Chart).AddSeries(sc); err != nil {
			return errors.Wrapf(err, "chart %s", sc.Chart)
		}
	}
	for _, name := range cfg.Toolbox.Tools {
		if err := s.toolbox.AddTool(s.newTool(name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) newTool(name string) tool.Tool {
	t := tool.NewBase(name)
	l := s.log.With().Str("tool", name).Logger()
	t.OnAttach = func(c chart.Source) { l.Debug().Str("chart", c.ID()).Msg("tool attached") }
	t.OnDetach = func(c chart.Source) { l.Debug().Str("chart", c.ID()).Msg("tool detached") }
	return t
}

// ApplyToolbox replaces the exclusive groups and activates the configured
// tools. Tools not listed as active are left as they are.
func (s *Scene) ApplyToolbox(cfg config.ToolboxConfig) error {
	s.toolbox.SetMutuallyExclusiveGroups(cfg.Groups)
	for _, name := range cfg.Active {
		if err := s.toolbox.ActivateTool(name); err != nil {
			return err
		}
	}
	return nil
}

// Bus returns the scene bus.
func (s *Scene) Bus() *event.Bus { return s.bus }

// Render returns the render manager.
func (s *Scene) Render() *render.Manager { return s.render }

// Toolbox returns the shared toolbox.
func (s *Scene) Toolbox() *tool.Toolbox { return s.toolbox }

// AutoDomain returns the shared AutoDomain.
func (s *Scene) AutoDomain() *domain.AutoDomain { return s.autoDomain }

// Discovery returns the discovery following every axis of every chart.
func (s *Scene) Discovery() *axis.Discovery { return s.discovery }

// Plots returns the plots in configuration order.
func (s *Scene) Plots() []*Plot { return s.plots }

// Plot returns the plot of the named chart, or nil.
func (s *Scene) Plot(name string) *Plot {
	for _, p := range s.plots {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Frame emits one frame on the scene bus and returns how many renders the
// attached render manager ran.
func (s *Scene) Frame() int {
	before := s.render.Stats().Rendered
	s.frames++
	event.Emit(s.bus, render.FrameTopic, render.Frame{Seq: s.frames, Time: time.Now()})
	return int(s.render.Stats().Rendered - before)
}

// Frames returns how many frames were emitted.
func (s *Scene) Frames() uint64 { return s.frames }

// Run emits up to n frames, one per interval, until ctx is done. All scene
// work happens on the calling goroutine.
func (s *Scene) Run(ctx context.Context, n int, interval time.Duration) error {
	if n <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Frame()
	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Frame()
		}
	}
	return nil
}

// AxisReport is the state of one axis.
type AxisReport struct {
	Chart       string
	Axis        string
	Orientation axis.Orientation
	Domain      axis.Domain
	HasDomain   bool
}

// Axes reports every discovered axis in chart order.
func (s *Scene) Axes() []AxisReport {
	var out []AxisReport
	for _, a := range s.discovery.GetAxes() {
		r := AxisReport{Axis: a.Name(), Orientation: a.Orientation()}
		if c, ok := a.Chart().(*chart.Chart); ok {
			r.Chart = c.Name()
		}
		r.Domain, r.HasDomain = a.Domain()
		out = append(out, r)
	}
	return out
}

// Destroy tears the scene down.
func (s *Scene) Destroy() {
	if s.discovery != nil {
		s.discovery.Destroy()
	}
	s.toolbox.Destroy()
	s.autoDomain.Destroy()
	for _, p := range s.plots {
		p.Destroy()
	}
	s.plots = nil
	if s.bridge != nil {
		s.bridge.Close()
	}
	s.endpoint.Close()
}
