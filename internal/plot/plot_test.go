package plot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/config"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/series"
	"github.com/dshills/chartkit/internal/tool"
)

func sceneConfig() config.Config {
	cfg := config.Config{
		Toolbox: config.ToolboxConfig{
			Tools:  []string{"pan", "zoom", "select"},
			Groups: [][]string{{"pan", "zoom"}},
			Active: []string{"pan"},
		},
		Charts: []config.ChartConfig{
			{Name: "main", Width: 110, Height: 60},
			{Name: "side"},
		},
		Axes: []config.AxisConfig{
			{Name: "x", Orientation: "x", Chart: "main"},
			{Name: "y", Orientation: "y", Chart: "main"},
			{Name: "x", Orientation: "x", Chart: "side", Domain: []float64{0, 100}},
			{Name: "y", Orientation: "y", Chart: "side"},
		},
		Series: []config.SeriesConfig{
			{Name: "a", Chart: "main", XAxis: "x", YAxis: "y", Points: [][]float64{{0, 1}, {10, 5}}},
			{Name: "b", Chart: "main", XAxis: "x", YAxis: "y", Points: [][]float64{{5, -2}, {6, 3}}},
			{Name: "c", Chart: "side", XAxis: "x", YAxis: "y", Points: [][]float64{{1, 1}}},
		},
	}
	return cfg
}

func domainOf(t *testing.T, a *axis.Axis) axis.Domain {
	t.Helper()
	require.NotNil(t, a)
	d, ok := a.Domain()
	require.True(t, ok, "axis %s has no domain", a.Name())
	return d
}

func TestScene_Build(t *testing.T) {
	s, err := NewScene(sceneConfig())
	require.NoError(t, err)
	defer s.Destroy()

	main := s.Plot("main")
	require.NotNil(t, main)
	assert.Nil(t, s.Plot("missing"))
	assert.Len(t, s.Plots(), 2)
	assert.Len(t, main.Series(), 2)
	assert.Len(t, main.Renderers().Renderers(), 2)

	assert.Equal(t, axis.Domain{Min: 0, Max: 10}, domainOf(t, main.Axes().XAxis("x")))
	assert.Equal(t, axis.Domain{Min: -2, Max: 5}, domainOf(t, main.Axes().YAxis("y")))

	side := s.Plot("side")
	assert.Equal(t, axis.Domain{Min: 0, Max: 100}, domainOf(t, side.Axes().XAxis("x")), "fixed axis is not auto-ranged")

	active, err := s.Toolbox().IsToolActive("pan")
	require.NoError(t, err)
	assert.True(t, active)
	pan, _ := s.Toolbox().GetActiveTool()
	assert.True(t, pan.(*tool.Base).IsAttached(main.Chart()))

	reports := s.Axes()
	require.Len(t, reports, 4)
	assert.Equal(t, "main", reports[0].Chart)
	assert.Equal(t, "side", reports[3].Chart)
	assert.True(t, reports[3].HasDomain)
}

func TestScene_FrameRendersOncePerDirtyRenderer(t *testing.T) {
	var rendered []string
	s, err := NewScene(sceneConfig(), WithRenderHook(func(p *Plot, l *series.Line, _ []series.Point) {
		rendered = append(rendered, p.Name()+"/"+l.Name())
	}))
	require.NoError(t, err)
	defer s.Destroy()

	assert.Equal(t, 3, s.Frame())
	assert.ElementsMatch(t, []string{"main/a", "main/b", "side/c"}, rendered)

	assert.Zero(t, s.Frame(), "nothing dirty")

	main := s.Plot("main")
	main.Series()[0].Append([]float64{20, 50})
	assert.Equal(t, axis.Domain{Min: 0, Max: 20}, domainOf(t, main.Axes().XAxis("x")))
	assert.Equal(t, 2, s.Frame(), "domain change dirties both renderers of the chart")
	assert.Equal(t, uint64(3), s.Frames())
}

func TestScene_ProjectsIntoPlotArea(t *testing.T) {
	s, err := NewScene(sceneConfig())
	require.NoError(t, err)
	defer s.Destroy()
	s.Frame()

	a := s.Plot("main").Lines()[0]
	assert.Equal(t, []series.Point{{X: 0, Y: 60 * (1 - 3.0/7)}, {X: 110, Y: 0}}, a.Points())
}

func TestScene_IsolatedBuses(t *testing.T) {
	s, err := NewScene(sceneConfig(), WithIsolatedBuses())
	require.NoError(t, err)
	defer s.Destroy()

	main := s.Plot("main")
	assert.NotSame(t, s.Bus(), main.Chart().Bus())
	assert.Equal(t, 3, s.Frame(), "dirty marks cross the bridge")

	main.Series()[1].SetData([][]float64{{1, 1}})
	assert.Equal(t, 2, s.Frame())
}

func TestScene_ApplyToolbox(t *testing.T) {
	s, err := NewScene(sceneConfig())
	require.NoError(t, err)
	defer s.Destroy()

	var states []tool.ToolState
	event.On(s.Bus(), tool.StateChangedTopic(s.Toolbox()), func(st tool.ToolState) {
		states = append(states, st)
	})

	require.NoError(t, s.ApplyToolbox(config.ToolboxConfig{Groups: [][]string{{"pan", "zoom"}}, Active: []string{"zoom"}}))
	assert.Equal(t, []tool.ToolState{{Name: "pan", Active: false}, {Name: "zoom", Active: true}}, states)

	states = nil
	require.NoError(t, s.ApplyToolbox(config.ToolboxConfig{Groups: nil, Active: []string{"pan"}}))
	assert.Equal(t, []tool.ToolState{{Name: "pan", Active: true}}, states, "groups were cleared")

	err = s.ApplyToolbox(config.ToolboxConfig{Active: []string{"lasso"}})
	assert.True(t, errs.IsConfiguration(err))
}

func TestScene_InvalidConfig(t *testing.T) {
	cfg := sceneConfig()
	cfg.Series[0].XAxis = "nope"
	_, err := NewScene(cfg)
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestScene_Run(t *testing.T) {
	s, err := NewScene(sceneConfig())
	require.NoError(t, err)
	defer s.Destroy()

	require.NoError(t, s.Run(context.Background(), 3, time.Millisecond))
	assert.Equal(t, uint64(3), s.Frames())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx, 5, time.Hour), context.Canceled)
	assert.Equal(t, uint64(4), s.Frames(), "first frame is immediate")

	assert.NoError(t, s.Run(context.Background(), 0, time.Millisecond))
}

func TestScene_DestroyReleasesSubscriptions(t *testing.T) {
	s, err := NewScene(sceneConfig())
	require.NoError(t, err)
	s.Destroy()

	assert.Zero(t, s.Bus().Stats().Subscriptions)
	assert.Zero(t, s.Frame())
}

func TestPlot_UnknownAxis(t *testing.T) {
	p := New(config.ChartConfig{Name: "solo"}, Deps{Bus: event.NewBus()})
	defer p.Destroy()

	_, err := p.AddAxis(config.AxisConfig{Name: "x", Orientation: "diagonal"})
	assert.True(t, errs.IsConfiguration(err))

	_, err = p.AddSeries(config.SeriesConfig{Name: "s", XAxis: "x"})
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
	assert.Contains(t, err.Error(), "series s")
}
