package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/errs"
)

const sceneYAML = `
log:
  level: debug
render:
  max_frames: 3
  frame_interval: 20ms
toolbox:
  tools: [pan, zoom]
  groups: [[pan, zoom]]
  active: [pan]
charts:
  - name: main
    width: 100
    margin: {top: 5, left: 10}
axes:
  - {name: x, orientation: x, chart: main}
  - {name: y, orientation: y, chart: main, domain: [0, 10]}
series:
  - name: temp
    chart: main
    x_axis: x
    y_axis: y
    points: [[0, 1], [1, 3]]
`

const sceneTOML = `
[log]
format = "json"

[render]
frame_interval = "5ms"

[[charts]]
name = "main"
height = 200

[[axes]]
name = "x"
orientation = "x"
chart = "main"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, doc, err := Load(writeFile(t, "scene.yaml", sceneYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 3, cfg.Render.MaxFrames)
	assert.Equal(t, 20*time.Millisecond, cfg.Render.FrameInterval)
	assert.Equal(t, [][]string{{"pan", "zoom"}}, cfg.Toolbox.Groups)

	require.Len(t, cfg.Charts, 1)
	assert.Equal(t, 100.0, cfg.Charts[0].Width)
	assert.Equal(t, float64(DefaultChartHeight), cfg.Charts[0].Height)
	assert.Equal(t, chart.Margin{Top: 5, Left: 10}, cfg.Charts[0].Margin)

	assert.Equal(t, []float64{0, 10}, cfg.Axes[1].Domain)
	assert.Equal(t, [][]float64{{0, 1}, {1, 3}}, cfg.Series[0].Points)

	v, ok := GetByPath(doc, "log.level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestLoad_TOML(t *testing.T) {
	cfg, _, err := Load(writeFile(t, "scene.toml", sceneTOML))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Millisecond, cfg.Render.FrameInterval)
	assert.Equal(t, DefaultMaxFrames, cfg.Render.MaxFrames)
	assert.Equal(t, 200.0, cfg.Charts[0].Height)
	assert.Equal(t, "x", cfg.Axes[0].Orientation)
}

func TestLoad_JSON(t *testing.T) {
	cfg, _, err := Load(writeFile(t, "scene.json", `{"charts": [{"name": "a"}]}`))
	require.NoError(t, err)
	ch, ok := cfg.Chart("a")
	require.True(t, ok)
	assert.Equal(t, float64(DefaultChartWidth), ch.Width)

	_, ok = cfg.Chart("b")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(writeFile(t, "scene.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config extension")

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, _, err = Load(writeFile(t, "bad.yaml", "log: [unclosed"))
	assert.ErrorContains(t, err, "parse yaml")

	_, _, err = Load(writeFile(t, "bad.yaml", "axes: [{name: x, orientation: z, chart: main}]\ncharts: [{name: main}]"))
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"LOG_LEVEL", "warn")
	t.Setenv(EnvPrefix+"RENDER_MAX_FRAMES", "7")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Render.MaxFrames)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvPrefix + "LOG_FORMAT":            "json",
		EnvPrefix + "RENDER_FRAME_INTERVAL": "1s",
		"OTHER":                             "ignored",
	}
	doc := EnvOverrides(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, Document{
		"log":    map[string]any{"format": "json"},
		"render": map[string]any{"frame_interval": "1s"},
	}, doc)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Charts: []ChartConfig{{Name: "main"}},
			Axes: []AxisConfig{
				{Name: "x", Orientation: "x", Chart: "main"},
				{Name: "y", Orientation: "y", Chart: "main"},
			},
			Series:  []SeriesConfig{{Name: "s", Chart: "main", XAxis: "x", YAxis: "y"}},
			Toolbox: ToolboxConfig{Tools: []string{"pan"}, Active: []string{"pan"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"unnamed chart", func(c *Config) { c.Charts = append(c.Charts, ChartConfig{}) }, errs.ErrInvalid},
		{"duplicate chart", func(c *Config) { c.Charts = append(c.Charts, ChartConfig{Name: "main"}) }, errs.ErrDuplicate},
		{"axis on unknown chart", func(c *Config) { c.Axes[0].Chart = "nope" }, errs.ErrUnknown},
		{"bad orientation", func(c *Config) { c.Axes[0].Orientation = "z" }, errs.ErrInvalid},
		{"bad domain", func(c *Config) { c.Axes[0].Domain = []float64{1} }, errs.ErrInvalid},
		{"duplicate axis", func(c *Config) { c.Axes[1].Name = "x"; c.Axes[1].Orientation = "x" }, errs.ErrDuplicate},
		{"series on unknown chart", func(c *Config) { c.Series[0].Chart = "nope" }, errs.ErrUnknown},
		{"series with wrong axis", func(c *Config) { c.Series[0].XAxis = "y" }, errs.ErrUnknown},
		{"duplicate tool", func(c *Config) { c.Toolbox.Tools = append(c.Toolbox.Tools, "pan") }, errs.ErrDuplicate},
		{"unknown active tool", func(c *Config) { c.Toolbox.Active = []string{"zoom"} }, errs.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsConfiguration(err))
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultFrameInterval, cfg.Render.FrameInterval)
	assert.NoError(t, cfg.Validate())
}
