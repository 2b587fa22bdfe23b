package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/errs"
)

// Config is a complete scene configuration.
type Config struct {
	Log     LogConfig      `yaml:"log"`
	Render  RenderConfig   `yaml:"render"`
	Toolbox ToolboxConfig  `yaml:"toolbox"`
	Charts  []ChartConfig  `yaml:"charts"`
	Axes    []AxisConfig   `yaml:"axes"`
	Series  []SeriesConfig `yaml:"series"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "console" or "json".
	Format string `yaml:"format"`
}

// RenderConfig configures the frame driver.
type RenderConfig struct {
	MaxFrames     int           `yaml:"max_frames"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// ToolboxConfig lists the tools of the shared toolbox.
type ToolboxConfig struct {
	Tools  []string   `yaml:"tools"`
	Groups [][]string `yaml:"groups"`
	Active []string   `yaml:"active"`
}

// ChartConfig describes one chart.
type ChartConfig struct {
	Name   string       `yaml:"name"`
	Width  float64      `yaml:"width"`
	Height float64      `yaml:"height"`
	Margin chart.Margin `yaml:"margin"`
}

// AxisConfig describes one axis of a chart. Domain, when set, is a fixed
// [min, max] and the axis is not driven by AutoDomain.
type AxisConfig struct {
	Name        string    `yaml:"name"`
	Orientation string    `yaml:"orientation"`
	Chart       string    `yaml:"chart"`
	Domain      []float64 `yaml:"domain"`
}

// SeriesConfig describes one series and the axes it is drawn against.
type SeriesConfig struct {
	Name   string      `yaml:"name"`
	Chart  string      `yaml:"chart"`
	XAxis  string      `yaml:"x_axis"`
	YAxis  string      `yaml:"y_axis"`
	Points [][]float64 `yaml:"points"`
}

// Defaults.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultMaxFrames     = 1
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultChartWidth    = 640
	DefaultChartHeight   = 480
)

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Render.MaxFrames <= 0 {
		c.Render.MaxFrames = DefaultMaxFrames
	}
	if c.Render.FrameInterval <= 0 {
		c.Render.FrameInterval = DefaultFrameInterval
	}
	for i := range c.Charts {
		if c.Charts[i].Width <= 0 {
			c.Charts[i].Width = DefaultChartWidth
		}
		if c.Charts[i].Height <= 0 {
			c.Charts[i].Height = DefaultChartHeight
		}
	}
}

// Chart returns the chart configuration with the given name.
func (c *Config) Chart(name string) (ChartConfig, bool) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, true
		}
	}
	return ChartConfig{}, false
}

// Validate checks cross references between charts, axes, series and tools.
// Every problem is a configuration error.
func (c *Config) Validate() error {
	charts := make(map[string]bool, len(c.Charts))
	for _, ch := range c.Charts {
		if ch.Name == "" {
			return errs.Configuration("validate", "charts", errors.Wrap(errs.ErrInvalid, "chart without name"))
		}
		if charts[ch.Name] {
			return errs.Configuration("validate", "chart "+ch.Name, errs.ErrDuplicate)
		}
		charts[ch.Name] = true
	}

	axes := make(map[string]string)
	for _, a := range c.Axes {
		if !charts[a.Chart] {
			return errs.Configuration("validate", "axis "+a.Name, errors.Wrapf(errs.ErrUnknown, "chart %q", a.Chart))
		}
		switch a.Orientation {
		case "x", "y":
		default:
			return errs.Configuration("validate", "axis "+a.Name, errors.Wrapf(errs.ErrInvalid, "orientation %q", a.Orientation))
		}
		if len(a.Domain) != 0 && len(a.Domain) != 2 {
			return errs.Configuration("validate", "axis "+a.Name, errors.Wrap(errs.ErrInvalid, "domain needs two values"))
		}
		key := a.Chart + "/" + a.Name
		if _, dup := axes[key]; dup {
			return errs.Configuration("validate", "axis "+a.Name, errs.ErrDuplicate)
		}
		axes[key] = a.Orientation
	}

	for _, s := range c.Series {
		if !charts[s.Chart] {
			return errs.Configuration("validate", "series "+s.Name, errors.Wrapf(errs.ErrUnknown, "chart %q", s.Chart))
		}
		for _, ref := range []struct{ name, orientation string }{{s.XAxis, "x"}, {s.YAxis, "y"}} {
			if ref.name == "" {
				continue
			}
			if o, ok := axes[s.Chart+"/"+ref.name]; !ok || o != ref.orientation {
				return errs.Configuration("validate", "series "+s.Name, errors.Wrapf(errs.ErrUnknown, "%s axis %q", ref.orientation, ref.name))
			}
		}
	}

	tools := make(map[string]bool, len(c.Toolbox.Tools))
	for _, t := range c.Toolbox.Tools {
		if tools[t] {
			return errs.Configuration("validate", "tool "+t, errs.ErrDuplicate)
		}
		tools[t] = true
	}
	for _, t := range c.Toolbox.Active {
		if !tools[t] {
			return errs.Configuration("validate", "active tool "+t, errs.ErrUnknown)
		}
	}
	return nil
}
