package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/chartkit/internal/config"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/logging"
	"github.com/dshills/chartkit/internal/metrics"
	"github.com/dshills/chartkit/internal/plot"
)

type runOptions struct {
	configPath string
	frames     int
	interval   time.Duration
	watch      bool
	isolate    bool
	metrics    bool
	logLevel   string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a scene and render frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.logLevel, _ = cmd.Flags().GetString("log-level")
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runScene(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Scene file (.yaml, .yml, .json, .toml)")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "Frames to render (default: render.max_frames; 0 with --watch runs until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Frame interval (default: render.frame_interval)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the toolbox section when the scene file changes")
	cmd.Flags().BoolVar(&opts.isolate, "isolate", false, "Give every chart its own bus, bridged to the scene bus")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print metrics in the Prometheus text format")
	return cmd
}

func runScene(ctx context.Context, stdout, stderr io.Writer, opts runOptions) error {
	if opts.watch && opts.configPath == "" {
		return errors.New("--watch needs --config")
	}

	cfg, doc, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if _, err := logging.Setup(cfg.Log, stderr); err != nil {
		return err
	}

	collector := metrics.New()
	sceneOpts := []plot.SceneOption{
		plot.WithBusOptions(event.WithObserver(collector)),
		plot.WithRenderObserver(collector),
	}
	if opts.isolate {
		sceneOpts = append(sceneOpts, plot.WithIsolatedBuses())
	}
	scene, err := plot.NewScene(cfg, sceneOpts...)
	if err != nil {
		return errors.Wrap(err, "build scene")
	}
	defer scene.Destroy()

	frames := opts.frames
	if frames == 0 && !opts.watch {
		frames = cfg.Render.MaxFrames
	}
	interval := opts.interval
	if interval <= 0 {
		interval = cfg.Render.FrameInterval
	}

	var reloads <-chan struct{}
	var reload func()
	if opts.watch {
		store := config.NewStore(cfg, doc)
		store.OnChange(func(_, next config.Config) {
			if err := scene.ApplyToolbox(next.Toolbox); err != nil {
				log.Warn().Err(err).Msg("toolbox not applied")
			}
		})
		ch := make(chan struct{}, 1)
		w, err := config.NewWatcher(opts.configPath, func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() { _ = w.Run(ctx) }()

		reloads = ch
		reload = func() {
			if err := store.Reload(opts.configPath); err != nil {
				log.Warn().Err(err).Msg("config reload failed")
			}
		}
	}

	// drive only fails when ctx is done, which ends a run normally.
	_ = drive(ctx, scene, frames, interval, reloads, reload)

	if err := writeAxes(stdout, scene); err != nil {
		return err
	}
	if opts.metrics {
		return collector.WriteText(stdout)
	}
	return nil
}

// drive emits frames on the calling goroutine. frames <= 0 runs until ctx is
// done. Reload requests are handled between frames so that scene state is
// only touched here.
func drive(ctx context.Context, scene *plot.Scene, frames int, interval time.Duration, reloads <-chan struct{}, reload func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scene.Frame()
	for i := 1; frames <= 0 || i < frames; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-reloads:
			reload()
		case <-ticker.C:
			scene.Frame()
			i++
		}
	}
	return nil
}

func writeAxes(w io.Writer, scene *plot.Scene) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHART\tAXIS\tORIENTATION\tMIN\tMAX")
	for _, r := range scene.Axes() {
		if !r.HasDomain {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\n", r.Chart, r.Axis, r.Orientation)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\n", r.Chart, r.Axis, r.Orientation, r.Domain.Min, r.Domain.Max)
	}
	fmt.Fprintf(tw, "frames\t%d\n", scene.Frames())
	return tw.Flush()
}
