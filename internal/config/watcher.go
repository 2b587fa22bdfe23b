package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must stay quiet before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// Watcher calls onChange when a configuration file is written, created or
// renamed into place. It watches the parent directory so that atomic saves
// through a temporary file are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	fsw      *fsnotify.Watcher
	log      zerolog.Logger
}

// NewWatcher starts watching path.
func NewWatcher(path string, onChange func(), opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		fsw:      fsw,
		log:      log.With().Str("component", "config.watcher").Str("path", abs).Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug().Str("op", ev.Op.String()).Msg("config file event")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")

		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
