// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/config"
	"github.com/dshills/chartkit/internal/errs"
)

// Setup sets the global level and replaces log.Logger with one writing to w.
// Components capture their sub-logger at construction, so call it first.
func Setup(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	case "json":
		out = w
	default:
		return zerolog.Nop(), errs.Configuration("setup logging", "format "+cfg.Format, errs.ErrInvalid)
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

// ParseLevel parses a zerolog level name. An empty name is info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, errs.Configuration("parse log level", name, errors.Wrap(errs.ErrInvalid, err.Error()))
	}
	return level, nil
}
