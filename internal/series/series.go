// Package series provides series data sources, the per-chart series-renderer
// manager and the line renderer that draws a series against two axes.
package series

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/chartkit/internal/event"
)

var topics = event.NewTopicRegistry("series")

// DataChangedTopic is emitted on the series bus after SetData or Append.
// Topics of a destroyed series are zero topics.
func DataChangedTopic(s *Series) event.Topic[*Series] {
	return seriesTopic(s, "dataChanged")
}

// DestroyedTopic is emitted on the series bus by Destroy.
func DestroyedTopic(s *Series) event.Topic[*Series] {
	return seriesTopic(s, "destroyed")
}

func seriesTopic(s *Series, name string) event.Topic[*Series] {
	if s.destroyed {
		return event.Topic[*Series]{}
	}
	return event.Dynamic[*Series](topics, s, name)
}

// Option configures a Series.
type Option func(*Series)

// WithBus sets the bus the series emits on. The default is event.Default().
func WithBus(b *event.Bus) Option {
	return func(s *Series) {
		s.bus = b
	}
}

// WithData sets the initial rows without emitting DataChangedTopic. The
// series copies the outer slice; rows themselves are shared and must not be
// modified afterwards.
func WithData(rows [][]float64) Option {
	return func(s *Series) {
		s.data = slices.Clone(rows)
	}
}

// Series is a named table of rows. Each row holds one value per component,
// for example x at index 0 and y at index 1.
type Series struct {
	id        string
	name      string
	bus       *event.Bus
	data      [][]float64
	destroyed bool
}

// New creates a series.
func New(name string, opts ...Option) *Series {
	s := &Series{
		id:   uuid.NewString(),
		name: name,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = event.Default()
	}
	return s
}

// ID returns the unique series id.
func (s *Series) ID() string { return s.id }

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Bus returns the bus the series emits on.
func (s *Series) Bus() *event.Bus { return s.bus }

// Data returns the current rows. Callers must not modify them; appending to
// the result never writes into the series.
func (s *Series) Data() [][]float64 { return slices.Clip(s.data) }

// Len returns the number of rows.
func (s *Series) Len() int { return len(s.data) }

// SetData replaces all rows, copying the outer slice like WithData.
func (s *Series) SetData(rows [][]float64) {
	if s.destroyed {
		return
	}
	s.data = slices.Clone(rows)
	event.Emit(s.bus, DataChangedTopic(s), s)
}

// Append adds rows at the end.
func (s *Series) Append(rows ...[]float64) {
	if s.destroyed || len(rows) == 0 {
		return
	}
	s.data = append(s.data, rows...)
	event.Emit(s.bus, DataChangedTopic(s), s)
}

// IsDestroyed reports whether Destroy was called.
func (s *Series) IsDestroyed() bool { return s.destroyed }

// Destroy emits DestroyedTopic and releases the series topics.
func (s *Series) Destroy() {
	if s.destroyed {
		return
	}
	destroyed := DestroyedTopic(s)
	s.destroyed = true
	event.Emit(s.bus, destroyed, s)
	topics.Release(s)
}
