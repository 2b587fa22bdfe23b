package series

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/render"
)

type axisEntry struct {
	sub     *event.Subscription
	targets map[render.Renderable]render.Target
}

// AxisListeners shares one domain-changed subscription per axis between all
// renderers drawn against it. The subscription lives while at least one
// renderer holds the axis.
type AxisListeners struct {
	entries map[*axis.Axis]*axisEntry
	log     zerolog.Logger
}

// NewAxisListeners creates an empty listener table.
func NewAxisListeners() *AxisListeners {
	return &AxisListeners{
		entries: make(map[*axis.Axis]*axisEntry),
		log:     log.With().Str("component", "series.axisListeners").Logger(),
	}
}

// Acquire marks r dirty for target whenever the domain of a changes.
func (l *AxisListeners) Acquire(a *axis.Axis, target render.Target, r render.Renderable) {
	if a == nil || r == nil {
		return
	}
	e, ok := l.entries[a]
	if !ok {
		e = &axisEntry{targets: make(map[render.Renderable]render.Target)}
		e.sub = event.On(a.Bus(), axis.DomainChangedTopic(a), func(a *axis.Axis) {
			l.markAll(a)
		})
		l.entries[a] = e
		l.log.Debug().Str("axis", a.Name()).Msg("axis listener added")
	}
	e.targets[r] = target
}

// Release drops r from a and removes the axis subscription once no renderer
// holds it.
func (l *AxisListeners) Release(a *axis.Axis, r render.Renderable) {
	e, ok := l.entries[a]
	if !ok {
		return
	}
	delete(e.targets, r)
	if len(e.targets) > 0 {
		return
	}
	a.Bus().Off(e.sub)
	delete(l.entries, a)
	l.log.Debug().Str("axis", a.Name()).Msg("axis listener removed")
}

// Refs returns how many renderers hold a.
func (l *AxisListeners) Refs(a *axis.Axis) int {
	if e, ok := l.entries[a]; ok {
		return len(e.targets)
	}
	return 0
}

// Len returns the number of axes with a live subscription.
func (l *AxisListeners) Len() int {
	return len(l.entries)
}

func (l *AxisListeners) markAll(a *axis.Axis) {
	e, ok := l.entries[a]
	if !ok {
		return
	}
	for r, target := range e.targets {
		event.Emit(a.Bus(), render.DirtyTopic, render.DirtyEvent{Target: target, Renderable: r})
	}
}
