package render

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chartkit/internal/event"
)

type countingRenderable struct {
	name    string
	targets []Target
}

func (c *countingRenderable) Render(target Target) {
	c.targets = append(c.targets, target)
}

type chartTarget struct{ name string }

func TestManager_CoalescesMarks(t *testing.T) {
	m := NewManager()
	target := &chartTarget{name: "c1"}
	r := &countingRenderable{name: "line"}

	for i := 0; i < 5; i++ {
		m.MarkDirty(target, r)
	}
	assert.Equal(t, 1, m.Pending())
	assert.True(t, m.IsDirty(target, r))

	assert.Equal(t, 1, m.Flush())
	require.Len(t, r.targets, 1)
	assert.Same(t, target, r.targets[0])
	assert.Equal(t, 0, m.Pending())
	assert.False(t, m.IsDirty(target, r))

	assert.Equal(t, 0, m.Flush(), "nothing pending after a flush")
	assert.Len(t, r.targets, 1)
}

func TestManager_OneRenderPerPair(t *testing.T) {
	m := NewManager()
	c1, c2 := &chartTarget{"c1"}, &chartTarget{"c2"}
	line, area := &countingRenderable{name: "line"}, &countingRenderable{name: "area"}

	m.MarkDirty(c1, line)
	m.MarkDirty(c1, area)
	m.MarkDirty(c2, line)
	m.MarkDirty(c1, line)

	assert.Equal(t, 3, m.Pending())
	assert.Equal(t, 3, m.Flush())
	assert.ElementsMatch(t, []Target{c1, c2}, line.targets)
	assert.Equal(t, []Target{c1}, area.targets)
}

func TestManager_MarkDuringFlushGoesToNextCycle(t *testing.T) {
	m := NewManager()
	target := &chartTarget{"c1"}

	var self *RenderFunc
	renders := 0
	self = NewRenderFunc(func(tg Target) {
		renders++
		if renders == 1 {
			m.MarkDirty(tg, self)
		}
	})

	m.MarkDirty(target, self)
	assert.Equal(t, 1, m.Flush())
	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, 1, m.Flush())
	assert.Equal(t, 2, renders)
}

func TestManager_NilRenderableIgnored(t *testing.T) {
	m := NewManager()
	m.MarkDirty(&chartTarget{"c1"}, nil)
	assert.Equal(t, 0, m.Pending())
}

func TestManager_ConcurrentMarks(t *testing.T) {
	m := NewManager()
	target := &chartTarget{"c1"}
	r := &countingRenderable{}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.MarkDirty(target, r)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Flush())
}

func TestManager_Attach(t *testing.T) {
	bus := event.NewBus()
	m := NewManager()
	ep := m.Attach(bus)
	target := &chartTarget{"c1"}
	r := &countingRenderable{}

	event.Emit(bus, DirtyTopic, DirtyEvent{Target: target, Renderable: r})
	event.Emit(bus, DirtyTopic, DirtyEvent{Target: target, Renderable: r})
	assert.Equal(t, 1, m.Pending())

	event.Emit(bus, FrameTopic, Frame{Seq: 1, Time: time.Now()})
	assert.Len(t, r.targets, 1)

	ep.Close()
	event.Emit(bus, DirtyTopic, DirtyEvent{Target: target, Renderable: r})
	assert.Equal(t, 0, m.Pending())
}

type recordingObserver struct {
	flushes  []int
	pendings []int
}

func (o *recordingObserver) ObserveFlush(rendered int, _ time.Duration) {
	o.flushes = append(o.flushes, rendered)
}

func (o *recordingObserver) ObservePending(pending int) {
	o.pendings = append(o.pendings, pending)
}

func TestManager_ObserverAndStats(t *testing.T) {
	obs := &recordingObserver{}
	m := NewManager(WithObserver(obs))
	target := &chartTarget{"c1"}

	m.MarkDirty(target, &countingRenderable{})
	m.MarkDirty(target, &countingRenderable{})
	m.Flush()

	assert.Equal(t, []int{2}, obs.flushes)
	assert.Equal(t, []int{1, 2, 0}, obs.pendings)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.Flushes)
	assert.Equal(t, uint64(2), stats.Rendered)
	assert.Equal(t, 0, stats.Pending)
}
