package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
)

func newChart(t *testing.T) (*chart.Chart, *Manager) {
	t.Helper()
	c := chart.New(chart.WithBus(event.NewBus()))
	return c, NewManager(c)
}

func axisNames(as []*Axis) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name()
	}
	return out
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation(" X ")
	require.NoError(t, err)
	assert.Equal(t, X, o)

	o, err = ParseOrientation("y")
	require.NoError(t, err)
	assert.Equal(t, Y, o)
	assert.Equal(t, "y", o.String())

	_, err = ParseOrientation("z")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
}

func TestAxis_SetDomain(t *testing.T) {
	a := New("x1", X, WithBus(event.NewBus()))

	_, ok := a.Domain()
	assert.False(t, ok)

	var changes []Domain
	event.On(a.Bus(), DomainChangedTopic(a), func(a *Axis) {
		d, _ := a.Domain()
		changes = append(changes, d)
	})

	a.SetDomain(10, 0)
	a.SetDomain(0, 10)
	a.SetDomain(0, 20)

	assert.Equal(t, []Domain{{0, 10}, {0, 20}}, changes, "reversed bounds swap; unchanged domain is silent")
}

func TestAxis_RegistersWithChart(t *testing.T) {
	c, m := newChart(t)

	x := New("x1", X, WithChart(c))
	y := New("y1", Y, WithChart(c), WithDomain(0, 1))

	assert.Same(t, c.Bus(), x.Bus())
	assert.Equal(t, []string{"x1", "y1"}, axisNames(m.Axes()))
	assert.Same(t, x, m.XAxis("x1"))
	assert.Nil(t, m.YAxis("x1"), "wrong orientation")
	assert.Same(t, y, m.YAxis("y1"))
	assert.Equal(t, []*Axis{x}, m.XAxes())
	assert.Equal(t, []*Axis{y}, m.YAxes())

	d, ok := y.Domain()
	assert.True(t, ok)
	assert.Equal(t, Domain{0, 1}, d)
}

func TestAxis_DestroyRemovesFromManager(t *testing.T) {
	c, m := newChart(t)
	x := New("x1", X, WithChart(c))

	var destroyed int
	event.On(c.Bus(), DestroyedTopic(x), func(*Axis) { destroyed++ })

	x.Destroy()
	x.Destroy()

	assert.Equal(t, 1, destroyed)
	assert.True(t, x.IsDestroyed())
	assert.Empty(t, m.Axes())

	x.SetDomain(0, 1)
	_, ok := x.Domain()
	assert.False(t, ok, "destroyed axis ignores SetDomain")
}

func TestManager_LookupAndWatch(t *testing.T) {
	c := chart.New(chart.WithBus(event.NewBus()))

	var seen []*Manager
	Watch(c, func(m *Manager) { seen = append(seen, m) })

	m := NewManager(c)
	got, ok := Lookup(c)
	require.True(t, ok)
	assert.Same(t, m, got)

	c.Destroy()
	_, ok = Lookup(c)
	assert.False(t, ok)
	assert.Equal(t, []*Manager{m, nil}, seen)
}

func TestAxis_DestroyAfterChartLeavesNoKeys(t *testing.T) {
	before := topics.Len()
	c, m := newChart(t)
	x := New("x1", X, WithChart(c), WithDomain(0, 1))
	x.SetDomain(0, 2)

	c.Destroy()
	require.True(t, m.IsDestroyed())
	_, ok := Lookup(c)
	assert.False(t, ok)

	x.Destroy()
	assert.True(t, DomainChangedTopic(x).IsZero())
	assert.Equal(t, before, topics.Len())
	assert.Zero(t, c.Bus().Stats().Subscriptions)
}
