package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chartkit/internal/axis"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/series"
)

type recorder struct {
	calls [][2]float64
}

func (r *recorder) SetDomain(min, max float64) {
	r.calls = append(r.calls, [2]float64{min, max})
}

func (r *recorder) last() [2]float64 {
	if len(r.calls) == 0 {
		return [2]float64{math.NaN(), math.NaN()}
	}
	return r.calls[len(r.calls)-1]
}

func column(values ...float64) [][]float64 {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{float64(i), v}
	}
	return rows
}

func TestAutoDomain_Aggregation(t *testing.T) {
	bus := event.NewBus()
	d := axis.New("y", axis.Y, axis.WithBus(bus))
	s1 := series.New("s1", series.WithBus(bus), series.WithData(column(1, 5, 3)))
	s2 := series.New("s2", series.WithBus(bus), series.WithData(column(3, -2)))

	ad := New()
	ad.LinkSeries(s1, []AxisDomain{nil, d})
	ad.LinkSeries(s2, []AxisDomain{nil, d})

	got, ok := d.Domain()
	require.True(t, ok)
	assert.Equal(t, axis.Domain{Min: -2, Max: 5}, got)

	ad.UnlinkSeries(s2)
	got, _ = d.Domain()
	assert.Equal(t, axis.Domain{Min: 1, Max: 5}, got, "recomputed without s2")

	s1.SetData(column(20, 10))
	got, _ = d.Domain()
	assert.Equal(t, axis.Domain{Min: 10, Max: 20}, got)

	s2.SetData(column(-100))
	got, _ = d.Domain()
	assert.Equal(t, axis.Domain{Min: 10, Max: 20}, got, "unlinked series is ignored")
}

func TestAutoDomain_SeparateComponents(t *testing.T) {
	bus := event.NewBus()
	x, y := &recorder{}, &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData([][]float64{{4, 1}, {2, 9}, {3}, {math.NaN(), 0}}))

	ad := New()
	ad.LinkSeries(s, []AxisDomain{x, y})

	assert.Equal(t, [2]float64{2, 4}, x.last())
	assert.Equal(t, [2]float64{0, 9}, y.last())

	lo, hi, ok := ad.Extent(s, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 9.0, hi)

	_, _, ok = ad.Extent(s, 5)
	assert.False(t, ok)
}

func TestAutoDomain_EmptyDataKeepsDomain(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s := series.New("s", series.WithBus(bus))

	ad := New()
	ad.LinkSeries(s, []AxisDomain{nil, r})
	assert.Empty(t, r.calls)

	s.Append([]float64{0, 7})
	assert.Equal(t, [2]float64{7, 7}, r.last())

	s.SetData(nil)
	assert.Len(t, r.calls, 1)
}

func TestAutoDomain_LinkIsIdempotent(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData(column(1)))
	before := bus.Stats().Subscriptions

	ad := New()
	ad.LinkSeries(s, []AxisDomain{nil, r})
	ad.LinkSeries(s, []AxisDomain{nil, r})

	sm, dm := ad.Linked(s, r)
	assert.Equal(t, 1, sm)
	assert.Equal(t, 1, dm)
	assert.Equal(t, before+2, bus.Stats().Subscriptions)

	ad.LinkSeries(s, nil)
	ad.LinkSeries(nil, []AxisDomain{r})
	sm, _ = ad.Linked(s, r)
	assert.Equal(t, 1, sm)
}

func TestAutoDomain_UnlinkAxisDomain(t *testing.T) {
	bus := event.NewBus()
	x, y := &recorder{}, &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData(column(1, 2)))
	before := bus.Stats().Subscriptions

	ad := New()
	ad.LinkSeries(s, []AxisDomain{x, y})

	ad.UnlinkAxisDomain(x)
	sm, dm := ad.Linked(s, x)
	assert.Equal(t, 1, sm)
	assert.Zero(t, dm)
	assert.Equal(t, before+2, bus.Stats().Subscriptions, "series still followed for y")

	ad.UnlinkAxisDomain(y)
	assert.Equal(t, before, bus.Stats().Subscriptions, "last mapping drops the listeners")

	calls := len(x.calls) + len(y.calls)
	s.SetData(column(100))
	assert.Equal(t, calls, len(x.calls)+len(y.calls))

	ad.UnlinkAxisDomain(y)
}

func TestAutoDomain_SeriesDestroyedUnlinks(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s1 := series.New("s1", series.WithBus(bus), series.WithData(column(1)))
	s2 := series.New("s2", series.WithBus(bus), series.WithData(column(50)))

	ad := New()
	ad.LinkSeries(s1, []AxisDomain{nil, r})
	ad.LinkSeries(s2, []AxisDomain{nil, r})
	assert.Equal(t, [2]float64{1, 50}, r.last())

	s2.Destroy()
	assert.Equal(t, [2]float64{1, 1}, r.last())
	sm, dm := ad.Linked(s2, r)
	assert.Zero(t, sm)
	assert.Equal(t, 1, dm)
}

func TestAutoDomain_Destroy(t *testing.T) {
	bus := event.NewBus()
	before := bus.Stats().Subscriptions
	ad := New()
	for _, name := range []string{"a", "b"} {
		ad.LinkSeries(series.New(name, series.WithBus(bus), series.WithData(column(1))), []AxisDomain{nil, &recorder{}})
	}
	ad.Destroy()
	assert.Equal(t, before, bus.Stats().Subscriptions)
}

func TestAutoDomain_CorruptIndexesPanic(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData(column(1)))

	ad := New()
	ad.LinkSeries(s, []AxisDomain{nil, r})
	delete(ad.byDomain, r)

	defer func() {
		v := recover()
		require.NotNil(t, v)
		err, ok := v.(error)
		require.True(t, ok)
		assert.True(t, errs.IsCorruption(err))
	}()
	ad.UnlinkSeries(s)
}

func TestAutoDomain_SeriesOnlyMappingPanicsOnDataChange(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s1 := series.New("s1", series.WithBus(bus), series.WithData(column(1)))
	s2 := series.New("s2", series.WithBus(bus), series.WithData(column(50)))

	ad := New()
	ad.LinkSeries(s1, []AxisDomain{nil, r})
	ad.LinkSeries(s2, []AxisDomain{nil, r})
	require.Equal(t, [2]float64{1, 50}, r.last())

	rest, found := without(ad.byDomain[r], ad.bySeries[s1][0])
	require.True(t, found)
	ad.byDomain[r] = rest

	defer func() {
		v := recover()
		require.NotNil(t, v)
		err, ok := v.(error)
		require.True(t, ok)
		assert.True(t, errs.IsCorruption(err))
		assert.Equal(t, [2]float64{1, 50}, r.last())
	}()
	s1.SetData(column(-100))
}

func TestAutoDomain_CorruptDomainIndexPanics(t *testing.T) {
	bus := event.NewBus()
	r := &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData(column(1)))

	ad := New()
	ad.LinkSeries(s, []AxisDomain{nil, r})
	ad.bySeries[s] = []*mapping{{series: s, component: 1, domain: r}}

	assert.Panics(t, func() { s.SetData(column(2)) })
}

func TestAutoDomain_DestroyEmitsDestroyed(t *testing.T) {
	bus := event.NewBus()
	before := topics.Len()
	ad := New(WithBus(bus))
	r := &recorder{}
	s := series.New("s", series.WithBus(bus), series.WithData(column(1, 4)))
	ad.LinkSeries(s, []AxisDomain{nil, r})

	var got []*AutoDomain
	event.On(bus, DestroyedTopic(ad), func(d *AutoDomain) {
		sm, dm := d.Linked(s, r)
		assert.Zero(t, sm+dm, "links are gone before the event")
		got = append(got, d)
	})

	ad.Destroy()
	ad.Destroy()
	ad.LinkSeries(s, []AxisDomain{nil, r})

	assert.Equal(t, []*AutoDomain{ad}, got)
	assert.True(t, ad.IsDestroyed())
	sm, _ := ad.Linked(s, r)
	assert.Zero(t, sm, "links after Destroy are ignored")
	assert.Equal(t, before, topics.Len())
	assert.Equal(t, 1, bus.Stats().Subscriptions, "only the test's own listener remains")
}
