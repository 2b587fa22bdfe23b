// Package domain aggregates the value extents of linked series into the
// domains of the axes they are drawn against.
package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
	"github.com/dshills/chartkit/internal/series"
)

// AxisDomain receives aggregated domains. Implementations are used as map
// keys and must be comparable; *axis.Axis is the usual one.
type AxisDomain interface {
	SetDomain(min, max float64)
}

type mapping struct {
	series    *series.Series
	component int
	domain    AxisDomain
}

type extent struct {
	min, max float64
	ok       bool
}

type seriesData struct {
	extents map[int]extent
	subs    []*event.Subscription
}

// AutoDomain keeps each linked axis domain equal to the union of the extents
// of every (series, component) mapped to it. It keeps two mirrored indexes;
// a mapping found on one side only is a corruption and panics.
type AutoDomain struct {
	id       string
	bus      *event.Bus
	bySeries map[*series.Series][]*mapping
	byDomain map[AxisDomain][]*mapping
	data     map[*series.Series]*seriesData

	destroyed bool
	log       zerolog.Logger
}

var topics = event.NewTopicRegistry("autodomain")

// DestroyedTopic is emitted on the AutoDomain bus once by Destroy.
func DestroyedTopic(ad *AutoDomain) event.Topic[*AutoDomain] {
	if ad.destroyed {
		return event.Topic[*AutoDomain]{}
	}
	return event.Dynamic[*AutoDomain](topics, ad, "destroyed")
}

// Option configures an AutoDomain.
type Option func(*AutoDomain)

// WithBus sets the bus DestroyedTopic is emitted on. The default is
// event.Default().
func WithBus(b *event.Bus) Option {
	return func(ad *AutoDomain) {
		ad.bus = b
	}
}

// New creates an AutoDomain with no links.
func New(opts ...Option) *AutoDomain {
	ad := &AutoDomain{
		id:       uuid.NewString(),
		bySeries: make(map[*series.Series][]*mapping),
		byDomain: make(map[AxisDomain][]*mapping),
		data:     make(map[*series.Series]*seriesData),
		log:      log.With().Str("component", "autodomain").Logger(),
	}
	for _, opt := range opts {
		opt(ad)
	}
	if ad.bus == nil {
		ad.bus = event.Default()
	}
	return ad
}

// ID returns the unique AutoDomain id.
func (ad *AutoDomain) ID() string { return ad.id }

// IsDestroyed reports whether Destroy was called.
func (ad *AutoDomain) IsDestroyed() bool { return ad.destroyed }

// LinkSeries maps component i of s to mapping[i] for every non-nil entry and
// recomputes the affected domains. Linking an existing triple again has no
// effect.
func (ad *AutoDomain) LinkSeries(s *series.Series, domains []AxisDomain) {
	if ad.destroyed || s == nil || s.IsDestroyed() {
		return
	}

	added := 0
	for component, d := range domains {
		if d == nil || ad.linked(s, component, d) {
			continue
		}
		m := &mapping{series: s, component: component, domain: d}
		ad.bySeries[s] = append(ad.bySeries[s], m)
		ad.byDomain[d] = append(ad.byDomain[d], m)
		added++
	}
	if len(ad.bySeries[s]) == 0 {
		return
	}

	if _, ok := ad.data[s]; !ok {
		sd := &seriesData{extents: make(map[int]extent)}
		sd.subs = []*event.Subscription{
			event.On(s.Bus(), series.DataChangedTopic(s), ad.recompute),
			event.On(s.Bus(), series.DestroyedTopic(s), ad.UnlinkSeries),
		}
		ad.data[s] = sd
	}
	ad.log.Debug().Str("series", s.Name()).Int("mappings", added).Msg("series linked")
	ad.recompute(s)
}

func (ad *AutoDomain) linked(s *series.Series, component int, d AxisDomain) bool {
	for _, m := range ad.bySeries[s] {
		if m.component == component && m.domain == d {
			return true
		}
	}
	return false
}

// recompute rescans every mapped component of s and updates the domains s
// is mapped to.
func (ad *AutoDomain) recompute(s *series.Series) {
	sd, ok := ad.data[s]
	if !ok {
		return
	}
	var touched []AxisDomain
	for _, m := range ad.bySeries[s] {
		if !contains(ad.byDomain[m.domain], m) {
			errs.Corrupt("autodomain", fmt.Sprintf("mapping of %q component %d missing from domain index", s.Name(), m.component))
		}
		sd.extents[m.component] = scan(s.Data(), m.component)
		touched = appendUnique(touched, m.domain)
	}
	for _, d := range touched {
		ad.update(d)
	}
}

// scan returns the [min, max] of one component. Rows that are too short and
// NaN values are skipped.
func scan(rows [][]float64, component int) extent {
	e := extent{min: math.Inf(1), max: math.Inf(-1)}
	for _, row := range rows {
		if component >= len(row) {
			continue
		}
		v := row[component]
		if math.IsNaN(v) {
			continue
		}
		e.min = math.Min(e.min, v)
		e.max = math.Max(e.max, v)
		e.ok = true
	}
	return e
}

// update assigns the union of every mapping of d. A domain with no data
// keeps its previous value.
func (ad *AutoDomain) update(d AxisDomain) {
	union := extent{min: math.Inf(1), max: math.Inf(-1)}
	for _, m := range ad.byDomain[d] {
		if !contains(ad.bySeries[m.series], m) {
			errs.Corrupt("autodomain", fmt.Sprintf("mapping of %q component %d missing from series index", m.series.Name(), m.component))
		}
		sd, ok := ad.data[m.series]
		if !ok {
			errs.Corrupt("autodomain", fmt.Sprintf("series %q has mappings but no extent cache", m.series.Name()))
		}
		e := sd.extents[m.component]
		if !e.ok {
			continue
		}
		union.min = math.Min(union.min, e.min)
		union.max = math.Max(union.max, e.max)
		union.ok = true
	}
	if union.ok {
		d.SetDomain(union.min, union.max)
	}
}

// UnlinkSeries removes every mapping of s and recomputes the domains that
// still have mappings.
func (ad *AutoDomain) UnlinkSeries(s *series.Series) {
	ms, ok := ad.bySeries[s]
	if !ok {
		return
	}
	delete(ad.bySeries, s)
	ad.forget(s)

	var touched []AxisDomain
	for _, m := range ms {
		rest, found := without(ad.byDomain[m.domain], m)
		if !found {
			errs.Corrupt("autodomain", fmt.Sprintf("mapping of %q component %d missing from domain index", s.Name(), m.component))
		}
		if len(rest) == 0 {
			delete(ad.byDomain, m.domain)
			continue
		}
		ad.byDomain[m.domain] = rest
		touched = appendUnique(touched, m.domain)
	}
	ad.log.Debug().Str("series", s.Name()).Msg("series unlinked")

	for _, d := range touched {
		ad.update(d)
	}
}

// UnlinkAxisDomain removes every mapping of d. Series left without mappings
// stop being followed.
func (ad *AutoDomain) UnlinkAxisDomain(d AxisDomain) {
	ms, ok := ad.byDomain[d]
	if !ok {
		return
	}
	delete(ad.byDomain, d)

	for _, m := range ms {
		rest, found := without(ad.bySeries[m.series], m)
		if !found {
			errs.Corrupt("autodomain", fmt.Sprintf("mapping of %q component %d missing from series index", m.series.Name(), m.component))
		}
		if len(rest) == 0 {
			delete(ad.bySeries, m.series)
			ad.forget(m.series)
			continue
		}
		ad.bySeries[m.series] = rest
	}
}

// forget drops the extent cache and listeners of s.
func (ad *AutoDomain) forget(s *series.Series) {
	sd, ok := ad.data[s]
	if !ok {
		return
	}
	s.Bus().OffAll(sd.subs...)
	delete(ad.data, s)
}

// Extent returns the cached [min, max] of one component of a linked series.
func (ad *AutoDomain) Extent(s *series.Series, component int) (min, max float64, ok bool) {
	sd, found := ad.data[s]
	if !found {
		return 0, 0, false
	}
	e := sd.extents[component]
	return e.min, e.max, e.ok
}

// Linked reports how many mappings s and d have.
func (ad *AutoDomain) Linked(s *series.Series, d AxisDomain) (seriesMappings, domainMappings int) {
	return len(ad.bySeries[s]), len(ad.byDomain[d])
}

// Destroy unlinks every series and emits DestroyedTopic. Later links are
// ignored.
func (ad *AutoDomain) Destroy() {
	if ad.destroyed {
		return
	}
	destroyed := DestroyedTopic(ad)
	ad.destroyed = true
	for s := range ad.bySeries {
		ad.UnlinkSeries(s)
	}
	event.Emit(ad.bus, destroyed, ad)
	topics.Release(ad)
}

func contains(ms []*mapping, m *mapping) bool {
	for _, e := range ms {
		if e == m {
			return true
		}
	}
	return false
}

func without(ms []*mapping, m *mapping) ([]*mapping, bool) {
	for i, e := range ms {
		if e == m {
			return append(ms[:i:i], ms[i+1:]...), true
		}
	}
	return ms, false
}

func appendUnique(ds []AxisDomain, d AxisDomain) []AxisDomain {
	for _, e := range ds {
		if e == d {
			return ds
		}
	}
	return append(ds, d)
}
