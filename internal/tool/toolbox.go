package tool

import (
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/chart"
	"github.com/dshills/chartkit/internal/errs"
	"github.com/dshills/chartkit/internal/event"
)

// ToolState is the payload of StateChangedTopic.
type ToolState struct {
	Name   string
	Active bool
}

var topics = event.NewTopicRegistry("toolbox")

// StateChangedTopic is emitted once per activation or deactivation. Topics
// of a destroyed toolbox are zero topics.
func StateChangedTopic(tb *Toolbox) event.Topic[ToolState] {
	if tb.destroyed {
		return event.Topic[ToolState]{}
	}
	return event.Dynamic[ToolState](topics, tb, "stateChanged")
}

// DestroyedTopic is emitted once by Destroy, after the toolbox left its charts.
func DestroyedTopic(tb *Toolbox) event.Topic[*Toolbox] {
	if tb.destroyed {
		return event.Topic[*Toolbox]{}
	}
	return event.Dynamic[*Toolbox](topics, tb, "destroyed")
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithBus sets the bus StateChangedTopic is emitted on. The default is
// event.Default().
func WithBus(b *event.Bus) Option {
	return func(tb *Toolbox) {
		tb.bus = b
	}
}

// Toolbox registers tools by name and tracks which are active. Only active
// tools are attached to the toolbox's charts.
type Toolbox struct {
	id  string
	bus *event.Bus
	log zerolog.Logger

	tools  map[string]Tool
	order  []string
	active []string
	groups [][]string
	charts []chart.Source

	destroyed bool
}

// NewToolbox creates an empty toolbox.
func NewToolbox(opts ...Option) *Toolbox {
	tb := &Toolbox{
		id:    uuid.NewString(),
		tools: make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(tb)
	}
	if tb.bus == nil {
		tb.bus = event.Default()
	}
	tb.log = log.With().Str("component", "toolbox").Str("toolbox", tb.id).Logger()
	return tb
}

// ID returns the unique toolbox id.
func (tb *Toolbox) ID() string { return tb.id }

// Bus returns the bus StateChangedTopic is emitted on.
func (tb *Toolbox) Bus() *event.Bus { return tb.bus }

// AddTool registers t. Registering a name twice is a configuration error.
func (tb *Toolbox) AddTool(t Tool) error {
	if t == nil {
		return errs.Configuration("add tool", "", errors.Wrap(errs.ErrInvalid, "nil tool"))
	}
	name := t.Name()
	if _, ok := tb.tools[name]; ok {
		return errs.Configuration("add tool", name, errs.ErrDuplicate)
	}
	tb.tools[name] = t
	tb.order = append(tb.order, name)
	tb.log.Debug().Str("tool", name).Msg("tool added")
	return nil
}

// RemoveTool deactivates and unregisters the named tool.
func (tb *Toolbox) RemoveTool(name string) error {
	if _, err := tb.lookup("remove tool", name); err != nil {
		return err
	}
	tb.deactivate(name)
	delete(tb.tools, name)
	tb.order = slices.DeleteFunc(tb.order, func(n string) bool { return n == name })
	tb.log.Debug().Str("tool", name).Msg("tool removed")
	return nil
}

func (tb *Toolbox) lookup(op, name string) (Tool, error) {
	t, ok := tb.tools[name]
	if !ok {
		return nil, errs.Configuration(op, name, errs.ErrUnknown)
	}
	return t, nil
}

// Tools returns every registered tool in registration order.
func (tb *Toolbox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.order))
	for _, name := range tb.order {
		out = append(out, tb.tools[name])
	}
	return out
}

// SetToolActive activates or deactivates the named tool. Activating a tool
// first deactivates the other active members of its exclusive group.
// Activating an active tool does nothing.
func (tb *Toolbox) SetToolActive(name string, active bool) error {
	if _, err := tb.lookup("set tool active", name); err != nil {
		return err
	}
	if !active {
		tb.deactivate(name)
		return nil
	}

	for _, other := range tb.groupOf(name) {
		if other != name {
			tb.deactivate(other)
		}
	}
	tb.activate(name)
	return nil
}

// ActivateTool is SetToolActive(name, true).
func (tb *Toolbox) ActivateTool(name string) error {
	return tb.SetToolActive(name, true)
}

// DeactivateTool is SetToolActive(name, false).
func (tb *Toolbox) DeactivateTool(name string) error {
	return tb.SetToolActive(name, false)
}

// DeactivateAll deactivates every active tool.
func (tb *Toolbox) DeactivateAll() {
	for _, name := range slices.Clone(tb.active) {
		tb.deactivate(name)
	}
}

func (tb *Toolbox) activate(name string) {
	if tb.isActive(name) {
		return
	}
	tb.active = append(tb.active, name)
	t := tb.tools[name]
	for _, c := range tb.charts {
		t.AddToChart(c)
	}
	tb.log.Debug().Str("tool", name).Msg("tool activated")
	event.Emit(tb.bus, StateChangedTopic(tb), ToolState{Name: name, Active: true})
}

func (tb *Toolbox) deactivate(name string) {
	if !tb.isActive(name) {
		return
	}
	tb.active = slices.DeleteFunc(tb.active, func(n string) bool { return n == name })
	if t, ok := tb.tools[name]; ok {
		for _, c := range tb.charts {
			t.RemoveFromChart(c)
		}
	}
	tb.log.Debug().Str("tool", name).Msg("tool deactivated")
	event.Emit(tb.bus, StateChangedTopic(tb), ToolState{Name: name, Active: false})
}

func (tb *Toolbox) isActive(name string) bool {
	return slices.Contains(tb.active, name)
}

// groupOf returns the union of all exclusive groups containing name.
func (tb *Toolbox) groupOf(name string) []string {
	var out []string
	for _, g := range tb.groups {
		if slices.Contains(g, name) {
			out = append(out, g...)
		}
	}
	return out
}

// HasToolActive reports whether any tool is active.
func (tb *Toolbox) HasToolActive() bool {
	return len(tb.active) > 0
}

// GetActiveTool returns the earliest activated active tool.
func (tb *Toolbox) GetActiveTool() (Tool, bool) {
	if len(tb.active) == 0 {
		return nil, false
	}
	return tb.tools[tb.active[0]], true
}

// GetActiveTools returns the active tools in activation order.
func (tb *Toolbox) GetActiveTools() []Tool {
	out := make([]Tool, 0, len(tb.active))
	for _, name := range tb.active {
		out = append(out, tb.tools[name])
	}
	return out
}

// IsToolActive reports whether the named tool is active.
func (tb *Toolbox) IsToolActive(name string) (bool, error) {
	if _, err := tb.lookup("is tool active", name); err != nil {
		return false, err
	}
	return tb.isActive(name), nil
}

// SetMutuallyExclusiveGroups replaces the exclusive groups and resolves
// conflicts among the active tools at once. Within a group the earliest
// activated tool stays active.
func (tb *Toolbox) SetMutuallyExclusiveGroups(groups [][]string) {
	tb.groups = make([][]string, 0, len(groups))
	for _, g := range groups {
		tb.groups = append(tb.groups, slices.Clone(g))
	}
	for _, name := range slices.Clone(tb.active) {
		if tb.isActive(name) {
			// Cannot fail: active tools are registered.
			_ = tb.SetToolActive(name, true)
		}
	}
}

// Groups returns the exclusive groups.
func (tb *Toolbox) Groups() [][]string {
	return tb.groups
}

// AddToChart attaches the toolbox, and through it every active tool, to c.
func (tb *Toolbox) AddToChart(c chart.Source) {
	if c == nil || slices.Contains(tb.charts, c) {
		return
	}
	tb.charts = append(tb.charts, c)
	for _, t := range tb.GetActiveTools() {
		t.AddToChart(c)
	}
}

// RemoveFromChart detaches the toolbox and its active tools from c.
func (tb *Toolbox) RemoveFromChart(c chart.Source) {
	if !slices.Contains(tb.charts, c) {
		return
	}
	tb.charts = slices.DeleteFunc(tb.charts, func(e chart.Source) bool { return e == c })
	for _, t := range tb.GetActiveTools() {
		t.RemoveFromChart(c)
	}
}

// Charts returns the charts the toolbox is attached to.
func (tb *Toolbox) Charts() []chart.Source {
	return slices.Clone(tb.charts)
}

// Destroy detaches from every chart, emits DestroyedTopic and releases the
// toolbox topics. Tool states are left as they are and no state events are
// emitted.
func (tb *Toolbox) Destroy() {
	if tb.destroyed {
		return
	}
	destroyed := DestroyedTopic(tb)
	tb.destroyed = true
	for _, c := range slices.Clone(tb.charts) {
		tb.RemoveFromChart(c)
	}
	event.Emit(tb.bus, destroyed, tb)
	topics.Release(tb)
}
