package event

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dshills/chartkit/internal/event/topic"
)

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithTopics restricts forwarding to topics whose names match one of the
// patterns. Without it every topic is forwarded.
func WithTopics(patterns ...topic.Topic) BridgeOption {
	return func(br *Bridge) {
		br.patterns = append(br.patterns, patterns...)
	}
}

// Bridge forwards events between groups of buses. An event emitted on a bus
// of one group is re-dispatched once on every bus of every other group and
// never comes back to its own group.
type Bridge struct {
	groups   [][]*Bus
	patterns []topic.Topic
	subs     []*Subscription
	log      zerolog.Logger
}

// NewBridge installs forwarding handlers on every bus of every group.
func NewBridge(groups [][]*Bus, opts ...BridgeOption) *Bridge {
	br := &Bridge{
		groups: make([][]*Bus, len(groups)),
		log:    log.With().Str("component", "bridge").Logger(),
	}
	for i, g := range groups {
		br.groups[i] = append([]*Bus(nil), g...)
	}
	for _, opt := range opts {
		opt(br)
	}

	for i, g := range br.groups {
		from := i
		for _, b := range g {
			br.subs = append(br.subs, OnAny(b, func(env *Envelope) {
				br.forward(from, env)
			}))
		}
	}
	return br
}

func (br *Bridge) accepts(key *topic.Key) bool {
	if len(br.patterns) == 0 {
		return true
	}
	return key.Name().MatchesAny(br.patterns)
}

func (br *Bridge) forward(from int, env *Envelope) {
	if !br.accepts(env.Topic) {
		return
	}
	if !env.Mark(br) {
		return
	}

	br.log.Debug().Str("topic", env.Topic.String()).Int("group", from).Msg("forwarding")
	for j, g := range br.groups {
		if j == from {
			continue
		}
		for _, b := range g {
			b.Dispatch(env)
		}
	}
}

// Close removes the forwarding handlers.
func (br *Bridge) Close() {
	for _, sub := range br.subs {
		sub.Bus().Off(sub)
	}
	br.subs = nil
}
