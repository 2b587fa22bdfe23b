// Package event provides the publish/subscribe bus that every chart component
// sits on.
//
// # Architecture
//
//	┌───────────────────────────────┐      ┌──────────────────────────┐
//	│              Bus              │◀────▶│          Bridge          │
//	│  - key → ordered handlers     │      │  - forwards across groups│
//	│  - wildcard handlers          │      │  - per-bridge marks      │
//	│  - synchronous, re-entrant    │      └──────────────────────────┘
//	└───────────────────────────────┘
//	        ▲                 ▲
//	        │                 │
//	┌───────────────┐  ┌──────────────────┐
//	│   Endpoint    │  │  TopicRegistry   │
//	│ fixed listener│  │ (owner, name) →  │
//	│ set, swappable│  │ memoized key     │
//	│ bus + hooks   │  └──────────────────┘
//	└───────────────┘
//
// # Topics
//
// A Topic[T] couples an opaque key with the payload type carried on it:
//
//	var Destroyed = event.NewTopic[*Chart]("chart.destroyed")
//
// Static topics are declared once as package variables. Dynamic topics are
// derived per owner instance from a TopicRegistry and memoized, so a later
// Off matches the earlier On exactly:
//
//	changed := event.Dynamic[*Axis](registry, axis, "domainChanged")
//
// # Delivery
//
// Emit is synchronous: handlers run in subscription order in the caller's
// goroutine and Emit returns after the last one. A handler may Emit again.
// Handlers added during an Emit are not called by that Emit; handlers removed
// during an Emit and not yet reached are skipped.
//
//	sub := event.On(bus, chart.ResizedTopic(c), func(c *chart.Chart) { ... })
//	event.Emit(bus, chart.ResizedTopic(c), c)
//	bus.Off(sub)
//
// # Default Bus
//
// Default returns a process-wide bus for simple wiring. Tests and embedding
// contexts should create their own with NewBus.
//
// # Thread Safety
//
// The Bus is safe for concurrent use. Handlers are called without the bus lock
// held. Components built on the bus are driven from a single goroutine.
package event
