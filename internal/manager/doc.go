// Package manager implements the discovery protocol that lets components find
// the per-chart managers (axes, series renderers) without a global registry.
//
// A Protocol names the kind of manager and derives four topics per chart:
//
//	add      entity payload: register an entity with the chart's manager
//	remove   entity payload: unregister it
//	get      func(M) payload: the manager answers synchronously with itself
//	changed  M payload: emitted with the manager when it starts, zero when it stops
//
// and one topic per manager instance, listChanged, carrying the full entity
// list after every add or remove. Consumers that exist before the manager
// bind through Watch; consumers created later find it with Lookup.
//
// Managers are not safe for concurrent use; drive them from the goroutine
// that owns the chart's bus.
package manager
