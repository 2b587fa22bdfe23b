// Package render provides the dirty-tracking scheduler that turns many
// independent "this is stale" marks into one render call per renderable and
// target per frame.
//
// Renderers call MarkDirty (directly or by emitting DirtyTopic) whenever
// their inputs change. A frame driver outside the core calls Flush, or emits
// FrameTopic, once per frame. Flush swaps the accumulated marks for an empty
// set and calls Render(target) exactly once per distinct pair.
package render
