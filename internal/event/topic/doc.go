// Package topic provides topic names and opaque topic keys for the event bus.
//
// # Topic Names
//
// Topic names use dot-notation to create hierarchical namespaces:
//
//	chart.destroyed
//	axis.3f2c9a.domainChanged
//	toolbox.7b1e40.stateChanged
//
// A name is informational. The identity of a topic is its *Key: two keys
// created from the same name are different topics. This is what lets two
// unrelated features that both pick the logical name "changed" share one bus
// without colliding.
//
// # Wildcards
//
// Name patterns support two wildcards, used by bus bridges to whitelist the
// topics they forward:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	axis.*.domainChanged  matches axis.3f2c9a.domainChanged
//	axis.**               matches every topic under axis
//	**                    matches everything
package topic
