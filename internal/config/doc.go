// Package config loads and holds the scene configuration of chartkit.
//
// A scene describes charts, the axes and series drawn on them, the tools of
// the shared toolbox and how many frames to render:
//
//	log:
//	  level: debug
//	  format: console
//	render:
//	  max_frames: 3
//	  frame_interval: 16ms
//	toolbox:
//	  tools: [pan, zoom, select]
//	  groups: [[pan, zoom]]
//	  active: [pan]
//	charts:
//	  - name: main
//	    width: 640
//	    height: 480
//	axes:
//	  - {name: x, orientation: x, chart: main}
//	  - {name: y, orientation: y, chart: main}
//	series:
//	  - name: temp
//	    chart: main
//	    x_axis: x
//	    y_axis: y
//	    points: [[0, 1], [1, 3], [2, 2]]
//
// Files are YAML (.yaml, .yml, .json) or TOML (.toml). Values are first
// decoded into a raw document, environment overrides are merged in and the
// result is decoded into Config.
//
// Store holds the current Config and applies partial updates: Update merges
// a partial document into the raw one, decodes it again and notifies change
// hooks. Watcher reloads a file into a Store when it changes on disk.
package config
