package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMerge(t *testing.T) {
	dst := Document{
		"log":    map[string]any{"level": "info", "format": "console"},
		"charts": []any{"a"},
	}
	src := Document{
		"log":    map[string]any{"level": "debug"},
		"charts": []any{"b"},
		"render": map[string]any{"max_frames": 2},
	}

	got := DeepMerge(dst, src)
	assert.Equal(t, Document{
		"log":    map[string]any{"level": "debug", "format": "console"},
		"charts": []any{"b"},
		"render": map[string]any{"max_frames": 2},
	}, got)

	src["render"].(map[string]any)["max_frames"] = 9
	assert.Equal(t, 2, got["render"].(map[string]any)["max_frames"], "merged values are copies")

	assert.Equal(t, Document{"a": 1}, DeepMerge(nil, Document{"a": 1}))
}

func TestClone(t *testing.T) {
	doc := Document{"a": map[string]any{"b": []any{map[string]any{"c": 1}}}}
	cp := Clone(doc)
	cp["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"] = 2

	v, _ := GetByPath(doc, "a.b")
	assert.Equal(t, []any{map[string]any{"c": 1}}, v)
	assert.Nil(t, Clone(nil))
}

func TestPaths(t *testing.T) {
	doc := Document{}
	SetByPath(doc, "render.max_frames", 4)
	SetByPath(doc, "", 1)

	v, ok := GetByPath(doc, "render.max_frames")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = GetByPath(doc, "render.max_frames.deeper")
	assert.False(t, ok)
	_, ok = GetByPath(doc, "missing")
	assert.False(t, ok)
}
