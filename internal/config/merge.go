package config

import "strings"

// DeepMerge merges src into dst and returns dst. Maps merge recursively;
// every other value in src replaces the one in dst.
func DeepMerge(dst, src Document) Document {
	if dst == nil {
		dst = make(Document)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = cloneValue(srcVal)
	}
	return dst
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return val
	}
}

// SetByPath sets a dot-separated path, creating intermediate maps.
func SetByPath(doc Document, path string, value any) {
	if doc == nil || path == "" {
		return
	}
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetByPath returns the value at a dot-separated path.
func GetByPath(doc Document, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
