package audit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Field is one leaf of an input document, addressed by a dotted path.
type Field struct {
	Path  string
	Value string // compact JSON
}

// Fields flattens a JSON document into its leaves, sorted by path. Array
// elements are addressed as path[i]; empty objects and arrays are leaves.
func Fields(raw json.RawMessage) []Field {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	var out []Field
	flatten("", doc, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func flatten(prefix string, v any, out *[]Field) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*out = append(*out, Field{Path: prefix, Value: "{}"})
			return
		}
		for k, child := range t {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flatten(path, child, out)
		}
	case []any:
		if len(t) == 0 {
			*out = append(*out, Field{Path: prefix, Value: "[]"})
			return
		}
		for i, child := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), child, out)
		}
	default:
		b, _ := json.Marshal(t)
		*out = append(*out, Field{Path: prefix, Value: string(b)})
	}
}
