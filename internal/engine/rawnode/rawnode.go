// Package rawnode wraps loosely-typed upstream JSON documents.
//
// Upstream responses change shape between A/B tests and content types, so
// nothing here assumes a schema. Every accessor treats absence as a normal
// outcome: a missing key, a wrong type or an out-of-range index all yield a
// Missing node instead of an error.
package rawnode

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Node is an immutable view over a decoded JSON value.
type Node struct {
	v any
}

// Parse decodes a JSON document into a Node.
func Parse(data []byte) (Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Node{}, fmt.Errorf("rawnode: decode: %w", err)
	}
	return Node{v: v}, nil
}

// MustParse is Parse for fixtures; it panics on invalid JSON.
func MustParse(s string) Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

// From wraps an already-decoded value (map[string]any, []any, string, float64, bool).
func From(v any) Node {
	return Node{v: v}
}

// Missing reports whether the node holds no value.
func (n Node) Missing() bool {
	return n.v == nil
}

// Value returns the underlying decoded value.
func (n Node) Value() any {
	return n.v
}

// MarshalJSON lets nodes be cached or embedded in debug output.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.v)
}

// Get walks path segments. Object keys are matched literally; on lists a
// segment must be a decimal index.
func (n Node) Get(path ...string) Node {
	cur := n.v
	for _, seg := range path {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return Node{}
			}
			cur = c[i]
		default:
			return Node{}
		}
		if cur == nil {
			return Node{}
		}
	}
	return Node{v: cur}
}

// Has reports whether path resolves to a non-null value.
func (n Node) Has(path ...string) bool {
	return !n.Get(path...).Missing()
}

// Str returns a non-empty string at path.
func (n Node) Str(path ...string) (string, bool) {
	s, ok := n.Get(path...).v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Int returns an integer at path. Numeric strings ("12345") are accepted
// because the upstream encodes large counters as strings.
func (n Node) Int(path ...string) (int64, bool) {
	switch v := n.Get(path...).v.(type) {
	case float64:
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	}
	return 0, false
}

// Bool returns a boolean at path.
func (n Node) Bool(path ...string) (bool, bool) {
	b, ok := n.Get(path...).v.(bool)
	return b, ok
}

// List returns the elements of a list at path, or nil.
func (n Node) List(path ...string) []Node {
	arr, ok := n.Get(path...).v.([]any)
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(arr))
	for _, v := range arr {
		out = append(out, Node{v: v})
	}
	return out
}

// Keys returns object keys in no particular order.
func (n Node) Keys() []string {
	m, ok := n.v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Text reads a display string at path. Four encodings are in use upstream:
// a plain string, {"simpleText": "..."}, {"runs": [{"text": "..."}, ...]}
// and the view-model form {"content": "..."}.
func (n Node) Text(path ...string) (string, bool) {
	t := n.Get(path...)
	if s, ok := t.v.(string); ok {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	if s, ok := t.Str("simpleText"); ok {
		return strings.TrimSpace(s), true
	}
	if s, ok := t.Str("content"); ok {
		return strings.TrimSpace(s), true
	}
	runs := t.List("runs")
	if len(runs) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, r := range runs {
		if s, ok := r.Str("text"); ok {
			sb.WriteString(s)
		}
	}
	s := strings.TrimSpace(sb.String())
	return s, s != ""
}

// Find returns every value stored under key anywhere below n, depth-first.
// Lists are walked in document order and object keys in sorted order, so the
// result is deterministic. Matches are not searched for inside other matches.
func (n Node) Find(key string) []Node {
	return n.FindAny(key)
}

// FindAny is Find for several keys in one pass, so matches of different keys
// come back interleaved in document order.
func (n Node) FindAny(keys ...string) []Node {
	var out []Node
	var walk func(v any)
	walk = func(v any) {
		switch c := v.(type) {
		case map[string]any:
			var hits, rest []string
			for k := range c {
				if slices.Contains(keys, k) {
					hits = append(hits, k)
				} else {
					rest = append(rest, k)
				}
			}
			slices.Sort(hits)
			for _, k := range hits {
				if c[k] != nil {
					out = append(out, Node{v: c[k]})
				}
			}
			slices.Sort(rest)
			for _, k := range rest {
				walk(c[k])
			}
		case []any:
			for _, child := range c {
				walk(child)
			}
		}
	}
	walk(n.v)
	return out
}

// First returns the first value Find would yield, or a Missing node.
func (n Node) First(key string) Node {
	if found := n.Find(key); len(found) > 0 {
		return found[0]
	}
	return Node{}
}

// Unwrap returns the single child of a renderer wrapper such as
// {"c4TabbedHeaderRenderer": {...}}; upstream wraps most blocks this way.
// For objects with several keys it returns the first child that is itself an
// object, trying keys in sorted order so the result is deterministic.
func (n Node) Unwrap() Node {
	m, ok := n.v.(map[string]any)
	if !ok {
		return Node{}
	}
	if len(m) == 1 {
		for _, v := range m {
			return Node{v: v}
		}
	}
	keys := n.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		if _, isObj := m[k].(map[string]any); isObj {
			return Node{v: m[k]}
		}
	}
	return Node{}
}
