package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeySeparator separates the segments of a configuration key such as
// "client/html/checkout/standard/default/subparts".
const KeySeparator = "/"

// Provider resolves configuration values by slash-separated key.
type Provider interface {
	Get(key string) (any, bool)
}

// Tree is a nested configuration document addressed by slash-separated keys.
// A Tree is read-only once it is shared between requests.
type Tree struct {
	root map[string]any
}

// NewTree returns an empty configuration tree.
func NewTree() *Tree {
	return &Tree{root: map[string]any{}}
}

// ParseTree decodes a YAML document into a configuration tree.
func ParseTree(data []byte) (*Tree, error) {
	root := map[string]any{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode config tree: %w", err)
	}
	return &Tree{root: normalizeMap(root)}, nil
}

// ReadTree decodes a YAML document from r.
func ReadTree(r io.Reader) (*Tree, error) {
	if r == nil {
		return nil, fmt.Errorf("config reader is required")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config tree: %w", err)
	}
	return ParseTree(data)
}

// Get returns the value stored at key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	segments := splitKey(key)
	if len(segments) == 0 {
		return nil, false
	}
	var current any = t.root
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores value at key, creating intermediate nodes. Set must only be
// used while the tree is being assembled.
func (t *Tree) Set(key string, value any) {
	segments := splitKey(key)
	if t == nil || len(segments) == 0 {
		return
	}
	if t.root == nil {
		t.root = map[string]any{}
	}
	node := t.root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := node[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[segment] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
}

// Merge overlays other onto t. Maps are merged recursively; every other value
// in other replaces the value in t.
func (t *Tree) Merge(other *Tree) *Tree {
	if t == nil {
		t = NewTree()
	}
	if other == nil {
		return t
	}
	t.root = mergeMaps(t.root, other.root)
	return t
}

// String returns the string stored at key or fallback.
func String(p Provider, key string, fallback string) string {
	value, ok := lookup(p, key)
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fallback
	}
}

// Strings returns the list stored at key or fallback. A configured empty list
// is returned as an empty, non-nil slice.
func Strings(p Provider, key string, fallback []string) []string {
	value, ok := lookup(p, key)
	if !ok {
		return append([]string(nil), fallback...)
	}
	switch typed := value.(type) {
	case []string:
		return append([]string{}, typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			text, ok := item.(string)
			if !ok {
				return append([]string(nil), fallback...)
			}
			out = append(out, text)
		}
		return out
	case string:
		return []string{typed}
	default:
		return append([]string(nil), fallback...)
	}
}

// Map returns the mapping stored at key or fallback.
func Map(p Provider, key string, fallback map[string]any) map[string]any {
	value, ok := lookup(p, key)
	if !ok {
		return copyMap(fallback)
	}
	typed, ok := value.(map[string]any)
	if !ok {
		return copyMap(fallback)
	}
	return copyMap(typed)
}

// Bool returns the boolean stored at key or fallback.
func Bool(p Provider, key string, fallback bool) bool {
	value, ok := lookup(p, key)
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(typed)
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

func lookup(p Provider, key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	value, ok := p.Get(key)
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func splitKey(key string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(key), KeySeparator), KeySeparator)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = mergeMaps(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
	return dst
}

// normalizeMap converts the generic maps produced for non-string YAML keys
// into string-keyed maps so lookups behave uniformly.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func copyMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}
	out := make(map[string]any, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}
