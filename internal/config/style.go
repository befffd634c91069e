package config

import (
	"fmt"
	"sort"
	"strings"
)

// Style is an opaque set of decoration attributes (color, backgroundColor,
// overviewRulerColor, border, ...). Keys are kept in their canonical
// camelCase spelling; values are passed to the renderer untouched.
type Style map[string]any

// Known decoration attribute names. Settings loaders may lowercase keys,
// so lookups go through canonicalStyleKey.
var styleKeys = []string{
	"after",
	"backgroundColor",
	"before",
	"border",
	"borderColor",
	"borderRadius",
	"borderSpacing",
	"borderStyle",
	"borderWidth",
	"color",
	"cursor",
	"dark",
	"fontStyle",
	"fontWeight",
	"gutterIconPath",
	"gutterIconSize",
	"isWholeLine",
	"letterSpacing",
	"light",
	"opacity",
	"outline",
	"outlineColor",
	"outlineStyle",
	"outlineWidth",
	"overviewRulerColor",
	"overviewRulerLane",
	"rangeBehavior",
	"textDecoration",
}

var styleKeyIndex = func() map[string]string {
	m := make(map[string]string, len(styleKeys))
	for _, k := range styleKeys {
		m[strings.ToLower(k)] = k
	}
	return m
}()

func canonicalStyleKey(k string) string {
	if c, ok := styleKeyIndex[strings.ToLower(k)]; ok {
		return c
	}
	return k
}

// Ruler lanes of the overview ruler.
const (
	RulerLaneLeft   = "left"
	RulerLaneCenter = "center"
	RulerLaneRight  = "right"
	RulerLaneFull   = "full"
)

// NewStyle builds a style from raw attributes, canonicalizing key spelling.
// Nested maps are normalized to map[string]any.
func NewStyle(raw map[string]any) Style {
	if raw == nil {
		return nil
	}
	s := make(Style, len(raw))
	for k, v := range raw {
		s[canonicalStyleKey(k)] = normalizeValue(v)
	}
	return s
}

// Clone returns a shallow copy of s.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new style with layers applied over s in order. Later
// layers win per attribute.
func (s Style) Merge(layers ...Style) Style {
	out := s.Clone()
	if out == nil {
		out = Style{}
	}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// String returns attribute key as a string, "" when absent.
func (s Style) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Has reports whether key is set to a non-empty value.
func (s Style) Has(key string) bool {
	return s.String(key) != ""
}

// Color returns the foreground color.
func (s Style) Color() string { return s.String("color") }

// BackgroundColor returns the background color.
func (s Style) BackgroundColor() string { return s.String("backgroundColor") }

// RulerColor returns the overview ruler color.
func (s Style) RulerColor() string { return s.String("overviewRulerColor") }

// Keys returns the attribute names in sorted order.
func (s Style) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both styles hold the same attributes.
func (s Style) Equal(other Style) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || fmt.Sprint(v) != fmt.Sprint(ov) {
			return false
		}
	}
	return true
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[canonicalStyleKey(k)] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[canonicalStyleKey(fmt.Sprint(k))] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
