// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package section defines the closed set of content section types, their
// default property bags and the normalisation rules that coerce arbitrary
// stored or submitted props into the canonical shape for each type.
package section

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Type identifies a section kind. The set is closed; see AllTypes.
type Type string

// Section types.
const (
	TypeHero      Type = "hero"
	TypeText      Type = "text"
	TypeRichText  Type = "richText"
	TypeRawHTML   Type = "rawHtml"
	TypeColumns   Type = "columns"
	TypeImage     Type = "image"
	TypeFAQ       Type = "faq"
	TypeEmbed     Type = "embed"
	TypePageStyle Type = "pageStyle"
	TypeCallout   Type = "callout"
	TypeAccordion Type = "accordion"
)

// AllTypes lists every section type in palette order.
var AllTypes = []Type{
	TypeHero,
	TypeText,
	TypeRichText,
	TypeRawHTML,
	TypeColumns,
	TypeImage,
	TypeFAQ,
	TypeEmbed,
	TypeCallout,
	TypeAccordion,
	TypePageStyle,
}

// ParseType resolves a type name. Matching is case-insensitive so that
// legacy rows written as "richtext" or "RawHTML" still resolve.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	for _, t := range AllTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is exactly one of the known types.
func (t Type) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// Props is the per-type property bag. Values are JSON-compatible.
type Props map[string]any

// Clone returns a deep copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return cloneValue(map[string]any(p)).(map[string]any)
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = cloneValue(val)
		}
		return out
	case Props:
		return Props(cloneValue(map[string]any(x)).(map[string]any))
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Merge returns a copy of p with patch applied on top.
func (p Props) Merge(patch Props) Props {
	out := p.Clone()
	maps.Copy(out, Props(patch).Clone())
	return out
}

// Section is one ordered block of content inside a page or group.
// ID is empty or a temporary id for sections that have never been saved.
type Section struct {
	ID      string `json:"id,omitempty"`
	Type    Type   `json:"type"`
	Order   int    `json:"order"`
	Enabled bool   `json:"enabled"`
	Props   Props  `json:"props"`
}

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	s.Props = s.Props.Clone()
	return s
}

// String coerces v to a string. Numbers are formatted without exponent,
// nil and composite values yield def.
func String(v any, def string) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return def
	}
}

// Bool coerces v to a bool. Accepts bools, numbers and the usual string
// spellings of true/false.
func Bool(v any, def bool) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return def
		}
		return f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "on", "yes":
			return true
		case "false", "0", "off", "no", "":
			return false
		}
	}
	return def
}

// Int coerces v to an int. Strings may carry a "px" or "%" suffix.
// Non-finite or unparseable input yields def.
func Int(v any, def int) int {
	var f float64
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		f = x
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return def
		}
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimSuffix(s, "px")
		s = strings.TrimSuffix(s, "%")
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return def
		}
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(math.Round(f))
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

// Items coerces v to a list of objects. Non-object entries are dropped.
func Items(v any) []map[string]any {
	var out []map[string]any
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if m, ok := asMap(item); ok {
				out = append(out, m)
			}
		}
	case []map[string]any:
		out = append(out, x...)
	case map[string]any:
		// Objects keyed "0", "1", ... are treated as arrays.
		if keys := numericKeys(x); keys != nil {
			for _, k := range keys {
				if m, ok := asMap(x[strconv.Itoa(k)]); ok {
					out = append(out, m)
				}
			}
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Props:
		return map[string]any(m), true
	}
	return nil, false
}

// numericKeys returns the sorted integer keys of m, or nil when any key is
// not a non-negative integer.
func numericKeys(m map[string]any) []int {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return nil
		}
		keys = append(keys, n)
	}
	slices.Sort(keys)
	return keys
}
