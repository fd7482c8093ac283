// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sanitize

import (
	"github.com/olegiv/blockcms/internal/section"
)

// Normalizer coerces and sanitises section props against a registry.
type Normalizer struct {
	registry *section.Registry
}

// NewNormalizer creates a Normalizer for the given registry.
func NewNormalizer(r *section.Registry) *Normalizer {
	if r == nil {
		r = section.Default()
	}
	return &Normalizer{registry: r}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize runs raw through the built-in registry and sanitises the result.
func Normalize(t section.Type, raw section.Props) section.Props {
	return defaultNormalizer.Normalize(t, raw)
}

// Registry returns the registry backing n.
func (n *Normalizer) Registry() *section.Registry {
	return n.registry
}

// Normalize returns props with exactly the schema fields of t. HTML fields
// are filtered through the allow-list policy, URL and color fields that do
// not match a safe pattern are emptied. It never fails and is idempotent.
func (n *Normalizer) Normalize(t section.Type, raw section.Props) section.Props {
	spec, ok := n.registry.Lookup(t)
	if !ok {
		return section.Props{}
	}
	props := spec.Normalize(raw)
	cleanFields(spec.Fields, props)
	return props
}

// Section returns a copy of s with normalised props.
func (n *Normalizer) Section(s section.Section) section.Section {
	s.Props = n.Normalize(s.Type, s.Props)
	return s
}

func cleanFields(fields []section.Field, props map[string]any) {
	for _, f := range fields {
		switch f.Kind {
		case section.KindHTML:
			props[f.Name] = HTML(section.String(props[f.Name], ""))
		case section.KindURL:
			props[f.Name] = URL(section.String(props[f.Name], ""))
		case section.KindImage:
			props[f.Name] = ImageURL(section.String(props[f.Name], ""))
		case section.KindColor:
			props[f.Name] = Color(section.String(props[f.Name], ""))
		case section.KindItems:
			items, _ := props[f.Name].([]any)
			for _, item := range items {
				if m, ok := item.(map[string]any); ok {
					cleanFields(f.Item, m)
				}
			}
		}
	}
}
