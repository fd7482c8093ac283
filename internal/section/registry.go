// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package section

import (
	"strings"
	"sync"
)

// FieldKind describes how a prop is coerced and which editor control edits it.
type FieldKind string

// Field kinds.
const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindHTML     FieldKind = "html"
	KindURL      FieldKind = "url"
	KindImage    FieldKind = "image"
	KindColor    FieldKind = "color"
	KindBool     FieldKind = "bool"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindItems    FieldKind = "items"
)

// Field describes one prop of a section type.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Default  any       `json:"default"`
	Min      int       `json:"min,omitempty"`
	Max      int       `json:"max,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required,omitempty"`
	Item     []Field   `json:"item,omitempty"`

	// Aliases are legacy prop names read when Name is absent.
	Aliases []string `json:"-"`
}

// Spec is the schema of one section type.
type Spec struct {
	Type   Type    `json:"type"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`

	// upgrade rewrites legacy shapes before field coercion. It must not
	// modify its argument.
	upgrade func(Props) Props
}

// Defaults returns the props for a freshly added section of this type.
func (s *Spec) Defaults() Props {
	return s.Normalize(nil)
}

// Normalize coerces raw into exactly the fields of s. Missing or malformed
// values fall back to field defaults, unknown keys are dropped. The input is
// never modified.
func (s *Spec) Normalize(raw Props) Props {
	if raw == nil {
		raw = Props{}
	}
	if s.upgrade != nil {
		raw = s.upgrade(raw)
	}
	return normalizeFields(s.Fields, raw)
}

// Field returns the named field.
func (s *Spec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HTMLFields lists the top-level fields holding rich HTML.
func (s *Spec) HTMLFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == KindHTML {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldError is a field-local validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate reports required fields left empty in already normalised props.
func (s *Spec) Validate(p Props) []FieldError {
	var errs []FieldError
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		switch f.Kind {
		case KindItems:
			if len(Items(p[f.Name])) == 0 {
				errs = append(errs, FieldError{Field: f.Name, Message: f.Label + " needs at least one entry"})
			}
		default:
			if strings.TrimSpace(String(p[f.Name], "")) == "" {
				errs = append(errs, FieldError{Field: f.Name, Message: f.Label + " is required"})
			}
		}
	}
	return errs
}

func normalizeFields(fields []Field, raw map[string]any) Props {
	out := make(Props, len(fields))
	for _, f := range fields {
		v, ok := lookup(raw, f)
		out[f.Name] = f.coerce(v, ok)
	}
	return out
}

func lookup(raw map[string]any, f Field) (any, bool) {
	if v, ok := raw[f.Name]; ok && v != nil {
		return v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := raw[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (f Field) coerce(v any, present bool) any {
	switch f.Kind {
	case KindBool:
		def, _ := f.Default.(bool)
		if !present {
			return def
		}
		return Bool(v, def)
	case KindNumber:
		def, _ := f.Default.(int)
		n := def
		if present {
			n = Int(v, def)
		}
		if f.Min != 0 || f.Max != 0 {
			n = Clamp(n, f.Min, f.Max)
		}
		return n
	case KindSelect:
		def, _ := f.Default.(string)
		if !present {
			return def
		}
		s := strings.TrimSpace(String(v, ""))
		for _, opt := range f.Options {
			if strings.EqualFold(opt, s) {
				return opt
			}
		}
		return def
	case KindItems:
		if !present {
			return cloneValue(f.Default)
		}
		items := Items(v)
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, map[string]any(normalizeFields(f.Item, item)))
		}
		return out
	case KindHTML:
		def, _ := f.Default.(string)
		if !present {
			return def
		}
		return String(v, def)
	default:
		def, _ := f.Default.(string)
		if !present {
			return def
		}
		return strings.TrimSpace(String(v, def))
	}
}

// Registry maps section types to their specs.
type Registry struct {
	specs map[Type]*Spec
	order []Type
}

// NewRegistry builds a registry from specs. Later specs replace earlier ones
// of the same type.
func NewRegistry(specs ...*Spec) *Registry {
	r := &Registry{specs: make(map[Type]*Spec, len(specs))}
	for _, s := range specs {
		if _, exists := r.specs[s.Type]; !exists {
			r.order = append(r.order, s.Type)
		}
		r.specs[s.Type] = s
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(builtinSpecs()...)
})

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns the spec for t.
func (r *Registry) Lookup(t Type) (*Spec, bool) {
	s, ok := r.specs[t]
	return s, ok
}

// Specs returns every spec in registration order.
func (r *Registry) Specs() []*Spec {
	out := make([]*Spec, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.specs[t])
	}
	return out
}

// Defaults returns default props for t, or empty props for an unknown type.
func (r *Registry) Defaults(t Type) Props {
	if s, ok := r.specs[t]; ok {
		return s.Defaults()
	}
	return Props{}
}

// Normalize coerces raw props for t. Unknown types normalise to empty props.
func (r *Registry) Normalize(t Type, raw Props) Props {
	if s, ok := r.specs[t]; ok {
		return s.Normalize(raw)
	}
	return Props{}
}

// New returns an enabled section of type t with default props.
func (r *Registry) New(t Type) Section {
	return Section{Type: t, Enabled: true, Props: r.Defaults(t)}
}
