// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/blockcms/internal/section"
)

// Validate returns the field-local problems of s. Props are normalised
// first, so only missing required values are reported.
func Validate(reg *section.Registry, s section.Section) []section.FieldError {
	spec, ok := reg.Lookup(s.Type)
	if !ok {
		return []section.FieldError{{Field: "type", Message: fmt.Sprintf("unknown section type %q", s.Type)}}
	}
	return spec.Validate(spec.Normalize(s.Props))
}

// Validate checks every section and returns the problems keyed by section
// id. The result is nil when the list is valid.
func (l List) Validate(reg *section.Registry) map[string][]section.FieldError {
	var out map[string][]section.FieldError
	for _, s := range l.items {
		if errs := Validate(reg, s); len(errs) > 0 {
			if out == nil {
				out = make(map[string][]section.FieldError)
			}
			out[s.ID] = errs
		}
	}
	return out
}

// ValidationError reports field-local problems that block a save.
type ValidationError struct {
	Sections map[string][]section.FieldError
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Sections))
	for id := range e.Sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var parts []string
	for _, id := range ids {
		for _, fe := range e.Sections[id] {
			parts = append(parts, id+"."+fe.Field+": "+fe.Message)
		}
	}
	return "invalid sections: " + strings.Join(parts, "; ")
}
