// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"reflect"
	"testing"

	"github.com/olegiv/blockcms/internal/section"
)

// assertDense fails unless orders are exactly 0..N-1 in list position.
func assertDense(t *testing.T, l List) {
	t.Helper()
	for i, s := range l.Sections() {
		if s.Order != i {
			t.Fatalf("section %d (%s) has order %d", i, s.ID, s.Order)
		}
	}
}

func types(l List) []section.Type {
	var out []section.Type
	for _, s := range l.Sections() {
		out = append(out, s.Type)
	}
	return out
}

func TestListOperationsKeepOrdersDense(t *testing.T) {
	reg := section.Default()
	l := NewList(nil)

	l, hero := l.Add(reg, section.TypeHero, -1)
	assertDense(t, l)
	l, text := l.Add(reg, section.TypeText, -1)
	assertDense(t, l)
	l, faq := l.Add(reg, section.TypeFAQ, 0)
	assertDense(t, l)

	steps := []struct {
		name string
		op   func(List) List
		want []section.Type
	}{
		{"initial", func(l List) List { return l }, []section.Type{"faq", "hero", "text"}},
		{"move down", func(l List) List { return l.MoveDown(faq) }, []section.Type{"hero", "faq", "text"}},
		{"move to end", func(l List) List { return l.Move(hero, 99) }, []section.Type{"faq", "text", "hero"}},
		{"move up", func(l List) List { return l.MoveUp(text) }, []section.Type{"text", "faq", "hero"}},
		{"move up at top", func(l List) List { return l.MoveUp(text) }, []section.Type{"text", "faq", "hero"}},
		{"duplicate", func(l List) List { l, _ = l.Duplicate(faq); return l }, []section.Type{"text", "faq", "faq", "hero"}},
		{"toggle", func(l List) List { return l.Toggle(hero) }, []section.Type{"text", "faq", "faq", "hero"}},
		{"remove", func(l List) List { return l.Remove(text) }, []section.Type{"faq", "faq", "hero"}},
		{"unknown id", func(l List) List { return l.Remove("nope").MoveUp("nope").Toggle("nope") }, []section.Type{"faq", "faq", "hero"}},
	}
	for _, step := range steps {
		l = step.op(l)
		assertDense(t, l)
		if got := types(l); !reflect.DeepEqual(got, step.want) {
			t.Fatalf("%s: types = %v, want %v", step.name, got, step.want)
		}
	}

	s, _ := l.Get(hero)
	if s.Enabled {
		t.Error("hero should be disabled after toggle")
	}
}

func TestListAddUsesDefaults(t *testing.T) {
	reg := section.Default()
	l, id := NewList(nil).Add(reg, section.TypeHero, 0)

	if !IsTempID(id) {
		t.Errorf("id %q is not temporary", id)
	}
	s, ok := l.Get(id)
	if !ok {
		t.Fatal("added section not found")
	}
	if !s.Enabled {
		t.Error("new sections are enabled")
	}
	if !reflect.DeepEqual(s.Props, reg.Defaults(section.TypeHero)) {
		t.Errorf("props = %v, want defaults", s.Props)
	}
}

func TestListIsImmutable(t *testing.T) {
	reg := section.Default()
	base, id := NewList(nil).Add(reg, section.TypeText, 0)
	before := base.Sections()

	_ = base.PatchProps(id, section.Props{"html": "<p>changed</p>"})
	_ = base.Toggle(id)
	_, _ = base.Duplicate(id)
	_ = base.Remove(id)

	if !reflect.DeepEqual(base.Sections(), before) {
		t.Error("operations modified the original list")
	}
}

func TestListDuplicateIsDeep(t *testing.T) {
	reg := section.Default()
	l, id := NewList(nil).Add(reg, section.TypeFAQ, 0)
	l = l.PatchProps(id, section.Props{"items": []any{map[string]any{"question": "Q", "answer": "A"}}})

	l, dup := l.Duplicate(id)
	if dup == id || !IsTempID(dup) {
		t.Fatalf("duplicate id %q", dup)
	}
	if got := l.Index(dup); got != 1 {
		t.Errorf("duplicate at %d, want 1", got)
	}

	copied, _ := l.Get(dup)
	copied.Props["items"].([]any)[0].(map[string]any)["question"] = "changed"
	orig, _ := l.Get(id)
	if q := orig.Props["items"].([]any)[0].(map[string]any)["question"]; q != "Q" {
		t.Errorf("original question = %v", q)
	}
}

func TestNewListSortsAndAssignsIDs(t *testing.T) {
	l := NewList([]section.Section{
		{ID: "b", Type: section.TypeText, Order: 5},
		{Type: section.TypeHero, Order: 2},
		{ID: "c", Type: section.TypeFAQ, Order: 5},
	})
	assertDense(t, l)
	ids := l.IDs()
	if !IsTempID(ids[0]) || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("ids = %v", ids)
	}
}

func TestListRenameIDs(t *testing.T) {
	l := NewList([]section.Section{{ID: "tmp-1", Type: section.TypeText}, {ID: "7", Type: section.TypeHero, Order: 1}})
	l = l.RenameIDs(map[string]string{"tmp-1": "12"})
	if got := l.IDs(); !reflect.DeepEqual(got, []string{"12", "7"}) {
		t.Errorf("ids = %v", got)
	}
}

func TestIsTempID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", true},
		{NewTempID(), true},
		{"tmp-x", true},
		{"42", false},
		{"temp-1", false},
	}
	for _, tt := range tests {
		if got := IsTempID(tt.id); got != tt.want {
			t.Errorf("IsTempID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	reg := section.Default()

	hero := reg.New(section.TypeHero)
	hero.Props["title"] = "  "
	errs := Validate(reg, hero)
	if len(errs) != 1 || errs[0].Field != "title" {
		t.Errorf("hero errors = %v", errs)
	}

	if errs := Validate(reg, section.Section{Type: "slider"}); len(errs) != 1 || errs[0].Field != "type" {
		t.Errorf("unknown type errors = %v", errs)
	}

	l, _ := NewList(nil).Add(reg, section.TypeText, 0)
	if errs := l.Validate(reg); errs != nil {
		t.Errorf("text section should be valid: %v", errs)
	}
}
