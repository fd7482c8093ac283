// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "testing"

func TestSafeColor(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"#fff", "#fff"},
		{"#1f2937", "#1f2937"},
		{"rgb(0, 0, 0)", "rgb(0, 0, 0)"},
		{"rgba(0,0,0,0.5)", "rgba(0,0,0,0.5)"},
		{"red;background:url(x)", "#000"},
		{"expression(alert(1))", "#000"},
		{42, "#000"},
		{nil, "#000"},
	}
	for _, tt := range tests {
		if got := SafeColor(tt.in, "#000"); got != tt.want {
			t.Errorf("SafeColor(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		image string
	}{
		{"/about", "/about", "/about"},
		{"https://example.com/x", "https://example.com/x", "https://example.com/x"},
		{"mailto:a@example.com", "mailto:a@example.com", "mailto:a@example.com"},
		{"javascript:alert(1)", "", ""},
		{"java\tscript:alert(1)", "", ""},
		{"data:image/png;base64,iVBORw0KGgo=", "", "data:image/png;base64,iVBORw0KGgo="},
		{"data:text/html;base64,PHNjcmlwdD4=", "", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.in); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got := SafeImageURL(tt.in); got != tt.image {
			t.Errorf("SafeImageURL(%q) = %q, want %q", tt.in, got, tt.image)
		}
	}
}

func TestSafeScalars(t *testing.T) {
	if !SafeBool("yes", false) || SafeBool("0", true) || !SafeBool(1.0, false) || !SafeBool([]any{}, true) {
		t.Error("SafeBool coercions")
	}
	gaps := map[any]int{"12px": 12, -5.0: 0, 900.0: 200, "wide": 24, nil: 24}
	for in, want := range gaps {
		if got := SafeGap(in, 24); got != want {
			t.Errorf("SafeGap(%v) = %d, want %d", in, got, want)
		}
	}
	opts := []string{"a", "b"}
	if SafeSelect("b", opts, "a") != "b" || SafeSelect("c", opts, "a") != "a" || SafeSelect(nil, opts, "a") != "a" {
		t.Error("SafeSelect")
	}
}
