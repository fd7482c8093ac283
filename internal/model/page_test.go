// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestCollectionRefRoundTrip(t *testing.T) {
	for _, ref := range []CollectionRef{PageCollection(7), GroupCollection(12)} {
		got, err := ParseCollectionRef(ref.String())
		if err != nil {
			t.Fatalf("ParseCollectionRef(%q): %v", ref.String(), err)
		}
		if got != ref {
			t.Errorf("got %+v, want %+v", got, ref)
		}
	}
}

func TestParseCollectionRefInvalid(t *testing.T) {
	for _, s := range []string{"", "page", "page/x", "menu/3", "group/0", "page/-1"} {
		if _, err := ParseCollectionRef(s); err == nil {
			t.Errorf("ParseCollectionRef(%q) succeeded, want error", s)
		}
	}
}

func TestValidPageStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{PageStatusDraft, true},
		{PageStatusScheduled, true},
		{PageStatusPublished, true},
		{"archived", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := ValidPageStatus(tt.status); got != tt.want {
				t.Errorf("ValidPageStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
