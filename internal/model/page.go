// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusScheduled = "scheduled"
	PageStatusPublished = "published"
)

// ValidPageStatus reports whether s is a known page status.
func ValidPageStatus(s string) bool {
	switch s {
	case PageStatusDraft, PageStatusScheduled, PageStatusPublished:
		return true
	}
	return false
}

// Group locations. At most one section group exists per location.
const (
	LocationHeader = "header"
	LocationFooter = "footer"
	LocationBanner = "banner"
)

// ValidLocation reports whether loc is a known group location.
func ValidLocation(loc string) bool {
	switch loc {
	case LocationHeader, LocationFooter, LocationBanner:
		return true
	}
	return false
}

// CollectionKind distinguishes the two kinds of section owners.
type CollectionKind string

// Collection kinds.
const (
	CollectionPage  CollectionKind = "page"
	CollectionGroup CollectionKind = "group"
)

// CollectionRef identifies a page or a global section group.
type CollectionRef struct {
	Kind CollectionKind `json:"kind"`
	ID   int64          `json:"id"`
}

// PageCollection returns the ref of page id.
func PageCollection(id int64) CollectionRef {
	return CollectionRef{Kind: CollectionPage, ID: id}
}

// GroupCollection returns the ref of section group id.
func GroupCollection(id int64) CollectionRef {
	return CollectionRef{Kind: CollectionGroup, ID: id}
}

// Valid reports whether r names a collection.
func (r CollectionRef) Valid() bool {
	return (r.Kind == CollectionPage || r.Kind == CollectionGroup) && r.ID > 0
}

// IsPage reports whether r refers to a page.
func (r CollectionRef) IsPage() bool {
	return r.Kind == CollectionPage
}

func (r CollectionRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// ParseCollectionRef parses the "kind/id" form produced by String.
func ParseCollectionRef(s string) (CollectionRef, error) {
	kind, id, ok := strings.Cut(s, "/")
	if !ok {
		return CollectionRef{}, fmt.Errorf("invalid collection ref %q", s)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return CollectionRef{}, fmt.Errorf("invalid collection id in %q: %w", s, err)
	}
	ref := CollectionRef{Kind: CollectionKind(kind), ID: n}
	if !ref.Valid() {
		return CollectionRef{}, fmt.Errorf("invalid collection ref %q", s)
	}
	return ref, nil
}

// ReferencePage is an internal page offered in editor pick-lists.
type ReferencePage struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Locale string `json:"locale"`
}

// ReferenceData is the read-only pick-list data loaded once per editing
// session.
type ReferenceData struct {
	Pages     []ReferencePage `json:"pages"`
	MediaURLs []string        `json:"mediaUrls"`
}
