// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/olegiv/blockcms/internal/section"
)

// RevisionSource tags why a revision was written.
type RevisionSource string

// Revision sources.
const (
	SourceSections RevisionSource = "sections"
	SourceMetadata RevisionSource = "metadata"
	SourcePublish  RevisionSource = "publish"
	SourceRestore  RevisionSource = "restore"
)

// Valid reports whether s is a known source.
func (s RevisionSource) Valid() bool {
	switch s {
	case SourceSections, SourceMetadata, SourcePublish, SourceRestore:
		return true
	}
	return false
}

// Revision is an immutable snapshot of a collection. Snapshot is nil in
// listings.
type Revision struct {
	ID         int64          `json:"id"`
	Collection CollectionRef  `json:"collection"`
	Version    int            `json:"version"`
	Source     RevisionSource `json:"source"`
	Note       string         `json:"note,omitempty"`
	CreatedBy  int64          `json:"createdBy,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Snapshot   *Snapshot      `json:"snapshot,omitempty"`
}

// Snapshot is the content captured by a revision: the collection metadata
// and its full section list.
type Snapshot struct {
	Title           string            `json:"title,omitempty"`
	Slug            string            `json:"slug,omitempty"`
	Locale          string            `json:"locale,omitempty"`
	Status          string            `json:"status,omitempty"`
	MetaTitle       string            `json:"metaTitle,omitempty"`
	MetaDescription string            `json:"metaDescription,omitempty"`
	Name            string            `json:"name,omitempty"`
	Location        string            `json:"location,omitempty"`
	Sections        []section.Section `json:"sections"`
}
