// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Page struct {
	ID              int64
	Title           string
	Slug            string
	Locale          string
	Status          string
	MetaTitle       string
	MetaDescription string
	AuthorID        sql.NullInt64
	ScheduledAt     sql.NullTime
	PublishedAt     sql.NullTime
	LockVersion     int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SectionGroup struct {
	ID          int64
	Name        string
	Slug        string
	Location    string
	LockVersion int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Section struct {
	ID        int64
	PageID    sql.NullInt64
	GroupID   sql.NullInt64
	Type      string
	SortOrder int64
	Enabled   bool
	Props     string
	CreatedAt time.Time
}

type Revision struct {
	ID             int64
	CollectionKind string
	CollectionID   int64
	Version        int64
	Source         string
	Note           string
	Snapshot       string
	CreatedBy      sql.NullInt64
	CreatedAt      time.Time
}

type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IpAddress string
	CreatedAt time.Time
}
