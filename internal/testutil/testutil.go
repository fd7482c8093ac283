// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for blockcms.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary database with every migration applied. It is
// closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openMigrated(t, 0)
}

// TestDBWithoutHistory creates a database migrated only up to the core
// schema, so the revisions table is missing.
func TestDBWithoutHistory(t *testing.T) *sql.DB {
	t.Helper()
	return openMigrated(t, store.VersionCore)
}

func openMigrated(t *testing.T, version int64) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "blockcms-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if version == 0 {
		err = store.Migrate(db)
	} else {
		err = store.MigrateTo(db, version)
	}
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestMemoryDB creates an in-memory SQLite database through the cgo driver.
// Useful for tests that don't need the migrated schema.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *sql.DB, email, role string) store.User {
	t.Helper()

	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Name:         email,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreatePage inserts a draft page in the en locale.
func CreatePage(t *testing.T, db *sql.DB, title, slug string) store.Page {
	t.Helper()

	now := time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond)
	p, err := store.New(db).CreatePage(context.Background(), store.CreatePageParams{
		Title:     title,
		Slug:      slug,
		Locale:    "en",
		Status:    model.PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	return p
}

// CreateGroup inserts a section group bound to location.
func CreateGroup(t *testing.T, db *sql.DB, name, location string) store.SectionGroup {
	t.Helper()

	now := time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond)
	g, err := store.New(db).CreateSectionGroup(context.Background(), store.CreateSectionGroupParams{
		Name:      name,
		Slug:      location,
		Location:  location,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSectionGroup: %v", err)
	}
	return g
}
