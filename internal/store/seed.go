// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/model"
)

// Default admin credentials, used when none are configured.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme1234"
	DefaultAdminName     = "Administrator"
)

// SeedOptions configures Seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminID   int64
	HomePage  sql.NullInt64
	HeaderBar sql.NullInt64
}

// Seed creates the admin user, a draft home page and a header section
// group. Existing rows are left alone.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) (SeedResult, error) {
	queries := New(db)
	var res SeedResult

	email := opts.AdminEmail
	password := opts.AdminPassword
	if email == "" {
		email = DefaultAdminEmail
	}
	if password == "" {
		password = DefaultAdminPassword
	}

	admin, err := queries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Info("admin user already exists, skipping seed")
		res.AdminID = admin.ID
		return res, nil
	case !errors.Is(err, sql.ErrNoRows):
		return res, fmt.Errorf("checking for admin user: %w", err)
	}

	if err := auth.ValidatePassword(password); err != nil {
		return res, fmt.Errorf("admin password: %w", err)
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return res, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	admin, err = queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return res, fmt.Errorf("creating admin user: %w", err)
	}
	res.AdminID = admin.ID
	slog.Info("created admin user", "id", admin.ID, "email", admin.Email)

	home, err := queries.CreatePage(ctx, CreatePageParams{
		Title:     "Home",
		Slug:      "home",
		Locale:    "",
		Status:    model.PageStatusDraft,
		AuthorID:  sql.NullInt64{Int64: admin.ID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil && !IsUniqueViolation(err) {
		return res, fmt.Errorf("creating home page: %w", err)
	}
	if err == nil {
		res.HomePage = sql.NullInt64{Int64: home.ID, Valid: true}
	}

	header, err := queries.CreateSectionGroup(ctx, CreateSectionGroupParams{
		Name:      "Site header",
		Slug:      "site-header",
		Location:  model.LocationHeader,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil && !IsUniqueViolation(err) {
		return res, fmt.Errorf("creating header group: %w", err)
	}
	if err == nil {
		res.HeaderBar = sql.NullInt64{Int64: header.ID, Valid: true}
	}

	return res, nil
}
