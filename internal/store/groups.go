// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const groupColumns = `id, name, slug, location, lock_version, created_at, updated_at`

func scanGroup(row scanner) (SectionGroup, error) {
	var g SectionGroup
	err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.Location, &g.LockVersion, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

type CreateSectionGroupParams struct {
	Name      string
	Slug      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateSectionGroup(ctx context.Context, arg CreateSectionGroupParams) (SectionGroup, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO section_groups (name, slug, location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING `+groupColumns,
		arg.Name, arg.Slug, arg.Location, arg.CreatedAt, arg.UpdatedAt)
	return scanGroup(row)
}

func (q *Queries) GetSectionGroupByID(ctx context.Context, id int64) (SectionGroup, error) {
	return scanGroup(q.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM section_groups WHERE id = ?`, id))
}

// GetSectionGroupByLocation returns the group bound to a layout location.
func (q *Queries) GetSectionGroupByLocation(ctx context.Context, location string) (SectionGroup, error) {
	return scanGroup(q.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM section_groups WHERE location = ?`, location))
}

func (q *Queries) ListSectionGroups(ctx context.Context) ([]SectionGroup, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM section_groups ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []SectionGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

type TouchSectionGroupParams struct {
	ID          int64
	UpdatedAt   time.Time
	LockVersion int64
}

// TouchSectionGroup is the section group counterpart of TouchPage.
func (q *Queries) TouchSectionGroup(ctx context.Context, arg TouchSectionGroupParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE section_groups SET updated_at = ?, lock_version = lock_version + 1
		 WHERE id = ? AND lock_version = ?`,
		arg.UpdatedAt, arg.ID, arg.LockVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
