// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const sectionColumns = `id, page_id, group_id, type, sort_order, enabled, props, created_at`

func (q *Queries) querySections(ctx context.Context, query string, args ...any) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.PageID, &s.GroupID, &s.Type, &s.SortOrder, &s.Enabled, &s.Props, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (q *Queries) ListSectionsByPage(ctx context.Context, pageID int64) ([]Section, error) {
	return q.querySections(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE page_id = ? ORDER BY sort_order, id`, pageID)
}

func (q *Queries) ListSectionsByGroup(ctx context.Context, groupID int64) ([]Section, error) {
	return q.querySections(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE group_id = ? ORDER BY sort_order, id`, groupID)
}

// ListAllSections returns every stored section, used to harvest media
// references.
func (q *Queries) ListAllSections(ctx context.Context) ([]Section, error) {
	return q.querySections(ctx, `SELECT `+sectionColumns+` FROM sections ORDER BY id`)
}

func (q *Queries) DeleteSectionsByPage(ctx context.Context, pageID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sections WHERE page_id = ?`, pageID)
	return err
}

func (q *Queries) DeleteSectionsByGroup(ctx context.Context, groupID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sections WHERE group_id = ?`, groupID)
	return err
}

// InsertSectionParams describes one section row. A valid ID re-inserts
// the section under its existing id.
type InsertSectionParams struct {
	ID        sql.NullInt64
	PageID    sql.NullInt64
	GroupID   sql.NullInt64
	Type      string
	SortOrder int64
	Enabled   bool
	Props     string
	CreatedAt time.Time
}

func (q *Queries) InsertSection(ctx context.Context, arg InsertSectionParams) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO sections (id, page_id, group_id, type, sort_order, enabled, props, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		arg.ID, arg.PageID, arg.GroupID, arg.Type, arg.SortOrder, arg.Enabled, arg.Props, arg.CreatedAt).Scan(&id)
	return id, err
}
