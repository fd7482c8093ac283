// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const pageColumns = `id, title, slug, locale, status, meta_title, meta_description, author_id,
	scheduled_at, published_at, lock_version, created_at, updated_at`

func scanPage(row scanner) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Locale, &p.Status, &p.MetaTitle, &p.MetaDescription,
		&p.AuthorID, &p.ScheduledAt, &p.PublishedAt, &p.LockVersion, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) queryPages(ctx context.Context, query string, args ...any) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type CreatePageParams struct {
	Title           string
	Slug            string
	Locale          string
	Status          string
	MetaTitle       string
	MetaDescription string
	AuthorID        sql.NullInt64
	ScheduledAt     sql.NullTime
	PublishedAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO pages (title, slug, locale, status, meta_title, meta_description, author_id,
			scheduled_at, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+pageColumns,
		arg.Title, arg.Slug, arg.Locale, arg.Status, arg.MetaTitle, arg.MetaDescription, arg.AuthorID,
		arg.ScheduledAt, arg.PublishedAt, arg.CreatedAt, arg.UpdatedAt)
	return scanPage(row)
}

func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
}

type GetPageBySlugParams struct {
	Locale string
	Slug   string
}

func (q *Queries) GetPageBySlug(ctx context.Context, arg GetPageBySlugParams) (Page, error) {
	return scanPage(q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE locale = ? AND slug = ?`, arg.Locale, arg.Slug))
}

func (q *Queries) ListPages(ctx context.Context) ([]Page, error) {
	return q.queryPages(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY title, id`)
}

// ListDueScheduledPages returns scheduled pages whose publish time is at
// or before now.
func (q *Queries) ListDueScheduledPages(ctx context.Context, now time.Time) ([]Page, error) {
	return q.queryPages(ctx,
		`SELECT `+pageColumns+` FROM pages
		 WHERE status = 'scheduled' AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		 ORDER BY scheduled_at, id`, now)
}

// TouchPageParams carries a compare-and-swap on lock_version.
type TouchPageParams struct {
	ID          int64
	UpdatedAt   time.Time
	LockVersion int64
}

// TouchPage sets updated_at and bumps lock_version when the stored
// lock_version still matches. It returns the number of rows changed.
func (q *Queries) TouchPage(ctx context.Context, arg TouchPageParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pages SET updated_at = ?, lock_version = lock_version + 1
		 WHERE id = ? AND lock_version = ?`,
		arg.UpdatedAt, arg.ID, arg.LockVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type UpdatePageMetaParams struct {
	ID              int64
	Title           string
	Slug            string
	Locale          string
	Status          string
	MetaTitle       string
	MetaDescription string
	ScheduledAt     sql.NullTime
	PublishedAt     sql.NullTime
	UpdatedAt       time.Time
	LockVersion     int64
}

// UpdatePageMeta writes page metadata with the same compare-and-swap as
// TouchPage.
func (q *Queries) UpdatePageMeta(ctx context.Context, arg UpdatePageMetaParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pages SET title = ?, slug = ?, locale = ?, status = ?, meta_title = ?, meta_description = ?,
			scheduled_at = ?, published_at = ?, updated_at = ?, lock_version = lock_version + 1
		 WHERE id = ? AND lock_version = ?`,
		arg.Title, arg.Slug, arg.Locale, arg.Status, arg.MetaTitle, arg.MetaDescription,
		arg.ScheduledAt, arg.PublishedAt, arg.UpdatedAt, arg.ID, arg.LockVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}
