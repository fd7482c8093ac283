// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const revisionColumns = `id, collection_kind, collection_id, version, source, note, snapshot, created_by, created_at`

func scanRevision(row scanner) (Revision, error) {
	var r Revision
	err := row.Scan(&r.ID, &r.CollectionKind, &r.CollectionID, &r.Version, &r.Source, &r.Note,
		&r.Snapshot, &r.CreatedBy, &r.CreatedAt)
	return r, err
}

type CollectionParams struct {
	Kind string
	ID   int64
}

// GetMaxRevisionVersion returns the highest revision version of a
// collection, or 0 when it has none.
func (q *Queries) GetMaxRevisionVersion(ctx context.Context, arg CollectionParams) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM revisions WHERE collection_kind = ? AND collection_id = ?`,
		arg.Kind, arg.ID).Scan(&v)
	return v, err
}

type CreateRevisionParams struct {
	CollectionKind string
	CollectionID   int64
	Version        int64
	Source         string
	Note           string
	Snapshot       string
	CreatedBy      sql.NullInt64
	CreatedAt      time.Time
}

func (q *Queries) CreateRevision(ctx context.Context, arg CreateRevisionParams) (Revision, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO revisions (collection_kind, collection_id, version, source, note, snapshot, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+revisionColumns,
		arg.CollectionKind, arg.CollectionID, arg.Version, arg.Source, arg.Note, arg.Snapshot, arg.CreatedBy, arg.CreatedAt)
	return scanRevision(row)
}

type ListRevisionsParams struct {
	Kind  string
	ID    int64
	Limit int64
}

// ListRevisions returns the newest revisions of a collection first.
func (q *Queries) ListRevisions(ctx context.Context, arg ListRevisionsParams) ([]Revision, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+revisionColumns+` FROM revisions
		 WHERE collection_kind = ? AND collection_id = ?
		 ORDER BY version DESC LIMIT ?`,
		arg.Kind, arg.ID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) GetRevision(ctx context.Context, id int64) (Revision, error) {
	return scanRevision(q.db.QueryRowContext(ctx, `SELECT `+revisionColumns+` FROM revisions WHERE id = ?`, id))
}
