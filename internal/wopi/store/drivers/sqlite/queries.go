package sqlite

import (
	"context"
	"database/sql"
)

type dbtx interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type queries struct {
	db dbtx
}

type artifactRow struct {
	ID        string
	FileName  string
	OwnerID   string
	Size      int64
	Sha256    string
	Content   []byte
	CreatedAt int64
	UpdatedAt int64
}

const getArtifact = `
SELECT id, file_name, owner_id, size, sha256, content, created_at, updated_at
FROM artifacts
WHERE id = ?`

func (q *queries) GetArtifact(ctx context.Context, id string) (artifactRow, error) {
	var r artifactRow
	err := q.db.QueryRowContext(ctx, getArtifact, id).Scan(
		&r.ID, &r.FileName, &r.OwnerID, &r.Size, &r.Sha256, &r.Content, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

const listArtifacts = `
SELECT id, file_name, owner_id, size, sha256, created_at, updated_at
FROM artifacts
ORDER BY updated_at DESC, id ASC`

func (q *queries) ListArtifacts(ctx context.Context) ([]artifactRow, error) {
	rows, err := q.db.QueryContext(ctx, listArtifacts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []artifactRow
	for rows.Next() {
		var r artifactRow
		if err := rows.Scan(&r.ID, &r.FileName, &r.OwnerID, &r.Size, &r.Sha256, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const upsertArtifact = `
INSERT INTO artifacts (id, file_name, owner_id, size, sha256, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    file_name  = excluded.file_name,
    owner_id   = excluded.owner_id,
    size       = excluded.size,
    sha256     = excluded.sha256,
    content    = excluded.content,
    updated_at = excluded.updated_at
RETURNING created_at`

// UpsertArtifact writes r and returns the stored created_at, which is kept
// from the first insert.
func (q *queries) UpsertArtifact(ctx context.Context, r artifactRow) (int64, error) {
	var createdAt int64
	err := q.db.QueryRowContext(ctx, upsertArtifact,
		r.ID, r.FileName, r.OwnerID, r.Size, r.Sha256, r.Content, r.CreatedAt, r.UpdatedAt,
	).Scan(&createdAt)
	return createdAt, err
}

const deleteArtifact = `DELETE FROM artifacts WHERE id = ?`

func (q *queries) DeleteArtifact(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteArtifact, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
