package generations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const generationColumns = `id, session_id, job_title, candidate_name, docx_name, pdf_name, status,
    failed_stage, failure_kind, error, pages, size_bytes, storage_key, duration_ms, created_at`

// Create inserts a generation.
func (r *PGRepo) Create(ctx context.Context, g Generation) error {
	const query = `
INSERT INTO generations (` + generationColumns + `
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.DB.ExecContext(ctx, query,
		g.ID,
		g.SessionID,
		g.JobTitle,
		g.CandidateName,
		g.DocxName,
		g.PDFName,
		string(g.Status),
		string(g.FailedStage),
		g.FailureKind,
		g.Error,
		g.Pages,
		g.SizeBytes,
		nullString(g.StorageKey),
		g.DurationMs,
		g.CreatedAt,
	)
	return err
}

// GetByID returns a generation owned by sessionID.
func (r *PGRepo) GetByID(ctx context.Context, sessionID, id string) (Generation, error) {
	const query = `
SELECT ` + generationColumns + `
FROM generations
WHERE id = $1
LIMIT 1`
	g, err := scanGeneration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Generation{}, ErrNotFound
		}
		return Generation{}, err
	}
	if g.SessionID != sessionID {
		return Generation{}, ErrForbidden
	}
	return g, nil
}

// ListBySession lists a session's generations ordered newest-first.
func (r *PGRepo) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]Generation, error) {
	if offset < 0 {
		offset = 0
	}
	const base = `
SELECT ` + generationColumns + `
FROM generations
WHERE session_id = $1
ORDER BY created_at DESC, id DESC`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.DB.QueryContext(ctx, base+"\nLIMIT $2 OFFSET $3", sessionID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, base+"\nOFFSET $2", sessionID, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (Generation, error) {
	var (
		g          Generation
		status     string
		stage      string
		storageKey sql.NullString
	)
	err := row.Scan(
		&g.ID,
		&g.SessionID,
		&g.JobTitle,
		&g.CandidateName,
		&g.DocxName,
		&g.PDFName,
		&status,
		&stage,
		&g.FailureKind,
		&g.Error,
		&g.Pages,
		&g.SizeBytes,
		&storageKey,
		&g.DurationMs,
		&g.CreatedAt,
	)
	if err != nil {
		return Generation{}, err
	}
	g.Status = Status(status)
	g.FailedStage = Stage(stage)
	g.StorageKey = storageKey.String
	return g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
