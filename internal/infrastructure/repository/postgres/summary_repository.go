package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/docstream/internal/core/domain"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert inserts or replaces the current summary for a filename. The unique
// constraint serializes concurrent writers per filename; the last committed
// write wins.
func (r *SummaryRepository) Upsert(ctx context.Context, filename, text string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO summaries (filename, summary_text, created_at)
VALUES ($1,$2,$3)
ON CONFLICT (filename) DO UPDATE
SET summary_text = EXCLUDED.summary_text, created_at = EXCLUDED.created_at
`, filename, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) Get(ctx context.Context, filename string) (*domain.Summary, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT filename, summary_text, created_at
FROM summaries
WHERE filename = $1
`, filename)

	var s domain.Summary
	if err := row.Scan(&s.Filename, &s.Summary, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSummaryNotFound, "get summary", fmt.Errorf("filename=%s", filename))
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	return &s, nil
}

func (r *SummaryRepository) Delete(ctx context.Context, filename string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM summaries WHERE filename = $1`, filename)
	if err != nil {
		return 0, fmt.Errorf("delete summary: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete summary rows affected: %w", err)
	}
	return rows, nil
}

func (r *SummaryRepository) ListAll(ctx context.Context) ([]domain.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT filename, summary_text, created_at
FROM summaries
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Summary, 0)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.Filename, &s.Summary, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}
