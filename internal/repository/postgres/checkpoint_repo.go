package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scalara/backend/internal/domain/ledger"
)

type CheckpointRepository struct {
	pool *pgxpool.Pool
}

func NewCheckpointRepository(pool *pgxpool.Pool) *CheckpointRepository {
	return &CheckpointRepository{pool: pool}
}

func (r *CheckpointRepository) Latest(ctx context.Context) (*ledger.Checkpoint, error) {
	q := `
SELECT id::text, executed_at, processed_count, start_loaded_at, end_loaded_at
FROM process_execution_logs
ORDER BY executed_at DESC
LIMIT 1
`
	out := &ledger.Checkpoint{}
	err := r.pool.QueryRow(ctx, q).Scan(&out.ID, &out.ExecutedAt, &out.ProcessedCount, &out.StartLoadedAt, &out.EndLoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CheckpointRepository) Append(ctx context.Context, in ledger.CheckpointInput) (*ledger.Checkpoint, error) {
	q := `
INSERT INTO process_execution_logs (id, processed_count, start_loaded_at, end_loaded_at)
VALUES ($1, $2, $3, $4)
RETURNING id::text, executed_at, processed_count, start_loaded_at, end_loaded_at
`
	out := &ledger.Checkpoint{}
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), in.ProcessedCount, in.StartLoadedAt, in.EndLoadedAt).Scan(
		&out.ID, &out.ExecutedAt, &out.ProcessedCount, &out.StartLoadedAt, &out.EndLoadedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CheckpointRepository) List(ctx context.Context, limit int32) ([]ledger.Checkpoint, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT id::text, executed_at, processed_count, start_loaded_at, end_loaded_at
FROM process_execution_logs
ORDER BY executed_at DESC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Checkpoint, 0)
	for rows.Next() {
		var cp ledger.Checkpoint
		if err := rows.Scan(&cp.ID, &cp.ExecutedAt, &cp.ProcessedCount, &cp.StartLoadedAt, &cp.EndLoadedAt); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
