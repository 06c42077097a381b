package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scalara/backend/internal/domain/ledger"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// ReadWindow runs the stats and the per-account sums inside one snapshot and
// caps the sums at the window's max loaded_at, so rows committed mid-read can
// never be folded without being counted.
func (r *LedgerRepository) ReadWindow(ctx context.Context, since *time.Time) (ledger.Batch, error) {
	batch := ledger.Batch{Since: since, Deltas: []ledger.AccountDelta{}}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return batch, err
	}
	defer tx.Rollback(ctx)

	statsQ := `
SELECT COUNT(*)::bigint, MIN(loaded_at), MAX(loaded_at)
FROM transactions
WHERE ($1::timestamptz IS NULL OR loaded_at > $1)
`
	if err := tx.QueryRow(ctx, statsQ, since).Scan(&batch.Stats.Count, &batch.Stats.StartLoadedAt, &batch.Stats.EndLoadedAt); err != nil {
		return batch, err
	}
	if batch.Stats.Count == 0 || batch.Stats.EndLoadedAt == nil {
		return batch, tx.Commit(ctx)
	}

	deltaQ := `
SELECT account_iban,
       SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END)::bigint AS delta
FROM transactions
WHERE ($1::timestamptz IS NULL OR loaded_at > $1)
  AND loaded_at <= $2
GROUP BY account_iban
ORDER BY account_iban
`
	rows, err := tx.Query(ctx, deltaQ, since, *batch.Stats.EndLoadedAt)
	if err != nil {
		return batch, err
	}
	defer rows.Close()

	for rows.Next() {
		var d ledger.AccountDelta
		if err := rows.Scan(&d.IBAN, &d.Delta); err != nil {
			return batch, err
		}
		batch.Deltas = append(batch.Deltas, d)
	}
	if err := rows.Err(); err != nil {
		return batch, err
	}
	rows.Close()
	return batch, tx.Commit(ctx)
}

// InsertTransactions writes generated rows in one round trip. loaded_at is
// left to the column default.
func (r *LedgerRepository) InsertTransactions(ctx context.Context, in []ledger.NewTransaction) (int64, error) {
	if len(in) == 0 {
		return 0, nil
	}
	q := `
INSERT INTO transactions (id, account_iban, counterparty_iban, amount, direction)
VALUES ($1, $2, $3, $4, $5::transaction_direction)
`
	b := &pgx.Batch{}
	for _, nt := range in {
		b.Queue(q, uuid.NewString(), nt.AccountIBAN, nt.CounterpartyIBAN, nt.Amount, string(nt.Direction))
	}

	results := r.pool.SendBatch(ctx, b)
	defer results.Close()

	var inserted int64
	for range in {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

func (r *LedgerRepository) ClearTransactions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
