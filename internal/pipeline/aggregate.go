package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scalara/backend/internal/domain/ledger"
)

const ledgerLockName = "pipeline.ledger_aggregation"

// aggregateLedger folds every transaction loaded after the last checkpoint
// into account balances and records the new window. The whole stage runs
// under the ledger lock so two runs cannot select the same rows. Once the
// window is read, the increments and the checkpoint ignore cancellation:
// stopping between them would fold the applied rows again on the next run.
func (o *Orchestrator) aggregateLedger(ctx context.Context, logger *slog.Logger) (StageResult, error) {
	var res StageResult
	err := o.locker.WithLock(ctx, ledgerLockName, func(ctx context.Context) error {
		since, err := o.lastFoldedAt(ctx)
		if err != nil {
			return err
		}

		batch, err := o.ledger.ReadWindow(ctx, since)
		if err != nil {
			return fmt.Errorf("read ledger window: %w", err)
		}

		applyCtx := context.WithoutCancel(ctx)
		for _, d := range batch.Deltas {
			if d.Delta == 0 {
				continue
			}
			ok, err := o.graph.IncrementBalance(applyCtx, d.IBAN, d.Delta)
			if err != nil {
				return fmt.Errorf("increment balance %s: %w", d.IBAN, err)
			}
			if !ok {
				res.Unmatched++
				logger.Debug("account missing from graph, delta skipped", "iban", d.IBAN, "delta", d.Delta)
				continue
			}
			res.Updated++
		}
		res.Processed = batch.Stats.Count

		in, ok := ledger.CheckpointFor(batch.Stats)
		if !ok {
			return nil
		}
		cp, err := o.checkpoints.Append(applyCtx, in)
		if err != nil {
			return fmt.Errorf("append checkpoint: %w", err)
		}
		res.Checkpoint = cp
		return nil
	})
	if err != nil {
		return res, err
	}
	o.metrics.AddFolded(res.Processed, res.Unmatched)
	return res, nil
}

func (o *Orchestrator) lastFoldedAt(ctx context.Context) (*time.Time, error) {
	last, err := o.checkpoints.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if last == nil {
		return nil, nil
	}
	if last.EndLoadedAt == nil {
		return nil, fmt.Errorf("checkpoint %s has no end_loaded_at: %w", last.ID, ErrCorruptCheckpoint)
	}
	return last.EndLoadedAt, nil
}
