package pipeline

import (
	"context"
	"fmt"

	"github.com/scalara/backend/internal/domain/metrics"
	"github.com/scalara/backend/internal/graph"
)

func (o *Orchestrator) recomputeNetWorth(ctx context.Context) (StageResult, error) {
	n, err := o.forEachPerson(ctx, func(ctx context.Context, personID int64) error {
		balances, err := o.graph.OwnBalances(ctx, personID)
		if err != nil {
			return fmt.Errorf("person %d balances: %w", personID, err)
		}
		if err := o.graph.SetPersonMetric(ctx, personID, graph.NetWorthCents, metrics.NetWorth(balances)); err != nil {
			return fmt.Errorf("person %d write net worth: %w", personID, err)
		}
		return nil
	})
	return StageResult{Updated: n}, err
}

func (o *Orchestrator) recomputeBorrowable(ctx context.Context) (StageResult, error) {
	n, err := o.forEachPerson(ctx, func(ctx context.Context, personID int64) error {
		own, err := o.graph.OwnBalances(ctx, personID)
		if err != nil {
			return fmt.Errorf("person %d balances: %w", personID, err)
		}
		friends, err := o.graph.FriendBalances(ctx, personID)
		if err != nil {
			return fmt.Errorf("person %d friend balances: %w", personID, err)
		}
		if err := o.graph.SetPersonMetric(ctx, personID, graph.MaxBorrowableCents, metrics.Borrowable(own, friends)); err != nil {
			return fmt.Errorf("person %d write borrowable: %w", personID, err)
		}
		return nil
	})
	return StageResult{Updated: n}, err
}
