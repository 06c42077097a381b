package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scalara/backend/internal/graph"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Concurrency  int
	StageTimeout time.Duration
	Logger       *slog.Logger
	Metrics      Instruments
	Notifier     Notifier
}

type Orchestrator struct {
	graph        graph.Store
	ledger       LedgerRepository
	checkpoints  CheckpointRepository
	locker       Locker
	logger       *slog.Logger
	metrics      Instruments
	notifier     Notifier
	concurrency  int
	stageTimeout time.Duration
	now          func() time.Time
}

func NewOrchestrator(g graph.Store, ledgerRepo LedgerRepository, checkpoints CheckpointRepository, locker Locker, opts Options) *Orchestrator {
	o := &Orchestrator{
		graph:        g,
		ledger:       ledgerRepo,
		checkpoints:  checkpoints,
		locker:       locker,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		notifier:     opts.Notifier,
		concurrency:  opts.Concurrency,
		stageTimeout: opts.StageTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if o.locker == nil {
		o.locker = noopLocker{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.metrics == nil {
		o.metrics = noopInstruments{}
	}
	if o.notifier == nil {
		o.notifier = noopNotifier{}
	}
	if o.concurrency <= 0 {
		o.concurrency = 8
	}
	return o
}

// Run executes every stage up to and including level, in order. The first
// failing stage aborts the run; stages that already finished stay applied.
func (o *Orchestrator) Run(ctx context.Context, level Stage) (*Report, error) {
	if !level.Valid() {
		return nil, ErrInvalidStage
	}

	report := &Report{RunID: uuid.NewString(), Level: level}
	logger := o.logger.With("run_id", report.RunID, "level", int(level))
	logger.Info("pipeline run started")

	for _, st := range allStages {
		if st > level {
			break
		}
		res, err := o.runStage(ctx, logger, report, st)
		if err != nil {
			return report, fmt.Errorf("stage %s: %w", st, err)
		}
		report.Stages = append(report.Stages, res)
	}

	logger.Info("pipeline run finished", "stages", len(report.Stages))
	return report, nil
}

func (o *Orchestrator) runStage(ctx context.Context, logger *slog.Logger, report *Report, st Stage) (StageResult, error) {
	stageCtx := ctx
	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	start := o.now()
	var (
		res StageResult
		err error
	)
	switch st {
	case StageLedgerAggregation:
		res, err = o.aggregateLedger(stageCtx, logger)
	case StageNetWorth:
		res, err = o.recomputeNetWorth(stageCtx)
	case StageBorrowable:
		res, err = o.recomputeBorrowable(stageCtx)
	default:
		err = ErrInvalidStage
	}
	res.Stage = st
	res.Name = st.String()
	res.Duration = o.now().Sub(start)

	o.metrics.ObserveStage(st.String(), res.Duration, err)

	ev := Event{
		Type:       EventStageCompleted,
		RunID:      report.RunID,
		Level:      report.Level,
		Stage:      st.String(),
		Processed:  res.Processed,
		Updated:    res.Updated,
		DurationMS: res.Duration.Milliseconds(),
		At:         o.now(),
	}
	if err != nil {
		ev.Type = EventStageFailed
		ev.Error = err.Error()
		o.notifier.Publish(ev)
		logger.Error("pipeline stage failed", "stage", st.String(), "err", err)
		return res, err
	}
	o.notifier.Publish(ev)
	logger.Info("pipeline stage finished",
		"stage", st.String(),
		"processed", res.Processed,
		"updated", res.Updated,
		"duration", res.Duration.String(),
	)
	return res, nil
}

// forEachPerson applies fn to every person vertex with bounded fan-out and
// returns how many persons were visited.
func (o *Orchestrator) forEachPerson(ctx context.Context, fn func(ctx context.Context, personID int64) error) (int, error) {
	ids, err := o.graph.PersonIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list persons: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}
