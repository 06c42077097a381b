package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/observability"
	"github.com/scalara/backend/internal/pipeline"
	postgresrepo "github.com/scalara/backend/internal/repository/postgres"
)

func runCmd() *cobra.Command {
	var (
		stage    int
		interval time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage up to --stage",
		Long: `Run the pipeline stages 1..N in order.

Stages:
  1  fold new ledger transactions into account balances
  2  recompute net worth for every person
  3  recompute max borrowable amount for every person

With --interval the run repeats on a ticker until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := pipeline.Stage(stage)
			if !level.Valid() {
				return fmt.Errorf("--stage must be 1, 2 or 3: %w", pipeline.ErrInvalidStage)
			}

			cfg := config.Load()
			logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

			s, err := openStores(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer s.Close()

			orchestrator := pipeline.NewOrchestrator(
				s.graph,
				postgresrepo.NewLedgerRepository(s.pool),
				postgresrepo.NewCheckpointRepository(s.pool),
				postgresrepo.NewAdvisoryLocker(s.pool),
				pipeline.Options{
					Concurrency:  int(cfg.PipelineConcurrency),
					StageTimeout: cfg.PipelineStageTimeout,
					Logger:       logger,
					Metrics:      observability.NewPipelineMetrics(prometheus.NewRegistry()),
				},
			)

			if interval <= 0 {
				report, err := orchestrator.Run(cmd.Context(), level)
				if report != nil {
					printReport(cmd.OutOrStdout(), report, asJSON)
				}
				return err
			}
			return runEvery(cmd.Context(), logger, interval, func(ctx context.Context) error {
				report, err := orchestrator.Run(ctx, level)
				if report != nil {
					printReport(cmd.OutOrStdout(), report, asJSON)
				}
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&stage, "stage", "s", int(pipeline.StageBorrowable), "highest stage to run (1-3)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat the run on this interval until interrupted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run report as JSON")

	return cmd
}

// runEvery calls fn right away and then once per tick. A failed run is
// logged and the loop keeps going; only cancellation stops it.
func runEvery(ctx context.Context, logger *slog.Logger, interval time.Duration, fn func(ctx context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("pipeline scheduler started", "interval", interval.String())
	runOnce := func() {
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduled pipeline run failed", "err", err)
		}
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			logger.Info("pipeline scheduler stopped")
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}

func printReport(w io.Writer, report *pipeline.Report, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}
	fmt.Fprintf(w, "run %s (level %d)\n", report.RunID, report.Level)
	for _, st := range report.Stages {
		fmt.Fprintf(w, "  %-20s %8s  processed=%d updated=%d", st.Name, st.Duration.Round(time.Millisecond), st.Processed, st.Updated)
		if st.Unmatched > 0 {
			fmt.Fprintf(w, " unmatched=%d", st.Unmatched)
		}
		if st.Checkpoint != nil {
			fmt.Fprintf(w, " checkpoint=%s", st.Checkpoint.ID)
		}
		fmt.Fprintln(w)
	}
}
