package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scalara/backend/internal/config"
	postgresrepo "github.com/scalara/backend/internal/repository/postgres"
)

func checkpointCmd() *cobra.Command {
	var limit int32

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "List the most recent ledger aggregation checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			s, err := openStores(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := postgresrepo.NewCheckpointRepository(s.pool).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no checkpoints recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEXECUTED\tROWS\tSTART\tEND")
			for _, cp := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", cp.ID, cp.ExecutedAt.UTC().Format(time.RFC3339), cp.ProcessedCount, formatTime(cp.StartLoadedAt), formatTime(cp.EndLoadedAt))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int32VarP(&limit, "limit", "n", 10, "number of checkpoints to show")

	return cmd
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
