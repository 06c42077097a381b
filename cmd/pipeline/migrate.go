package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the transactions and checkpoint tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			s, err := openStores(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer s.Close()

			applied, err := db.Migrate(cmd.Context(), s.pool)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}
