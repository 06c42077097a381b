package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/domain/ledger"
	postgresrepo "github.com/scalara/backend/internal/repository/postgres"
)

func seedCmd() *cobra.Command {
	var (
		count      int
		clearFirst bool
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "seed-transactions",
		Short: "Insert random transactions between accounts known to the graph",
		Example: `  pipeline seed-transactions --count 500
  pipeline seed-transactions --clear --count 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			cfg := config.Load()
			ctx := cmd.Context()

			s, err := openStores(ctx, cfg, count > 0)
			if err != nil {
				return err
			}
			defer s.Close()

			repo := postgresrepo.NewLedgerRepository(s.pool)
			out := cmd.OutOrStdout()

			if clearFirst {
				n, err := repo.ClearTransactions(ctx)
				if err != nil {
					return fmt.Errorf("clear transactions: %w", err)
				}
				fmt.Fprintf(out, "cleared %d transactions\n", n)
			}
			if count == 0 {
				return nil
			}

			ibans, err := s.graph.AccountIBANs(ctx)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = rand.Uint64()
			}
			txs, err := ledger.Generate(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), ibans, count)
			if err != nil {
				return fmt.Errorf("generate transactions from %d accounts: %w", len(ibans), err)
			}
			n, err := repo.InsertTransactions(ctx, txs)
			if err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
			fmt.Fprintf(out, "inserted %d transactions across %d accounts (seed %d)\n", n, len(ibans), seed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of transactions to generate")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete all transactions first")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")

	return cmd
}
