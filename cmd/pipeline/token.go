package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scalara/backend/internal/auth"
	"github.com/scalara/backend/internal/config"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the pipeline HTTP surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			cfg := config.Load()
			tok, err := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey).Mint(subject, role, cfg.JWTTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "caller identity recorded in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleOperator, "operator or reader")

	return cmd
}
