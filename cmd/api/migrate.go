package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pet-guardianship/internal/platform/config"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "migrate",
		Short:         "Aplica el schema en el store configurado (postgres o sqlite)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.DBDriver == config.DriverMemory {
				return fmt.Errorf("migrate needs DB_DRIVER=postgres or sqlite")
			}

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", store.Dialect().Name())
			return nil
		},
	}
}
