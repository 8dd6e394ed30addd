package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "guardianship",
		Short: "API de registro de guardianes de mascotas",
		Long: `API de registro de guardianes de mascotas.

Sin subcomando levanta el server HTTP (igual que "serve").
La configuración se lee de variables de entorno (PORT, DB_DRIVER, DB_DSN, REDIS_URL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}
