package main

import (
	"github.com/spf13/cobra"

	"tradelink/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			return database.RunMigrations(cmd.Context(), rt.db, rt.log)
		},
	}
}
