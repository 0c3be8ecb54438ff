package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rpupo63/mycms/config"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(config.New())
			if err != nil {
				return err
			}
			defer db.Close()

			return migrate(cmd.Context(), db)
		},
	}
}
