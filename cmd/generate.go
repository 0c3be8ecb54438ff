package cmd

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/database"
	"github.com/rpupo63/mycms/models"
)

const (
	outputDirFlag = "output-dir"
)

func newGenerateCommand() *cobra.Command {
	var reportOnly bool

	generateFlags := map[string]cobraflags.Flag{
		outputDirFlag: &cobraflags.StringFlag{
			Name:  outputDirFlag,
			Value: "./generated",
			Usage: "Directory where the generated query code is written",
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate gorm query code and a column mismatch report",
		Long: `Migrate the schema, report database columns that no model field maps to,
and write type-safe query helpers for BlogPost and User.

With --report-only the schema is left untouched and only the report is printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.Open(database.SettingsFromConfig(config.New()))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.New(db).Close()

			if reportOnly {
				if _, err := models.GenerateColumnMismatchReport(db, cmd.OutOrStdout()); err != nil {
					return err
				}
				return nil
			}
			return models.GenerateModels(db, generateFlags[outputDirFlag].GetString())
		},
	}

	cobraflags.RegisterMap(generateCmd, generateFlags)
	generateCmd.Flags().BoolVar(&reportOnly, "report-only", false, "only print the column mismatch report")
	return generateCmd
}
