package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/database"
)

// NewRootCommand builds the mycms command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mycms",
		Short: "A small personal blogging CMS",
		Long: `mycms serves a personal blog: logged in users write, edit and delete
their posts, and /api/{username}/ publishes each user's published posts as JSON.

Configuration is read from the environment and from a .env file in the
working directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging(config.New())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateUserCommand(),
		newDeleteUserCommand(),
		newGenerateCommand(),
	)
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

// configureLogging applies LOG_LEVEL and, with LOG_PRETTY, switches the
// global logger to colored console output
func configureLogging(c config.Config) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetBool(c, "LOG_PRETTY", false) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openDatabase connects using the DB_* settings
func openDatabase(c config.Config) (database.Database, error) {
	settings := database.SettingsFromConfig(c)
	log.Info().Str("dbType", settings.Type).Msg("connecting to database")

	db, err := database.Open(settings)
	if errors.Is(err, database.ErrUnsupportedDBType) {
		return database.Database{}, fmt.Errorf("check DB_TYPE (postgres or sqlite): %w", err)
	}
	if err != nil {
		return database.Database{}, fmt.Errorf("opening database: %w", err)
	}
	return database.New(db), nil
}

func migrate(ctx context.Context, db database.Database) error {
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Info().Msg("schema is up to date")
	return nil
}
