package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/mycms/api"
	"github.com/rpupo63/mycms/config"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the web server on PORT (default 8080). The schema is migrated first
unless --skip-migrate is given. SIGINT or SIGTERM shut the server down
gracefully.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := config.New()
			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			if !skipMigrate {
				if err := migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			server, err := api.NewServer(db, c)
			if err != nil {
				return fmt.Errorf("initializing server: %w", err)
			}

			// both goroutines may send, only the first is read
			errChannel := make(chan error, 2)
			go server.Start(errChannel)
			go listenToInterrupt(errChannel)

			fatalErr := <-errChannel
			log.Info().Msgf("Closing server: %v", fatalErr)

			server.ShutdownGracefully(shutdownTimeout)
			if errors.Is(fatalErr, errInterrupted) || errors.Is(fatalErr, http.ErrServerClosed) {
				return nil
			}
			return fatalErr
		},
	}

	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema before serving")
	return serveCmd
}

var errInterrupted = errors.New("interrupted")

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%w: %s", errInterrupted, <-c)
}
