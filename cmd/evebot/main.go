package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clanhall/evebot/internal/events"
	"github.com/clanhall/evebot/internal/service"
	"github.com/clanhall/evebot/internal/store/postgres"
	"github.com/clanhall/evebot/internal/ui"
)

var (
	databaseURL string
	jsonOutput  bool
	noColor     bool
)

func defaultDatabaseURL() string {
	return os.Getenv("EVEBOT_DATABASE_URL")
}

var rootCmd = &cobra.Command{
	Use:   "evebot <command>",
	Short: "Guild attendance-event bot and admin CLI",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.ForceNoColor()
		}
	},
}

// newService opens the database and wraps it in the event service for
// the admin commands. The bot process itself wires this up in serve.
func newService(logger *slog.Logger) (*service.EventService, func(), error) {
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("EVEBOT_DATABASE_URL (or --database-url) is required")
	}
	store, err := postgres.New(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewEventService(store, &events.NoopPublisher{}, logger, nil)
	return svc, func() { store.Close() }, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", defaultDatabaseURL(), "Postgres connection URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "registry", Title: "Registries:"},
		&cobra.Group{ID: "reports", Title: "Reports:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Registries
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(moderatorCmd)
	rootCmd.AddCommand(channelCmd)

	// Reports
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(eventsCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(busCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
