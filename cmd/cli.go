package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"atelier/auth"
	"atelier/client"
	"atelier/config"
	"atelier/db"
	"atelier/pkg/clierr"
)

// appDeps holds the shared services the commands operate on.
type appDeps struct {
	cfg      *config.Config
	api      *client.Client
	session  *auth.Service
	sessions db.SessionRepository
	tasks    db.TaskRepository
}

// newAppDeps wires the API client, session service, and repositories together.
func newAppDeps(cfg *config.Config, notifier *auth.Broadcaster) *appDeps {
	sessions := db.NewSessionRepository(db.GetDB())
	store := &sessionRepoStore{repo: sessions}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout(),
		Transport: client.NewHeaderTransport(nil, "atelier-cli/"+version),
	}
	api := client.New(cfg.ServerURL, store, notifier, httpClient)

	return &appDeps{
		cfg:      cfg,
		api:      api,
		session:  auth.NewService(store, api),
		sessions: sessions,
		tasks:    db.NewTaskRepository(db.GetDB()),
	}
}

// Execute sets up the CLI commands and runs the root command.
func Execute() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	initializeDatabase()
	defer closeDatabase()

	notifier := auth.NewBroadcaster()
	expired := notifier.Subscribe()

	rootCmd := createRootCmd(newAppDeps(cfg, notifier))
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	err = rootCmd.Execute()

	select {
	case <-expired:
		fmt.Fprintln(os.Stderr, "Your session has expired. Run 'atelier login' to sign in again.")
	default:
	}

	if err != nil {
		log.Error().Err(err).Msg("Command execution failed.")
		os.Exit(exitCodeFor(err))
	}
}

// createRootCmd creates the root command and adds the subcommands to it.
func createRootCmd(deps *appDeps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "atelier",
		Short:        "A command-line client for the Atelier design service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		loginCmd(deps),
		logoutCmd(deps),
		whoamiCmd(deps),
		usersCmd(deps),
		tasksCmd(deps),
		approvalsCmd(deps),
		syncCmd(deps),
		pullCmd(deps),
		filesCmd(deps),
		versionCmd(),
	)

	// Disable the default `completion` command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	// Disable the default `help` command (the `--help` flag stays available)
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) int {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode()
	}
	return 1
}

// initializeDatabase initializes the local database used for sessions and the
// task cache.
func initializeDatabase() {
	if err := db.InitDB(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		os.Exit(1)
	}
}

// closeDatabase closes the database connection.
func closeDatabase() {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
		os.Exit(1)
	}
}
