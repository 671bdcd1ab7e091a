package main

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"atelier/cmd"
)

// main sets up logging and signal handling, then hands control to the CLI.
func main() {
	configureLogLevelFromEnv()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, func(msg string) { log.Error().Msg(msg) }, os.Exit)

	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging when the DEBUG_ATELIER
// environment variable is set to anything other than "", "0", or "false".
func configureLogLevelFromEnv() {
	switch os.Getenv("DEBUG_ATELIER") {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// setupInterruptListener returns a channel that receives interrupt signals.
func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

// handleInterrupt waits for a signal and exits through the given functions.
// The logging and exit behaviors are parameters so tests can observe them.
func handleInterrupt(stopChan chan os.Signal, logFatal func(string), exit func(int)) {
	<-stopChan
	logFatal("Interrupt signal received. Exiting...")
	exit(1)
}
