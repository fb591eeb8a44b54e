package cmd

import (
	"time"

	"github.com/spf13/cobra"

	logger "github.com/PolarWolf314/ssaidctl/internal/logging"
)

var (
	verbose bool
	debug   bool
	timeout time.Duration
	Logger  logger.Logger
)

// initLogger is the PersistentPreRun shared by every command group.
func initLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
}

// addCommonFlags registers the flags every command group accepts.
func addCommonFlags(group *cobra.Command) {
	group.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	group.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	group.PersistentFlags().DurationVar(&timeout, "timeout", 0, "give up on device commands after this long (e.g. 30s); 0 waits forever")
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	timeout = 0
	resetAppsCommandState()
	resetStoreCommandState()
	resetConfigCommandState()
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
