package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ssaidctl configuration",
	Long: `Shows and changes where ssaidctl finds the SSAID store on the device,
how it runs privileged commands and how it converts packed stores.

Examples:
  # Show the effective configuration
  ssaidctl config show

  # Run device commands through a different privilege wrapper
  ssaidctl config set device.shell "sudo sh -c"

  # Discover users by scanning store paths instead of asking the package manager
  ssaidctl config set device.user_source scan`,
	PersistentPreRun: initLogger,
}

func init() {
	addCommonFlags(ConfigCmd)

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

// resetConfigCommandState resets the config commands' global state for testing.
func resetConfigCommandState() {
	configShowJSON = false
	for _, c := range append([]*cobra.Command{ConfigCmd}, ConfigCmd.Commands()...) {
		c.Flags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
		c.PersistentFlags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
	}
}
