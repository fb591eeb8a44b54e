package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	appsUser string

	// AppsCmd is the top-level apps command.
	AppsCmd = &cobra.Command{
		Use:   "apps",
		Short: "Inspect and change per-app Android IDs",
		Long: `Lists the applications in a user's SSAID store and changes the
identifier (SSAID) the platform reports to each of them.

Changes take effect after the device reboots.

Examples:
  ssaidctl apps list
  ssaidctl apps show com.example.app
  ssaidctl apps set com.example.app 0123456789abcdef --backup
  ssaidctl apps randomize com.example.app --reboot
  ssaidctl apps restore com.example.app --user 10`,
		PersistentPreRun: initLogger,
	}
)

func init() {
	addCommonFlags(AppsCmd)
	AppsCmd.PersistentFlags().StringVarP(&appsUser, "user", "u", "", "device user id (default: the selected user)")

	AppsCmd.AddCommand(appsListCmd)
	AppsCmd.AddCommand(appsShowCmd)
	AppsCmd.AddCommand(appsSetCmd)
	AppsCmd.AddCommand(appsRandomizeCmd)
	AppsCmd.AddCommand(appsRestoreCmd)
}

// resetAppsCommandState resets the apps commands' global state for testing.
func resetAppsCommandState() {
	appsUser = ""
	appsListAll = false
	appsListJSON = false
	appsShowJSON = false
	resetSetFlags()
	for _, c := range append([]*cobra.Command{AppsCmd}, AppsCmd.Commands()...) {
		c.Flags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
		c.PersistentFlags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
	}
}
