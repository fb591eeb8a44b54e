package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "ssaidctl",
	Short: "ssaidctl - inspect and change per-app Android IDs on a rooted device.",
	Long: `ssaidctl reads the platform's SSAID store (settings_ssaid.xml) for a
device user and changes the identifier the platform reports to each app.

Changes take effect after the device reboots.

Usage:
  ssaidctl <command> [flags]

Available Commands:
  apps      List apps and set, randomize or restore their SSAID
  users     List device users and select the one to work on
  store     Inspect, back up and reload the store; view the audit log
  config    Show and change device paths and commands
  about     Show version and file locations

Run 'ssaidctl help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(c *cobra.Command, args []string) {
		fmt.Println("Run 'ssaidctl --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.AppsCmd)
	rootCmd.AddCommand(cmd.UsersCmd)
	rootCmd.AddCommand(cmd.StoreCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
	rootCmd.AddCommand(cmd.AboutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
