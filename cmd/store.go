package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	storeUser string

	// StoreCmd is the top-level store command.
	StoreCmd = &cobra.Command{
		Use:   "store",
		Short: "Maintain the SSAID store",
		Long: `Inspects, backs up and reloads the SSAID store, and shows the log of
every change ssaidctl made.

Examples:
  ssaidctl store info
  ssaidctl store backup --user 10
  ssaidctl store log --package com.example.app
  ssaidctl store reboot`,
		PersistentPreRun: initLogger,
	}
)

func init() {
	addCommonFlags(StoreCmd)

	storeInfoCmd.Flags().StringVarP(&storeUser, "user", "u", "", "device user id (default: the selected user)")
	storeBackupCmd.Flags().StringVarP(&storeUser, "user", "u", "", "device user id (default: the selected user)")

	StoreCmd.AddCommand(storeInfoCmd)
	StoreCmd.AddCommand(storeBackupCmd)
	StoreCmd.AddCommand(storeLogCmd)
	StoreCmd.AddCommand(storeRebootCmd)
}

// resetStoreCommandState resets the store commands' global state for testing.
func resetStoreCommandState() {
	storeUser = ""
	storeInfoJSON = false
	rebootYes = false
	resetLogCommandState()
	for _, c := range append([]*cobra.Command{StoreCmd}, StoreCmd.Commands()...) {
		c.Flags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
		c.PersistentFlags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
	}
}
