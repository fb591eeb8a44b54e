package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var storeBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy a user's store to the backup directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting store backup command")

		spinner, cleanup := startSpinner("Backing up SSAID store...", verbose)
		defer cleanup()

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.Backup(ctx, workflows.BackupOptions{User: storeUser})
		if err != nil {
			return fail(spinner, err)
		}

		Logger.Debugf("Copied %s to %s", result.Source, result.Path)
		spinner.FinalMSG = ui.Success.Sprint(ui.CheckMark) + " Backed up the store of " + ui.User.Sprint(result.UserID) +
			" to " + ui.Path.Sprint(result.Path)
		return nil
	},
}
