package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var rebootYes bool

func init() {
	storeRebootCmd.Flags().BoolVarP(&rebootYes, "yes", "y", false, "reboot without asking")
}

var storeRebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device so it reloads every SSAID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := confirmReboot(rebootYes)
		if err != nil {
			fmt.Println(formatError(err))
			return nil
		}
		if !ok {
			fmt.Println(ui.Info.Sprint(ui.Arrow) + " Reboot cancelled")
			return nil
		}

		spinner, cleanup := startSpinner("Rebooting device...", verbose)
		defer cleanup()

		ctx, cancel := commandContext()
		defer cancel()

		if err := workflows.Reboot(ctx); err != nil {
			return fail(spinner, err)
		}
		spinner.FinalMSG = ui.Success.Sprint(ui.CheckMark) + " Reboot requested"
		return nil
	},
}
