package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/device"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var (
	setBackup bool
	setReboot bool
	setYes    bool
	setDryRun bool
	setJSON   bool
)

func init() {
	for _, c := range []*cobra.Command{appsSetCmd, appsRandomizeCmd, appsRestoreCmd} {
		c.Flags().BoolVar(&setBackup, "backup", false, "copy the store to the backup directory first")
		c.Flags().BoolVar(&setReboot, "reboot", false, "reboot the device after the change")
		c.Flags().BoolVarP(&setYes, "yes", "y", false, "reboot without asking")
		c.Flags().BoolVar(&setDryRun, "dry-run", false, "show the change without writing it")
		c.Flags().BoolVar(&setJSON, "json", false, "output the outcome as JSON")
	}
}

func resetSetFlags() {
	setBackup = false
	setReboot = false
	setYes = false
	setDryRun = false
	setJSON = false
}

var appsSetCmd = &cobra.Command{
	Use:   "set <package> <token>",
	Short: "Set an application's SSAID",
	Long: `Sets the SSAID of one application. The token is 16 hexadecimal
characters; upper case is accepted and stored in lower case.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetToken(workflows.SetTokenOptions{Package: args[0], Token: args[1], Mode: workflows.ModeExplicit})
	},
}

var appsRandomizeCmd = &cobra.Command{
	Use:   "randomize <package>",
	Short: "Give an application a fresh random SSAID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetToken(workflows.SetTokenOptions{Package: args[0], Mode: workflows.ModeRandom})
	},
}

var appsRestoreCmd = &cobra.Command{
	Use:   "restore <package>",
	Short: "Restore an application's SSAID to the platform default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetToken(workflows.SetTokenOptions{Package: args[0], Mode: workflows.ModeDefault})
	},
}

func runSetToken(opts workflows.SetTokenOptions) error {
	Logger.Infof("Starting token change for %s", opts.Package)

	opts.User = appsUser
	opts.Backup = setBackup
	opts.DryRun = setDryRun

	if setReboot && !setDryRun {
		ok, err := confirmReboot(setYes)
		if err != nil {
			fmt.Println(formatError(err))
			return nil
		}
		opts.Reboot = ok
		if !ok {
			Logger.Infof("Reboot declined")
		}
	}

	spinner, cleanup := startSpinner("Updating SSAID store...", verbose)
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := workflows.SetToken(ctx, opts)
	if result != nil && result.Outcome != nil {
		Logger.Debugf("Mutation of %s ended in state %s", opts.Package, result.Outcome.State)
	}
	if err != nil {
		if result != nil && result.Outcome != nil && result.Outcome.State == device.StateCommitted {
			// Committed, but the follow-up reboot failed.
			spinner.FinalMSG = formatCommitted(result) + "\n" + formatError(err)
			return &reportedError{err: err}
		}
		return fail(spinner, err)
	}

	if setJSON {
		out, err := toJSON(result.Outcome)
		if err != nil {
			return err
		}
		spinner.FinalMSG = out
		return nil
	}

	spinner.FinalMSG = formatCommitted(result)
	if !result.DryRun && !result.Rebooted {
		spinner.FinalMSG += "\n" + ui.Info.Sprint(ui.Arrow) + " Reboot the device for the change to take effect: " +
			ui.Code.Sprint("ssaidctl store reboot")
	}
	return nil
}

func formatCommitted(result *workflows.SetTokenResult) string {
	out := result.Outcome
	change := ui.Token.Sprint(out.Previous.Value) + " " + ui.Info.Sprint(ui.Arrow) + " " + ui.Token.Sprint(out.Record.Value)

	var msg string
	switch {
	case result.DryRun:
		msg = ui.Info.Sprint(ui.Arrow) + " Would change " + ui.Package.Sprint(out.Package) + ": " + change
	case !out.Changed():
		msg = ui.Success.Sprint(ui.CheckMark) + " " + ui.Package.Sprint(out.Package) + " already uses " + ui.Token.Sprint(out.Record.Value)
	default:
		msg = ui.Success.Sprint(ui.CheckMark) + " Changed " + ui.Package.Sprint(out.Package) + " for " + ui.User.Sprint(out.UserID) + ": " + change
	}
	if result.BackupPath != "" {
		msg += "\n" + ui.Success.Sprint(ui.CheckMark) + " Backup written to " + ui.Path.Sprint(result.BackupPath)
	}
	if result.Rebooted {
		msg += "\n" + ui.Success.Sprint(ui.CheckMark) + " Reboot requested"
	}
	return msg
}
