package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

// UsersCmd is the top-level users command.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and select device users",
	Long: `Every Android user (owner, work profile, secondary users) has its own
SSAID store. The selected user is remembered between runs and used by
every command that does not pass --user.

Examples:
  ssaidctl users list
  ssaidctl users switch 10
  ssaidctl users current`,
	PersistentPreRun: initLogger,
}

func init() {
	addCommonFlags(UsersCmd)

	UsersCmd.AddCommand(usersListCmd)
	UsersCmd.AddCommand(usersSwitchCmd)
	UsersCmd.AddCommand(usersCurrentCmd)
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the users on the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting users list command")

		spinner, cleanup := startSpinner("Listing users...", verbose)
		defer cleanup()

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.ListUsers(ctx)
		if err != nil {
			return fail(spinner, err)
		}

		var b strings.Builder
		for _, id := range result.Users {
			marker := "  "
			if id == result.Current {
				marker = ui.Success.Sprint("*") + " "
			}
			b.WriteString(marker + id + "\n")
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

var usersSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Select the user later commands act on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting users switch command for %s", args[0])

		spinner, cleanup := startSpinner("Loading the user's store...", verbose)
		defer cleanup()

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.SwitchUser(ctx, workflows.SwitchUserOptions{User: args[0]})
		if err != nil {
			return fail(spinner, err)
		}

		Logger.Debugf("Switched from user %s to %s", result.Previous, result.UserID)
		spinner.FinalMSG = fmt.Sprintf("%s Switched to %s %s\n%s %d applications in %s",
			ui.Success.Sprint(ui.CheckMark), ui.User.Sprint(result.UserID), ui.Muted.Sprint(result.Encoding),
			ui.Info.Sprint(ui.Arrow), result.Apps, ui.Path.Sprint(result.Path))
		return nil
	},
}

var usersCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the selected user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.CurrentUser(ctx)
		if err != nil {
			fmt.Println(formatError(err))
			if isUnexpectedError(err) {
				return &reportedError{err: err}
			}
			return nil
		}

		fmt.Println(result.UserID)
		if verbose || debug {
			Logger.Infof("Store: %s", result.Path)
			if !result.LastSwitched.IsZero() {
				Logger.Infof("Selected at %s", result.LastSwitched.Local().Format("2006-01-02 15:04:05"))
			}
		}
		return nil
	},
}
