package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var (
	appsListAll  bool
	appsListJSON bool
)

func init() {
	appsListCmd.Flags().BoolVarP(&appsListAll, "all", "a", false, "include the platform record")
	appsListCmd.Flags().BoolVar(&appsListJSON, "json", false, "output as JSON array")
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the applications in a user's store",
	Args:  cobra.NoArgs,
	RunE:  runAppsList,
}

func runAppsList(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting apps list command")

	spinner, cleanup := startSpinner("Reading SSAID store...", verbose)
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := workflows.ListApps(ctx, workflows.ListAppsOptions{User: appsUser, All: appsListAll})
	if err != nil {
		return fail(spinner, err)
	}

	Logger.Debugf("Loaded %d records from %s (%s)", len(result.Apps), result.Path, result.Encoding)
	for _, w := range result.Warnings {
		Logger.WarnfAlways("%s: %s", result.Path, w)
	}

	if appsListJSON {
		out, err := toJSON(result.Apps)
		if err != nil {
			return err
		}
		spinner.FinalMSG = out
		return nil
	}

	if len(result.Apps) == 0 {
		spinner.FinalMSG = "No applications found for " + ui.User.Sprint(result.UserID)
		return nil
	}

	width := 0
	for _, app := range result.Apps {
		width = max(width, len(app.Package))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Applications for %s %s\n", ui.User.Sprint(result.UserID), ui.Muted.Sprint(result.Encoding))
	for _, app := range result.Apps {
		line := ui.PadRight(app.Package, width) + "  " + ui.Token.Sprint(app.Value)
		if app.Value == app.DefaultValue {
			line += " " + ui.Muted.Sprint("default")
		}
		b.WriteString(line + "\n")
	}
	spinner.FinalMSG = b.String()
	return nil
}
