package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var appsShowJSON bool

func init() {
	appsShowCmd.Flags().BoolVar(&appsShowJSON, "json", false, "output as JSON")
}

var appsShowCmd = &cobra.Command{
	Use:   "show <package>",
	Short: "Show one application's record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsShow,
}

func runAppsShow(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting apps show command for %s", args[0])

	spinner, cleanup := startSpinner("Reading SSAID store...", verbose)
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := workflows.ShowApp(ctx, workflows.ShowAppOptions{User: appsUser, Package: args[0]})
	if err != nil {
		return fail(spinner, err)
	}

	if appsShowJSON {
		out, err := toJSON(result.Record)
		if err != nil {
			return err
		}
		spinner.FinalMSG = out
		return nil
	}

	rec := result.Record
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ui.Package.Sprint(rec.Package), ui.Muted.Sprint(ui.User.Sprint(result.UserID)))
	fmt.Fprintf(&b, "  value:        %s\n", ui.Token.Sprint(rec.Value))
	fmt.Fprintf(&b, "  default:      %s\n", rec.DefaultValue)
	fmt.Fprintf(&b, "  system set:   %t\n", rec.DefaultSysSet)
	fmt.Fprintf(&b, "  tag:          %s\n", rec.Tag)
	if rec.Name != "" {
		fmt.Fprintf(&b, "  uid:          %s\n", rec.Name)
	}
	if result.IsDefault {
		b.WriteString("  " + ui.Muted.Sprint("using the platform default") + "\n")
	}
	spinner.FinalMSG = b.String()
	return nil
}
