package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var storeInfoJSON bool

func init() {
	storeInfoCmd.Flags().BoolVar(&storeInfoJSON, "json", false, "output as JSON")
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize a user's store",
	Args:  cobra.NoArgs,
	RunE:  runStoreInfo,
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting store info command")

	spinner, cleanup := startSpinner("Reading SSAID store...", verbose)
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := workflows.StoreInfo(ctx, workflows.StoreInfoOptions{User: storeUser})
	if err != nil {
		return fail(spinner, err)
	}

	if storeInfoJSON {
		out, err := toJSON(result)
		if err != nil {
			return err
		}
		spinner.FinalMSG = out
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Store for %s\n", ui.User.Sprint(result.UserID))
	fmt.Fprintf(&b, "  path:        %s\n", ui.Path.Sprint(result.Path))
	fmt.Fprintf(&b, "  encoding:    %s\n", result.Encoding)
	fmt.Fprintf(&b, "  apps:        %d %s\n", result.Apps, ui.Muted.Sprintf("%d records", result.Records))
	fmt.Fprintf(&b, "  customized:  %d\n", result.Customized)
	fmt.Fprintf(&b, "  backup:      %s\n", ui.Path.Sprint(result.BackupPath))
	for _, w := range result.Warnings {
		b.WriteString(ui.Warning.Sprint(ui.WarnSign) + " " + w.String() + "\n")
	}
	spinner.FinalMSG = b.String()
	return nil
}
