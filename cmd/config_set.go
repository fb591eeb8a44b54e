package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Changes one configuration value and saves the config file. The value
is validated before anything is written.

Keys:
  ` + joinKeys() + `

device.shell takes the command words separated by spaces.

Examples:
  ssaidctl config set device.store_path /data/system/users/{user}/settings_ssaid.xml
  ssaidctl config set commands.reboot "svc power reboot"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config set command")
		Logger.Debugf("Setting %s = %q", args[0], args[1])

		spinner, cleanup := startSpinner("Updating configuration...", verbose)
		defer cleanup()

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.ConfigSet(ctx, workflows.ConfigSetOptions{Key: args[0], Value: args[1]})
		if err != nil {
			return fail(spinner, err)
		}

		msg := fmt.Sprintf("%s Set %s to %s", ui.Success.Sprint(ui.CheckMark), ui.Code.Sprint(result.Key), result.Value)
		if result.Previous != "" && result.Previous != result.Value {
			msg += " " + ui.Muted.Sprintf("was %s", result.Previous)
		}
		msg += "\n" + ui.Info.Sprint(ui.Arrow) + " Saved to " + ui.Path.Sprint(result.Path)
		spinner.FinalMSG = msg
		return nil
	},
}

func joinKeys() string {
	out := ""
	for i, k := range configs.Keys() {
		if i > 0 {
			out += "\n  "
		}
		out += k
	}
	return out
}
