package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the effective configuration: the values in the config file,
with defaults for every key the file leaves out.

Examples:
  ssaidctl config show
  ssaidctl config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")
		Logger.Debugf("Flags: json=%t", configShowJSON)

		ctx, cancel := commandContext()
		defer cancel()

		result, err := workflows.ConfigShow(ctx)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}
		Logger.Infof("Loaded config from %s (exists: %t)", result.Path, result.Exists)

		if configShowJSON {
			out, err := toJSON(result.Config)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		fmt.Print(formatConfig(result))
		return nil
	},
}

func formatConfig(result *workflows.ConfigShowResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Configuration (%s):\n", ui.Path.Sprint(result.Path))
	if !result.Exists {
		fmt.Fprintf(&b, "%s No config file yet, showing defaults\n", ui.Info.Sprint(ui.Arrow))
	}
	b.WriteString("\n")

	keys := configs.Keys()
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}
	for _, k := range keys {
		v, _ := result.Config.Get(k)
		if v == "" {
			v = ui.Muted.Sprint("unset")
		}
		fmt.Fprintf(&b, "  %s  %s\n", ui.PadRight(k, width), v)
	}
	return b.String()
}
