package cmd

import (
	"fmt"
	"runtime"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// AboutCmd prints the banner, version and where ssaidctl keeps its files.
var AboutCmd = &cobra.Command{
	Use:              "about",
	Short:            "Show version and file locations",
	Args:             cobra.NoArgs,
	PersistentPreRun: initLogger,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(aboutText())
	},
}

func aboutText() string {
	banner := figure.NewFigure("ssaidctl", "", true).String()
	return fmt.Sprintf("%s\nVersion:    %s (%s/%s)\nConfig:     %s\nAudit log:  %s\n",
		banner,
		Version, runtime.GOOS, runtime.GOARCH,
		ui.Path.Sprint(configs.ConfigPath()),
		ui.Path.Sprint(configs.AuditLogPath()),
	)
}
