package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/audit"
	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logPackage   string
	logOperation string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	storeLogCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	storeLogCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	storeLogCmd.Flags().StringVarP(&logUser, "user", "u", "", "filter by device user id")
	storeLogCmd.Flags().StringVarP(&logPackage, "package", "p", "", "filter by application")
	storeLogCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	storeLogCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	storeLogCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	storeLogCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logPackage = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var storeLogCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays every change ssaidctl made: token changes, backups, user
switches and reboots, with the previous and new token of each change.

Examples:
  ssaidctl store log                               # View full log
  ssaidctl store log -n 10                         # Last 10 entries
  ssaidctl store log --reverse                     # Most recent first
  ssaidctl store log --package com.example.app     # Filter by application
  ssaidctl store log --operation set,randomize     # Filter by operation
  ssaidctl store log --since 2024-01-01            # Filter by date
  ssaidctl store log --json                        # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...", verbose)
	defer cleanup()

	ctx, cancel := commandContext()
	defer cancel()

	result, err := workflows.Log(ctx, workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Package:    logPackage,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		if isNoAuditLog(err) {
			spinner.FinalMSG = ui.Info.Sprint(ui.Arrow) + " No audit log found. Changes are logged once a command modifies the device."
			return nil
		}
		return fail(spinner, err)
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			spinner.FinalMSG = "No audit log entries found."
		} else {
			spinner.FinalMSG = "No audit log entries found matching the filters."
		}
		return nil
	}

	if logJSON {
		out, err := toJSON(result.Entries)
		if err != nil {
			return err
		}
		spinner.FinalMSG = out
		return nil
	}

	spinner.FinalMSG = formatLogEntries(result.Entries)
	return nil
}

func formatLogEntries(entries []audit.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		user := e.UserID
		if user == "" {
			user = "-"
		}
		fmt.Fprintf(&b, "%-19s  %-4s  %-10s  %s\n",
			workflows.FormatDateTime(e.Timestamp), user, e.Operation, workflows.FormatDetails(e))
	}
	return b.String()
}

func isNoAuditLog(err error) bool {
	return errors.Is(err, kerrors.ErrNoFilesFound)
}
