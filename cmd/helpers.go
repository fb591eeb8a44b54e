package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/ui"
	"github.com/PolarWolf314/ssaidctl/internal/utils"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// commandContext returns the context device commands run under, bounded by
// --timeout when it is set.
func commandContext() (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

// Test hooks for the reboot prompt.
var (
	ttyAvailable = utils.IsTTYAvailable
	confirm      = utils.ConfirmFromTTY
)

// confirmReboot asks before rebooting unless --yes was given.
func confirmReboot(yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !ttyAvailable() {
		return false, fmt.Errorf("%w: rebooting needs confirmation on a terminal; pass --yes", kerrors.ErrInvalidArgument)
	}
	return confirm("Reboot the device now?")
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output to JSON: %w", err)
	}
	return string(data), nil
}

// formatError turns a workflow error into the message shown to the user.
func formatError(err error) string {
	cross := ui.Error.Sprint(ui.Cross)
	arrow := ui.Info.Sprint(ui.Arrow)

	switch {
	case errors.Is(err, kerrors.ErrValidation):
		return cross + " " + err.Error() + "\n" +
			arrow + " Tokens are exactly 16 hexadecimal characters, e.g. " + ui.Token.Sprint("0123456789abcdef")

	case errors.Is(err, kerrors.ErrNotFound):
		return cross + " " + err.Error() + "\n" +
			arrow + " Run " + ui.Code.Sprint("ssaidctl apps list") + " to see the installed applications"

	case errors.Is(err, kerrors.ErrUserNotFound):
		return cross + " " + err.Error() + "\n" +
			arrow + " Run " + ui.Code.Sprint("ssaidctl users list") + " to see the users on this device"

	case errors.Is(err, kerrors.ErrNoUsers):
		return cross + " " + err.Error()

	case errors.Is(err, kerrors.ErrBusy):
		return cross + " " + err.Error() + "\n" +
			arrow + " Wait for it to finish and try again"

	case errors.Is(err, kerrors.ErrConsistency):
		return cross + " " + err.Error() + "\n" +
			arrow + " The store was changed by something else; nothing was written. Run the command again to reload it"

	case errors.Is(err, kerrors.ErrCodec):
		return cross + " " + err.Error() + "\n" +
			arrow + " Check that the converters in " + ui.Code.Sprint("ssaidctl config show") + " exist on the device"

	case errors.Is(err, kerrors.ErrCommitFailed):
		return cross + " " + err.Error() + "\n" +
			arrow + " The original store was left unchanged"

	case errors.Is(err, kerrors.ErrInvalidConfig),
		errors.Is(err, kerrors.ErrInvalidArgument),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return cross + " " + err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		return cross + " Timed out waiting for the device\n" +
			arrow + " Increase " + ui.Flag.Sprint("--timeout") + " or check the device connection"

	default:
		return cross + " " + err.Error()
	}
}

// isUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
// Mistakes in the command line are reported without failing the process twice.
func isUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrValidation),
		errors.Is(err, kerrors.ErrNotFound),
		errors.Is(err, kerrors.ErrUserNotFound),
		errors.Is(err, kerrors.ErrInvalidArgument),
		errors.Is(err, kerrors.ErrInvalidDateFormat),
		errors.Is(err, kerrors.ErrNoFilesFound):
		return false
	default:
		return true
	}
}

// reportedError marks an error whose message was already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err's message was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail shows err through the spinner's final message. Only unexpected
// errors make the command exit non-zero.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return &reportedError{err: err}
	}
	return nil
}
