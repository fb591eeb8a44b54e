package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Store errors indicate the on-disk settings store could not be read or converted.
var (
	// ErrDetection indicates the store is unreadable or its encoding could not be classified.
	ErrDetection = errors.New("store encoding could not be detected")

	// ErrCodec indicates the external binary/text converter failed.
	ErrCodec = errors.New("store conversion failed")

	// ErrParse indicates the text form of the store is malformed.
	ErrParse = errors.New("store document is malformed")
)

// Mutation errors indicate a requested edit was rejected before touching the store.
var (
	// ErrValidation indicates the new token does not have the required format.
	ErrValidation = errors.New("invalid token format")

	// ErrNotFound indicates the application identifier is not in the registry.
	ErrNotFound = errors.New("application not found in store")

	// ErrConsistency indicates the store text diverged from the loaded snapshot.
	ErrConsistency = errors.New("store content diverged from the loaded snapshot")

	// ErrCommitFailed indicates writing the new store content or setting its permissions failed.
	ErrCommitFailed = errors.New("failed to commit store")

	// ErrBusy indicates another mutation is in flight for the active user.
	ErrBusy = errors.New("another store operation is in progress")
)

// Context errors indicate issues with the selected device user.
var (
	// ErrNoActiveUser indicates no user context has been loaded yet.
	ErrNoActiveUser = errors.New("no active user")

	// ErrUserNotFound indicates the requested user does not exist on the device.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoUsers indicates the user listing produced no identifiers.
	ErrNoUsers = errors.New("no users found on device")
)

// Command errors indicate a privileged command failed.
var (
	// ErrExec indicates a command exited non-zero.
	ErrExec = errors.New("command failed")

	// ErrInvalidConfig indicates the configuration is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")

	// ErrNoFilesFound indicates an expected file, such as the audit log, does not exist.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrInvalidDateFormat indicates a date flag is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidArgument indicates a command argument is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ExecError describes a command that exited with a non-zero status.
type ExecError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrExec) match any ExecError.
func (e *ExecError) Unwrap() error {
	return ErrExec
}
