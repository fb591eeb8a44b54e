// Package workflows provides high-level orchestration for ssaidctl commands.
//
// Workflows coordinate configuration, the device manager and the audit log
// to implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration and picking the device user
//   - Loading that user's store through a device.Manager
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - ListApps, ShowApp: read a user's registry
//   - SetToken: set, randomize or restore one application's token
//   - ListUsers, SwitchUser, CurrentUser: device users and the persisted selection
//   - StoreInfo, Backup, Reboot: store maintenance
//   - Log: read the audit trail
//   - ConfigShow, ConfigSet: inspect and edit config.toml
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.SetToken(ctx, opts)
//	if errors.Is(err, kerrors.ErrValidation) {
//	    // Explain the token format
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Every command sent to the device runs under it.
package workflows
