// Package errors provides typed error values for ssaidctl.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Every
// failure is local to one attempted operation (load, switch, mutate) and is
// never retried automatically.
//
// # Error Categories
//
//   - Store errors: the store cannot be classified, converted or parsed
//     (ErrDetection, ErrCodec, ErrParse)
//   - Mutation errors: an edit was rejected or could not be committed
//     (ErrValidation, ErrNotFound, ErrConsistency, ErrCommitFailed, ErrBusy)
//   - Context errors: user selection problems (ErrNoActiveUser, ErrUserNotFound)
//   - Command errors: a privileged command exited non-zero (ErrExec, ExecError)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %s", errors.ErrNotFound, pkg)
//
// Handle errors in the CLI layer:
//
//	outcome, err := workflows.SetToken(ctx, opts)
//	if errors.Is(err, kerrors.ErrValidation) {
//	    // Show the expected token format
//	}
//
// ExecError carries the exit status and stderr of the failing command and
// unwraps to ErrExec:
//
//	var execErr *kerrors.ExecError
//	if errors.As(err, &execErr) {
//	    fmt.Println(execErr.Stderr)
//	}
package errors
