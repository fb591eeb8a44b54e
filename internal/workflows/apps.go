package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/ssaidctl/internal/audit"
	"github.com/PolarWolf314/ssaidctl/internal/device"
	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
)

// ListAppsOptions configures the apps list workflow.
type ListAppsOptions struct {
	// User selects the device user. Empty means the persisted user.
	User string

	// All includes the platform record.
	All bool
}

// ListAppsResult contains the records of one user's store.
type ListAppsResult struct {
	UserID   string
	Path     string
	Encoding string
	Apps     []registry.Record

	// Warnings lists settings that were skipped while parsing.
	Warnings []registry.Warning
}

// ListApps returns the applications in a user's store, in document order.
func ListApps(ctx context.Context, opts ListAppsOptions) (*ListAppsResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	apps := s.reg.Selectable()
	if opts.All {
		apps = s.reg.Records()
	}

	return &ListAppsResult{
		UserID:   s.user,
		Path:     s.reg.SourcePath,
		Encoding: s.reg.Encoding.String(),
		Apps:     apps,
		Warnings: s.manager.Active().Warnings,
	}, nil
}

// ShowAppOptions configures the apps show workflow.
type ShowAppOptions struct {
	User    string
	Package string
}

// ShowAppResult contains one application's record.
type ShowAppResult struct {
	UserID string
	Path   string
	Record registry.Record

	// IsDefault is true when the current token equals the platform default.
	IsDefault bool
}

// ShowApp returns the record for one application.
//
// Returns ErrNotFound for unknown packages and for the platform record.
func ShowApp(ctx context.Context, opts ShowAppOptions) (*ShowAppResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	rec, ok := s.reg.Lookup(opts.Package)
	if !ok || opts.Package == registry.PlatformPackage {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, opts.Package)
	}

	return &ShowAppResult{
		UserID:    s.user,
		Path:      s.reg.SourcePath,
		Record:    rec,
		IsDefault: rec.Value == rec.DefaultValue,
	}, nil
}

// TokenMode selects where SetToken's new token comes from.
type TokenMode int

const (
	// ModeExplicit uses SetTokenOptions.Token.
	ModeExplicit TokenMode = iota
	// ModeRandom draws a fresh random token.
	ModeRandom
	// ModeDefault restores the platform-assigned default.
	ModeDefault
)

func (m TokenMode) auditOperation() string {
	switch m {
	case ModeRandom:
		return audit.OpRandomize
	case ModeDefault:
		return audit.OpRestore
	default:
		return audit.OpSet
	}
}

// randomToken is replaced in tests for deterministic tokens.
var randomToken = registry.RandomToken

// SetTokenOptions configures the set, randomize and restore workflows.
type SetTokenOptions struct {
	User    string
	Package string

	Mode TokenMode

	// Token is the new value for ModeExplicit.
	Token string

	// Backup copies the store to the backup location before committing.
	Backup bool

	// DryRun computes the change without committing it.
	DryRun bool

	// Reboot restarts the device after a successful commit so the platform
	// picks up the new token.
	Reboot bool
}

// SetTokenResult contains the outcome of a token change.
type SetTokenResult struct {
	Outcome *device.MutationOutcome

	// BackupPath is where the store was copied when Backup was requested.
	BackupPath string

	DryRun   bool
	Rebooted bool
}

// SetToken changes one application's token in a user's store.
//
// Returns ErrValidation for malformed tokens, ErrNotFound for unknown
// packages, ErrConsistency when the store changed since it was loaded and
// ErrCommitFailed or ErrCodec when the store could not be written. The
// store is untouched in all of these cases. When the reboot fails after a
// successful commit, the result is returned together with the error.
func SetToken(ctx context.Context, opts SetTokenOptions) (*SetTokenResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	token, err := resolveToken(s.reg, opts)
	if err != nil {
		return &SetTokenResult{Outcome: &device.MutationOutcome{
			UserID:  s.user,
			Package: opts.Package,
			Path:    s.reg.SourcePath,
			State:   device.StateNotFound,
		}}, err
	}

	if opts.DryRun {
		outcome, err := s.manager.Preview(opts.Package, token)
		return &SetTokenResult{Outcome: outcome, DryRun: true}, err
	}

	result := &SetTokenResult{}
	if opts.Backup {
		if result.BackupPath, err = backupActive(ctx, s); err != nil {
			return nil, err
		}
	}

	outcome, err := s.manager.Mutate(ctx, opts.Package, token)
	result.Outcome = outcome
	if err != nil {
		return result, err
	}

	entry := audit.NewEntry(opts.Mode.auditOperation())
	entry.UserID = outcome.UserID
	entry.Package = outcome.Package
	entry.OldValue = outcome.Previous.Value
	entry.NewValue = outcome.Record.Value
	entry.Path = outcome.Path
	audit.Log(entry)

	if opts.Reboot {
		if err := reboot(ctx, s.manager); err != nil {
			return result, err
		}
		result.Rebooted = true
	}
	return result, nil
}

// resolveToken picks the token for opts.Mode. Explicit tokens are validated
// by the mutation itself.
func resolveToken(reg *registry.Registry, opts SetTokenOptions) (string, error) {
	switch opts.Mode {
	case ModeRandom:
		return randomToken(), nil
	case ModeDefault:
		if opts.Package == registry.PlatformPackage {
			return "", fmt.Errorf("%w: %s", kerrors.ErrNotFound, opts.Package)
		}
		return reg.DefaultToken(opts.Package)
	default:
		return opts.Token, nil
	}
}
