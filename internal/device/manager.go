package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
	"github.com/PolarWolf314/ssaidctl/internal/store"
)

// UserContext is the loaded store of one device user.
type UserContext struct {
	UserID   string
	Registry *registry.Registry
	Warnings []registry.Warning

	// snapshot is the store content as last read or written, in its native encoding.
	snapshot []byte
}

// Manager owns the active user context and every operation that touches a
// user's store. At most one store operation runs at a time; a second one is
// rejected with ErrBusy rather than queued.
type Manager struct {
	exec      executor.Executor
	cfg       *configs.Config
	codec     *store.Codec
	committer *store.Committer

	sem      *semaphore.Weighted
	active   *UserContext
	lastUser string
}

// NewManager returns a Manager issuing commands through e as described by cfg.
func NewManager(e executor.Executor, cfg *configs.Config) *Manager {
	codec := store.NewCodec(e, cfg.Converter.ToText, cfg.Converter.ToBinary)
	committer := store.NewCommitter(e, codec)
	committer.Owner = cfg.Device.Owner

	return &Manager{
		exec:      e,
		cfg:       cfg,
		codec:     codec,
		committer: committer,
		sem:       semaphore.NewWeighted(1),
	}
}

// ActiveUser returns the id of the last successful switch, or "" before any.
func (m *Manager) ActiveUser() string {
	return m.lastUser
}

// Active returns the loaded user context, or nil when none is loaded.
func (m *Manager) Active() *UserContext {
	return m.active
}

func (m *Manager) acquire() error {
	if !m.sem.TryAcquire(1) {
		return kerrors.ErrBusy
	}
	return nil
}

func (m *Manager) release() {
	m.sem.Release(1)
}

// SwitchTo discards the active context and loads userID's store.
// Nothing from the previous user survives, even when loading fails.
func (m *Manager) SwitchTo(ctx context.Context, userID string) (*registry.Registry, error) {
	if !configs.IsValidUserID(userID) {
		return nil, fmt.Errorf("%w: %q is not a user id", kerrors.ErrUserNotFound, userID)
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	m.active = nil

	uc, err := m.load(ctx, normalizeUserID(userID))
	if err != nil {
		return nil, err
	}
	m.active = uc
	m.lastUser = uc.UserID
	return uc.Registry, nil
}

func (m *Manager) load(ctx context.Context, userID string) (*UserContext, error) {
	path := m.cfg.StorePath(userID)

	if _, err := executor.Run(ctx, m.exec, "test -f "+executor.Quote(path)); err != nil {
		var execErr *kerrors.ExecError
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: no store at %s", kerrors.ErrUserNotFound, path)
		}
		return nil, err
	}

	content, err := store.Read(ctx, m.exec, path)
	if err != nil {
		return nil, err
	}

	enc, err := m.detect(ctx, path, content)
	if err != nil {
		return nil, err
	}

	text := content
	if enc == store.PackedBinary {
		if text, err = m.codec.ToText(ctx, path); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg, warnings, err := registry.Parse(text, path, enc)
	if err != nil {
		return nil, err
	}
	return &UserContext{UserID: userID, Registry: reg, Warnings: warnings, snapshot: content}, nil
}

// detect classifies content, asking the device's file-type probe when the
// bytes alone are inconclusive. Only a probe that identifies XML overrides
// the detection error; anything else leaves the store unparsed.
func (m *Manager) detect(ctx context.Context, path string, content []byte) (store.Encoding, error) {
	enc, err := store.Detect(content)
	if err == nil || len(content) == 0 {
		return enc, err
	}
	desc, probeErr := store.Probe(ctx, m.exec, path)
	if probeErr != nil {
		return store.EncodingUnknown, err
	}
	if probed, classifyErr := store.ClassifyProbe(desc); classifyErr == nil && probed == store.TextXML {
		return probed, nil
	}
	return store.EncodingUnknown, err
}

// Preview computes the edit that sets pkg to token without committing it.
func (m *Manager) Preview(pkg, token string) (*MutationOutcome, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	out, _, err := m.plan(pkg, token, nil)
	return out, err
}

// Mutate sets pkg's token in the active user's store and commits it.
// The returned outcome is non-nil whenever a user context was active and
// names the state the attempt ended in.
func (m *Manager) Mutate(ctx context.Context, pkg, token string) (*MutationOutcome, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	out, patch, err := m.plan(pkg, token, func(uc *UserContext) error {
		return m.verifySource(ctx, uc)
	})
	if err != nil {
		return out, err
	}
	uc := m.active
	reg := uc.Registry

	out.advance(StateCommitting)
	if err := m.committer.Commit(ctx, reg.SourcePath, patch.Text, reg.Encoding); err != nil {
		out.advance(StateCommitFailed)
		return out, err
	}
	out.advance(StateCommitted)

	if err := reg.Accept(patch); err != nil {
		m.active = nil
		return out, err
	}
	m.refreshSnapshot(ctx, uc, patch.Text)
	return out, nil
}

// verifySource checks that the store on disk still holds what uc was
// loaded from.
func (m *Manager) verifySource(ctx context.Context, uc *UserContext) error {
	path := uc.Registry.SourcePath
	current, err := store.Read(ctx, m.exec, path)
	if err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrConsistency, err)
	}
	if !bytes.Equal(current, uc.snapshot) {
		return fmt.Errorf("%w: %s changed since it was loaded", kerrors.ErrConsistency, path)
	}
	return nil
}

// refreshSnapshot records what the commit left on disk. When the packed
// result cannot be read back the context is dropped, so the next operation
// has to reload instead of trusting a stale snapshot.
func (m *Manager) refreshSnapshot(ctx context.Context, uc *UserContext, text []byte) {
	if uc.Registry.Encoding == store.TextXML {
		uc.snapshot = text
		return
	}
	packed, err := store.Read(ctx, m.exec, uc.Registry.SourcePath)
	if err != nil {
		m.active = nil
		return
	}
	uc.snapshot = packed
}

// plan walks an attempt from idle to patched. verify, when non-nil, runs
// while patching and ends the attempt as inconsistent_source on error.
func (m *Manager) plan(pkg, token string, verify func(*UserContext) error) (*MutationOutcome, *registry.PatchResult, error) {
	uc := m.active
	if uc == nil {
		return nil, nil, kerrors.ErrNoActiveUser
	}
	out := newOutcome(uc.UserID, pkg, uc.Registry.SourcePath)

	out.advance(StateValidating)
	if _, err := registry.ValidateToken(token); err != nil {
		out.advance(StateRejected)
		return out, nil, err
	}
	out.advance(StateValidated)

	out.advance(StateLocating)
	if pkg == registry.PlatformPackage {
		out.advance(StateNotFound)
		return out, nil, fmt.Errorf("%w: %s is reserved for the platform", kerrors.ErrNotFound, pkg)
	}
	if _, ok := uc.Registry.Lookup(pkg); !ok {
		out.advance(StateNotFound)
		return out, nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, pkg)
	}
	out.advance(StateLocated)

	out.advance(StatePatching)
	if verify != nil {
		if err := verify(uc); err != nil {
			out.advance(StateInconsistent)
			return out, nil, err
		}
	}
	patch, err := registry.Apply(uc.Registry, pkg, token)
	if err != nil {
		out.advance(patchFailureState(err))
		return out, nil, err
	}
	out.advance(StatePatched)

	out.Previous = patch.Previous
	out.Record = patch.Record
	out.Start, out.End = patch.Start, patch.End
	return out, patch, nil
}

// Backup copies the active user's store to the configured backup location
// and returns the backup path. It refuses while a mutation is in flight.
func (m *Manager) Backup(ctx context.Context) (string, error) {
	if err := m.acquire(); err != nil {
		return "", err
	}
	defer m.release()

	uc := m.active
	if uc == nil {
		return "", kerrors.ErrNoActiveUser
	}
	dst := m.cfg.BackupPath(uc.UserID)
	if err := store.Backup(ctx, m.exec, uc.Registry.SourcePath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Reboot runs the configured reboot command so the platform reloads its
// identifiers. It refuses while a mutation is in flight.
func (m *Manager) Reboot(ctx context.Context) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	if _, err := executor.Run(ctx, m.exec, m.cfg.Commands.Reboot); err != nil {
		return fmt.Errorf("rebooting device: %w", err)
	}
	return nil
}
