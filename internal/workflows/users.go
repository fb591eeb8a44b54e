package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/ssaidctl/internal/audit"
	"github.com/PolarWolf314/ssaidctl/internal/configs"
)

// ListUsersResult contains the device's users.
type ListUsersResult struct {
	// Users are sorted numerically.
	Users []string

	// Current is the persisted user selection.
	Current string
}

// ListUsers enumerates the users on the device.
func ListUsers(ctx context.Context) (*ListUsersResult, error) {
	cfg, manager, err := loadConfig()
	if err != nil {
		return nil, err
	}

	users, err := manager.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &ListUsersResult{Users: users, Current: cfg.LastUser()}, nil
}

// SwitchUserOptions configures the users switch workflow.
type SwitchUserOptions struct {
	User string
}

// SwitchUserResult contains the outcome of a user switch.
type SwitchUserResult struct {
	UserID   string
	Previous string
	Path     string
	Encoding string
	Apps     int
}

// SwitchUser loads the user's store to prove it is usable and then
// persists the user as the default for later commands.
//
// Returns ErrUserNotFound when the user has no store. The persisted
// selection is unchanged on any error.
func SwitchUser(ctx context.Context, opts SwitchUserOptions) (*SwitchUserResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	previous := s.cfg.LastUser()
	s.cfg.SetLastUser(s.user)
	if err := configs.SaveConfig(s.cfg); err != nil {
		return nil, fmt.Errorf("saving selected user: %w", err)
	}

	entry := audit.NewEntry(audit.OpSwitch)
	entry.UserID = s.user
	entry.Path = s.reg.SourcePath
	audit.Log(entry)

	return &SwitchUserResult{
		UserID:   s.user,
		Previous: previous,
		Path:     s.reg.SourcePath,
		Encoding: s.reg.Encoding.String(),
		Apps:     len(s.reg.Selectable()),
	}, nil
}

// CurrentUserResult describes the persisted user selection.
type CurrentUserResult struct {
	UserID string
	Path   string

	// LastSwitched is zero when no switch was ever recorded.
	LastSwitched time.Time
}

// CurrentUser returns the persisted user without contacting the device.
func CurrentUser(ctx context.Context) (*CurrentUserResult, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	user := cfg.LastUser()
	return &CurrentUserResult{
		UserID:       user,
		Path:         cfg.StorePath(user),
		LastSwitched: cfg.State.LastSwitched,
	}, nil
}
