package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	"github.com/PolarWolf314/ssaidctl/internal/device"
	"github.com/PolarWolf314/ssaidctl/internal/executor"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
)

// NewExecutor builds the executor device commands are sent through.
// Tests replace it to script the device.
var NewExecutor = func(cfg *configs.Config) executor.Executor {
	return executor.NewShell(cfg.Device.Shell)
}

// session is one user's store loaded for the duration of a command.
type session struct {
	cfg     *configs.Config
	manager *device.Manager
	reg     *registry.Registry
	user    string
}

// loadConfig returns the config and a manager for it, without loading any store.
func loadConfig() (*configs.Config, *device.Manager, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, device.NewManager(NewExecutor(cfg), cfg), nil
}

// openSession loads user's store, or the persisted user's when user is empty.
func openSession(ctx context.Context, user string) (*session, error) {
	cfg, manager, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if user == "" {
		user = cfg.LastUser()
	}

	reg, err := manager.SwitchTo(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading store for user %s: %w", user, err)
	}

	return &session{cfg: cfg, manager: manager, reg: reg, user: manager.ActiveUser()}, nil
}
