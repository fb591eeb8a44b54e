package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
)

// ConfigShowResult contains the effective configuration.
type ConfigShowResult struct {
	Path   string
	Config *configs.Config

	// Exists is false when only defaults are in effect.
	Exists bool
}

// ConfigShow loads the effective configuration.
func ConfigShow(ctx context.Context) (*ConfigShowResult, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	path := configs.ConfigPath()
	_, statErr := os.Stat(path)
	return &ConfigShowResult{Path: path, Config: cfg, Exists: statErr == nil}, nil
}

// ConfigSetOptions configures the config set workflow.
type ConfigSetOptions struct {
	Key   string
	Value string
}

// ConfigSetResult contains the outcome of a config change.
type ConfigSetResult struct {
	Key      string
	Previous string
	Value    string
	Path     string
}

// ConfigSet changes one configuration key and saves the file.
//
// Returns ErrInvalidConfig for unknown keys or values that fail validation;
// the file is unchanged in that case.
func ConfigSet(ctx context.Context, opts ConfigSetOptions) (*ConfigSetResult, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	previous, err := cfg.Get(opts.Key)
	if err != nil {
		return nil, err
	}
	if err := cfg.Set(opts.Key, opts.Value); err != nil {
		return nil, err
	}
	if err := configs.SaveConfig(cfg); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	value, _ := cfg.Get(opts.Key)
	return &ConfigSetResult{Key: opts.Key, Previous: previous, Value: value, Path: configs.ConfigPath()}, nil
}
