package workflows

import (
	"context"

	"github.com/PolarWolf314/ssaidctl/internal/audit"
	"github.com/PolarWolf314/ssaidctl/internal/device"
	"github.com/PolarWolf314/ssaidctl/internal/registry"
)

// StoreInfoOptions configures the store info workflow.
type StoreInfoOptions struct {
	User string
}

// StoreInfoResult describes one user's store.
type StoreInfoResult struct {
	UserID   string `json:"user_id"`
	Path     string `json:"path"`
	Encoding string `json:"encoding"`

	// Records counts every setting, Apps only the selectable ones.
	Records int `json:"records"`
	Apps    int `json:"apps"`

	// Customized counts apps whose token differs from the platform default.
	Customized int `json:"customized"`

	BackupPath string             `json:"backup_path"`
	Warnings   []registry.Warning `json:"warnings,omitempty"`
}

// StoreInfo loads a user's store and summarizes it.
func StoreInfo(ctx context.Context, opts StoreInfoOptions) (*StoreInfoResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	apps := s.reg.Selectable()
	customized := 0
	for _, rec := range apps {
		if rec.Value != rec.DefaultValue {
			customized++
		}
	}

	return &StoreInfoResult{
		UserID:     s.user,
		Path:       s.reg.SourcePath,
		Encoding:   s.reg.Encoding.String(),
		Records:    s.reg.Len(),
		Apps:       len(apps),
		Customized: customized,
		BackupPath: s.cfg.BackupPath(s.user),
		Warnings:   s.manager.Active().Warnings,
	}, nil
}

// BackupOptions configures the store backup workflow.
type BackupOptions struct {
	User string
}

// BackupResult contains the outcome of a backup.
type BackupResult struct {
	UserID string
	Source string
	Path   string
}

// Backup copies a user's store, in its native encoding, to the backup location.
func Backup(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	s, err := openSession(ctx, opts.User)
	if err != nil {
		return nil, err
	}

	path, err := backupActive(ctx, s)
	if err != nil {
		return nil, err
	}
	return &BackupResult{UserID: s.user, Source: s.reg.SourcePath, Path: path}, nil
}

func backupActive(ctx context.Context, s *session) (string, error) {
	path, err := s.manager.Backup(ctx)
	if err != nil {
		return "", err
	}

	entry := audit.NewEntry(audit.OpBackup)
	entry.UserID = s.user
	entry.Path = path
	audit.Log(entry)

	return path, nil
}

// Reboot restarts the device so the platform reloads every store.
func Reboot(ctx context.Context) error {
	_, manager, err := loadConfig()
	if err != nil {
		return err
	}
	return reboot(ctx, manager)
}

func reboot(ctx context.Context, manager *device.Manager) error {
	if err := manager.Reboot(ctx); err != nil {
		return err
	}
	audit.Log(audit.NewEntry(audit.OpReboot))
	return nil
}
