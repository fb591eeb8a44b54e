package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/ssaidctl/internal/utils"
)

type UserSettings struct {
	UserConfigsPath string
	Username        string
}

var UserSsaidSettings *UserSettings

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr != nil {
			log.Fatalf("error getting config directory: %s", err)
		}
		// Android shells rarely set XDG variables.
		configDir = filepath.Join(homeDir, ".config")
	}

	username, err := utils.GetUsername()
	if err != nil {
		username = "unknown"
	}

	UserSsaidSettings = &UserSettings{
		UserConfigsPath: filepath.Join(configDir, "ssaidctl"),
		Username:        username,
	}
}

// AuditLogPath returns the path of the audit log.
func AuditLogPath() string {
	return filepath.Join(UserSsaidSettings.UserConfigsPath, "audit.jsonl")
}
