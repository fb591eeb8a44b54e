package configs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
)

// UserPlaceholder is replaced with the device user id in StorePath.
const UserPlaceholder = "{user}"

// DefaultUser is selected when no user has been persisted.
const DefaultUser = "0"

// User id sources.
const (
	UserSourcePM   = "pm"
	UserSourceScan = "scan"
)

type Config struct {
	Device    DeviceConfig    `toml:"device" json:"device"`
	Converter ConverterConfig `toml:"converter" json:"converter"`
	Commands  CommandsConfig  `toml:"commands" json:"commands"`
	State     StateConfig     `toml:"state" json:"state"`
}

type DeviceConfig struct {
	StorePath  string   `toml:"store_path" json:"store_path"`
	BackupDir  string   `toml:"backup_dir" json:"backup_dir"`
	Shell      []string `toml:"shell" json:"shell"`
	Owner      string   `toml:"owner" json:"owner"`
	UserSource string   `toml:"user_source" json:"user_source"`
}

type ConverterConfig struct {
	ToText   string `toml:"to_text" json:"to_text"`
	ToBinary string `toml:"to_binary" json:"to_binary"`
}

type CommandsConfig struct {
	ListUsers string `toml:"list_users" json:"list_users"`
	Reboot    string `toml:"reboot" json:"reboot"`
}

// StateConfig is what ssaidctl remembers between runs.
type StateConfig struct {
	LastUser     string    `toml:"last_user" json:"last_user"`
	LastSwitched time.Time `toml:"last_switched,omitempty" json:"last_switched,omitempty"`
}

// DefaultConfig returns the configuration for a stock Android device.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			StorePath:  "/data/system/users/{user}/settings_ssaid.xml",
			BackupDir:  "/data/adb/ssaidctl",
			Shell:      []string{"su", "-c"},
			UserSource: UserSourcePM,
		},
		Converter: ConverterConfig{
			ToText:   "abx2xml {in} -",
			ToBinary: "xml2abx {in} {out}",
		},
		Commands: CommandsConfig{
			ListUsers: "pm list users",
			Reboot:    "reboot",
		},
	}
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	return filepath.Join(UserSsaidSettings.UserConfigsPath, "config.toml")
}

// LoadConfig loads the config file, filling unset keys with defaults.
// A missing file yields the defaults.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(ConfigPath()); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(ConfigPath(), config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the config file.
func SaveConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks the fields ssaidctl cannot work without.
func (c *Config) Validate() error {
	if !strings.Contains(c.Device.StorePath, UserPlaceholder) {
		return fmt.Errorf("%w: device.store_path must contain %s", kerrors.ErrInvalidConfig, UserPlaceholder)
	}
	if len(c.Device.Shell) == 0 {
		return fmt.Errorf("%w: device.shell must not be empty", kerrors.ErrInvalidConfig)
	}
	if c.Device.UserSource != UserSourcePM && c.Device.UserSource != UserSourceScan {
		return fmt.Errorf("%w: device.user_source must be %q or %q", kerrors.ErrInvalidConfig, UserSourcePM, UserSourceScan)
	}
	if c.State.LastUser != "" && !IsValidUserID(c.State.LastUser) {
		return fmt.Errorf("%w: state.last_user %q is not a user id", kerrors.ErrInvalidConfig, c.State.LastUser)
	}
	return nil
}

// StorePath returns the store location for userID.
func (c *Config) StorePath(userID string) string {
	return strings.ReplaceAll(c.Device.StorePath, UserPlaceholder, userID)
}

// BackupPath returns where the backup of userID's store is written.
func (c *Config) BackupPath(userID string) string {
	return path.Join(c.Device.BackupDir, userID, path.Base(c.StorePath(userID)))
}

// LastUser returns the persisted user, or DefaultUser when none is set.
func (c *Config) LastUser() string {
	if c.State.LastUser == "" {
		return DefaultUser
	}
	return c.State.LastUser
}

// SetLastUser records userID as the last selected user.
func (c *Config) SetLastUser(userID string) {
	c.State.LastUser = userID
	c.State.LastSwitched = time.Now().UTC()
}

var userIDPattern = regexp.MustCompile(`^[0-9]+$`)

// IsValidUserID reports whether id looks like an Android user id.
func IsValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

type setting struct {
	get func(c *Config) string
	set func(c *Config, v string)
}

var settings = map[string]setting{
	"device.store_path": {
		func(c *Config) string { return c.Device.StorePath },
		func(c *Config, v string) { c.Device.StorePath = v },
	},
	"device.backup_dir": {
		func(c *Config) string { return c.Device.BackupDir },
		func(c *Config, v string) { c.Device.BackupDir = v },
	},
	"device.shell": {
		func(c *Config) string { return strings.Join(c.Device.Shell, " ") },
		func(c *Config, v string) { c.Device.Shell = strings.Fields(v) },
	},
	"device.owner": {
		func(c *Config) string { return c.Device.Owner },
		func(c *Config, v string) { c.Device.Owner = v },
	},
	"device.user_source": {
		func(c *Config) string { return c.Device.UserSource },
		func(c *Config, v string) { c.Device.UserSource = v },
	},
	"converter.to_text": {
		func(c *Config) string { return c.Converter.ToText },
		func(c *Config, v string) { c.Converter.ToText = v },
	},
	"converter.to_binary": {
		func(c *Config) string { return c.Converter.ToBinary },
		func(c *Config, v string) { c.Converter.ToBinary = v },
	},
	"commands.list_users": {
		func(c *Config) string { return c.Commands.ListUsers },
		func(c *Config, v string) { c.Commands.ListUsers = v },
	},
	"commands.reboot": {
		func(c *Config) string { return c.Commands.Reboot },
		func(c *Config, v string) { c.Commands.Reboot = v },
	},
	"state.last_user": {
		func(c *Config) string { return c.State.LastUser },
		func(c *Config, v string) { c.State.LastUser = v },
	},
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key such as device.store_path.
func (c *Config) Get(key string) (string, error) {
	s, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown key %q", kerrors.ErrInvalidConfig, key)
	}
	return s.get(c), nil
}

// Set changes a dotted key and validates the result. On error c is unchanged.
func (c *Config) Set(key, value string) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", kerrors.ErrInvalidConfig, key)
	}

	updated := *c
	updated.Device.Shell = append([]string(nil), c.Device.Shell...)
	s.set(&updated, value)
	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}
