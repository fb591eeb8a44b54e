// Package configs manages ssaidctl configuration.
//
// Configuration is stored in TOML format at
// $XDG_CONFIG_HOME/ssaidctl/config.toml (falling back to ~/.config):
//
//	[device]
//	store_path = "/data/system/users/{user}/settings_ssaid.xml"
//	backup_dir = "/data/adb/ssaidctl"
//	shell = ["su", "-c"]
//	owner = ""
//	user_source = "pm"
//
//	[converter]
//	to_text = "abx2xml {in} -"
//	to_binary = "xml2abx {in} {out}"
//
//	[commands]
//	list_users = "pm list users"
//	reboot = "reboot"
//
//	[state]
//	last_user = "10"
//
// Keys missing from the file take their defaults, so an absent file is a
// valid stock-device configuration.
//
// # State
//
// The [state] table remembers the last selected device user between runs.
// When it is empty, user "0" is selected.
//
// # Settings
//
// UserSsaidSettings is initialized at startup with the config directory
// and the local username. Tests point UserConfigsPath at a temp dir.
package configs
