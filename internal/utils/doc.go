// Package utils provides shared helpers for ssaidctl.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//   - Operator: user@host, recorded in the audit log
//
// # Terminal Utilities
//
//   - IsTerminal: checks if stdin is a terminal
//   - IsTTYAvailable: checks if /dev/tty can be opened
//   - Confirm, ConfirmFromTTY: yes/no prompts used before rebooting the device
package utils
