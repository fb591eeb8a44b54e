package utils

import (
	"os"
	"os/user"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// Operator identifies who ran a command, as user@host.
func Operator() string {
	username, err := GetUsername()
	if err != nil {
		username = "unknown"
	}
	hostname, err := GetHostname()
	if err != nil || hostname == "" {
		return username
	}
	return username + "@" + hostname
}
