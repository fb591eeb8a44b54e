package cmd

import (
	"strings"
	"testing"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
)

func TestUsersList(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "users", "list")
	if err != nil {
		t.Fatalf("users list failed: %v", err)
	}
	if output != "* 0\n  10\n" {
		t.Errorf("Unexpected users list output: %q", output)
	}
}

func TestUsersSwitchPersistsSelection(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "users", "switch", "10")
	if err != nil {
		t.Fatalf("users switch failed: %v", err)
	}
	if !strings.Contains(output, "Switched to user 10 (abx)") {
		t.Errorf("Unexpected output: %s", output)
	}

	cfg, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.LastUser() != "10" {
		t.Errorf("Expected selection 10 to be saved, got %q", cfg.LastUser())
	}

	output, err = runCLI(t, "users", "current")
	if err != nil {
		t.Fatalf("users current failed: %v", err)
	}
	if strings.TrimSpace(output) != "10" {
		t.Errorf("Expected current user 10, got %q", output)
	}

	output, err = runCLI(t, "apps", "list")
	if err != nil {
		t.Fatalf("apps list failed: %v", err)
	}
	if !strings.Contains(output, "com.work.mail") {
		t.Errorf("apps list did not use the selected user: %s", output)
	}
}

func TestUsersSwitchUnknownUser(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "users", "switch", "42")
	if err != nil {
		t.Errorf("Expected clean exit, got: %v", err)
	}
	if !strings.Contains(output, "ssaidctl users list") {
		t.Errorf("Expected hint, got: %s", output)
	}

	output, _ = runCLI(t, "users", "current")
	if strings.TrimSpace(output) != "0" {
		t.Errorf("Failed switch changed the selection: %q", output)
	}
}

func TestUsersSwitchInvalidID(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "users", "switch", "../0")
	if err != nil {
		t.Errorf("Expected clean exit, got: %v", err)
	}
	if !strings.Contains(output, "✗") {
		t.Errorf("Expected an error message, got: %s", output)
	}
}
