package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreInfo(t *testing.T) {
	env := setupTestEnvironment(t)

	output, err := runCLI(t, "store", "info")
	if err != nil {
		t.Fatalf("store info failed: %v", err)
	}
	for _, want := range []string{
		"Store for user 0",
		"path:        " + env.storePath("0"),
		"encoding:    xml",
		"apps:        2 (3 records)",
		"customized:  1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestStoreBackup(t *testing.T) {
	env := setupTestEnvironment(t)

	output, err := runCLI(t, "store", "backup", "--user", "10")
	if err != nil {
		t.Fatalf("store backup failed: %v", err)
	}
	if !strings.Contains(output, "Backed up the store of user 10") {
		t.Errorf("Unexpected output: %s", output)
	}

	original, _ := os.ReadFile(env.storePath("10"))
	backup, err := os.ReadFile(env.cfg.BackupPath("10"))
	if err != nil {
		t.Fatalf("Backup was not written: %v", err)
	}
	if string(backup) != string(original) {
		t.Error("Backup differs from the store")
	}
}

func TestStoreRebootNeedsConfirmation(t *testing.T) {
	env := setupTestEnvironment(t)

	output, err := runCLI(t, "store", "reboot")
	if err != nil {
		t.Errorf("Expected clean exit, got: %v", err)
	}
	if !strings.Contains(output, "pass --yes") {
		t.Errorf("Expected --yes hint, got: %s", output)
	}
	if env.rebooted() {
		t.Error("Device rebooted without confirmation")
	}
}

func TestStoreRebootDeclined(t *testing.T) {
	env := setupTestEnvironment(t)
	ttyAvailable = func() bool { return true }
	confirm = func(string) (bool, error) { return false, nil }

	output, err := runCLI(t, "store", "reboot")
	if err != nil {
		t.Fatalf("store reboot failed: %v", err)
	}
	if !strings.Contains(output, "Reboot cancelled") {
		t.Errorf("Unexpected output: %s", output)
	}
	if env.rebooted() {
		t.Error("Device rebooted after the prompt was declined")
	}
}

func TestStoreReboot(t *testing.T) {
	env := setupTestEnvironment(t)

	output, err := runCLI(t, "store", "reboot", "--yes")
	if err != nil {
		t.Fatalf("store reboot failed: %v", err)
	}
	if !strings.Contains(output, "Reboot requested") {
		t.Errorf("Unexpected output: %s", output)
	}
	if !env.rebooted() {
		t.Error("Reboot command was not run")
	}
}

func TestStoreLogWithoutLog(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "store", "log")
	if err != nil {
		t.Fatalf("store log failed: %v", err)
	}
	if !strings.Contains(output, "No audit log found") {
		t.Errorf("Unexpected output: %s", output)
	}
}

func TestStoreLog(t *testing.T) {
	setupTestEnvironment(t)

	for _, args := range [][]string{
		{"apps", "set", "com.example.app", "0123456789abcdef"},
		{"users", "switch", "10"},
		{"apps", "restore", "com.work.mail"},
	} {
		if _, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
	}

	output, err := runCLI(t, "store", "log")
	if err != nil {
		t.Fatalf("store log failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 log lines, got %d:\n%s", len(lines), output)
	}
	if !strings.Contains(lines[0], "set") || !strings.Contains(lines[0], "com.example.app "+testValue+" -> 0123456789abcdef") {
		t.Errorf("Unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "switch") {
		t.Errorf("Unexpected second line: %s", lines[1])
	}

	output, err = runCLI(t, "store", "log", "--package", "com.work.mail", "--json")
	if err != nil {
		t.Fatalf("store log --json failed: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if len(entries) != 1 || entries[0]["op"] != "restore" {
		t.Errorf("Unexpected filtered entries: %v", entries)
	}

	output, err = runCLI(t, "store", "log", "--operation", "backup")
	if err != nil {
		t.Fatalf("store log failed: %v", err)
	}
	if !strings.Contains(output, "matching the filters") {
		t.Errorf("Unexpected output: %s", output)
	}
}

func TestStoreLogInvalidDate(t *testing.T) {
	setupTestEnvironment(t)
	if _, err := runCLI(t, "store", "backup"); err != nil {
		t.Fatalf("store backup failed: %v", err)
	}

	output, err := runCLI(t, "store", "log", "--since", "yesterday")
	if err != nil {
		t.Errorf("Expected clean exit, got: %v", err)
	}
	if !strings.Contains(output, "invalid date format") {
		t.Errorf("Unexpected output: %s", output)
	}
}

func TestStoreCommandsWithMissingStore(t *testing.T) {
	env := setupTestEnvironment(t)
	if err := os.Remove(filepath.Join(env.root, "users", "0", "settings_ssaid.xml")); err != nil {
		t.Fatal(err)
	}

	output, err := runCLI(t, "store", "info")
	if err != nil {
		t.Errorf("Expected clean exit, got: %v", err)
	}
	if !strings.Contains(output, "ssaidctl users list") {
		t.Errorf("Expected missing-user hint, got: %s", output)
	}
}
