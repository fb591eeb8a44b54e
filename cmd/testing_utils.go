// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for faking a device in a temp
// directory, capturing output and building a fresh CLI per test.
package cmd

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/ssaidctl/internal/configs"
	logger "github.com/PolarWolf314/ssaidctl/internal/logging"
)

const (
	testValue   = "abcdef0123456789"
	testDefault = "1111111111111111"
)

// testStore renders a store holding the platform record, pkg and one
// application still on its default.
func testStore(pkg string) string {
	return fmt.Sprintf(`<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<settings version="-1">
  <setting id="0" name="userkey" value="0123456789ABCDEF0123456789ABCDEF" package="android" defaultValue="0123456789ABCDEF0123456789ABCDEF" defaultSysSet="true" tag="null" />
  <setting id="1" name="10120" value="%s" package="%s" defaultValue="%s" defaultSysSet="false" tag="200" />
  <setting id="2" name="10121" value="fedcba9876543210" package="org.example.notes" defaultValue="fedcba9876543210" defaultSysSet="true" tag="null" />
</settings>
`, testValue, pkg, testDefault)
}

// testEnv is a fake device rooted in a temp directory.
type testEnv struct {
	root string
	cfg  *configs.Config
}

func (e testEnv) storePath(user string) string {
	return e.cfg.StorePath(user)
}

func (e testEnv) readStore(t *testing.T, user string) string {
	t.Helper()
	data, err := os.ReadFile(e.storePath(user))
	if err != nil {
		t.Fatalf("Failed to read store for user %s: %v", user, err)
	}
	return string(data)
}

func (e testEnv) rebooted() bool {
	_, err := os.Stat(filepath.Join(e.root, "rebooted"))
	return err == nil
}

// setupTestEnvironment points the config directory at a temp dir and writes
// a config whose device commands run through the local shell. User 0 gets a
// text store and user 10 a gzip-packed one.
func setupTestEnvironment(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	originalUserSettings := configs.UserSsaidSettings
	configs.UserSsaidSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(t.TempDir(), "config"),
		Username:        "testuser",
	}

	originalTTY, originalConfirm := ttyAvailable, confirm
	t.Cleanup(func() {
		configs.UserSsaidSettings = originalUserSettings
		ttyAvailable, confirm = originalTTY, originalConfirm
		ResetGlobalState()
	})
	ttyAvailable = func() bool { return false }

	root := t.TempDir()
	cfg := configs.DefaultConfig()
	cfg.Device.StorePath = filepath.Join(root, "users", "{user}", "settings_ssaid.xml")
	cfg.Device.BackupDir = filepath.Join(root, "backup")
	cfg.Device.Shell = []string{"sh", "-c"}
	cfg.Converter.ToText = "gzip -dc {in}"
	cfg.Converter.ToBinary = "gzip -c {in} > {out}"
	cfg.Commands.ListUsers = `printf 'Users:\n\tUserInfo{10:Work:1030}\n\tUserInfo{0:Owner:c13} running\n'`
	cfg.Commands.Reboot = "touch " + filepath.Join(root, "rebooted")
	if err := configs.SaveConfig(cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	env := testEnv{root: root, cfg: cfg}
	writeTestStore(t, env.storePath("0"), []byte(testStore("com.example.app")))

	var packed bytes.Buffer
	w := gzip.NewWriter(&packed)
	if _, err := w.Write([]byte(testStore("com.work.mail"))); err != nil {
		t.Fatalf("Failed to pack store: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to pack store: %v", err)
	}
	writeTestStore(t, env.storePath("10"), packed.Bytes())

	return env
}

func writeTestStore(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("Failed to create store directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write store: %v", err)
	}
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// createTestCLI creates a complete CLI instance for testing with the given arguments.
func createTestCLI(args ...string) *cobra.Command {
	ResetGlobalState()
	Logger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:           "ssaidctl",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.AddCommand(AppsCmd, UsersCmd, StoreCmd, ConfigCmd, AboutCmd)
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes the CLI with args and returns everything it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}
