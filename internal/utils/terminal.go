package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// IsTTYAvailable returns true if /dev/tty (or CON on Windows) is available for reading.
func IsTTYAvailable() bool {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return false
	}
	defer tty.Close()

	return term.IsTerminal(int(tty.Fd()))
}

// Confirm writes prompt to w and reads one line from r.
// Only "y" or "yes" (any case) count as agreement.
func Confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ConfirmFromTTY asks for confirmation on the controlling terminal, so it
// works even when stdin is piped. Returns an error when no terminal exists.
func ConfirmFromTTY(prompt string) (bool, error) {
	tty, err := os.OpenFile(ttyPath(), os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("cannot open %s for confirmation: %w", ttyPath(), err)
	}
	defer tty.Close()

	if !term.IsTerminal(int(tty.Fd())) {
		return false, fmt.Errorf("%s is not a terminal", ttyPath())
	}

	return Confirm(tty, tty, prompt)
}
