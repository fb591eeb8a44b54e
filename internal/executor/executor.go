package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
)

// Command is a single command line handed to the privileged shell.
type Command struct {
	Line string

	// Stdin is piped to the command when non-nil.
	Stdin []byte
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// Executor runs command lines on the device.
//
// Execute returns an error only when the command could not be run at all
// (missing shell, cancelled context). A command that ran and exited non-zero
// is reported through Result.ExitCode.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (Result, error)
}

// DefaultPrefix runs commands through a root shell.
var DefaultPrefix = []string{"su", "-c"}

// Shell executes command lines by appending them to Prefix, e.g. `su -c <line>`.
type Shell struct {
	Prefix []string
}

// NewShell returns a Shell using prefix, or DefaultPrefix when prefix is empty.
func NewShell(prefix []string) *Shell {
	if len(prefix) == 0 {
		prefix = DefaultPrefix
	}
	return &Shell{Prefix: append([]string(nil), prefix...)}
}

func (s *Shell) Execute(ctx context.Context, cmd Command) (Result, error) {
	prefix := s.Prefix
	if len(prefix) == 0 {
		prefix = DefaultPrefix
	}

	args := append(append([]string{}, prefix[1:]...), cmd.Line)
	c := exec.CommandContext(ctx, prefix[0], args...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	err := c.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("running %q: %w", cmd.Line, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("running %q: %w", cmd.Line, err)
}

// Run executes line and returns its stdout, treating a non-zero exit as an ExecError.
func Run(ctx context.Context, e Executor, line string) ([]byte, error) {
	return RunWithInput(ctx, e, line, nil)
}

// RunWithInput is Run with stdin piped to the command.
func RunWithInput(ctx context.Context, e Executor, line string, stdin []byte) ([]byte, error) {
	result, err := e.Execute(ctx, Command{Line: line, Stdin: stdin})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return result.Stdout, &kerrors.ExecError{
			Command:  line,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
	return result.Stdout, nil
}

// Quote returns s as a single POSIX shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("/._-+:,=@%", r):
		return false
	}
	return true
}

// Expand replaces {name} placeholders in template with the shell-quoted values in vars.
func Expand(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", Quote(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
