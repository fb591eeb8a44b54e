// Package executortest provides a scripted Executor for tests.
package executortest

import (
	"context"
	"strings"
	"sync"

	"github.com/PolarWolf314/ssaidctl/internal/executor"
)

// Response is the scripted outcome of one command line.
type Response struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

type rule struct {
	prefix   string
	exact    bool
	response Response
}

// Fake answers command lines from scripted rules and records every call.
// Lines that match no rule go to Fallback, or exit 127 when Fallback is nil.
type Fake struct {
	Fallback executor.Executor

	mu    sync.Mutex
	rules []rule
	calls []executor.Command
}

// On scripts the response for an exact command line.
func (f *Fake) On(line string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: line, exact: true, response: resp})
	return f
}

// OnPrefix scripts the response for any line starting with prefix.
func (f *Fake) OnPrefix(prefix string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, response: resp})
	return f
}

func (f *Fake) Execute(ctx context.Context, cmd executor.Command) (executor.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	resp, ok := f.match(cmd.Line)
	f.mu.Unlock()

	if !ok {
		if f.Fallback != nil {
			return f.Fallback.Execute(ctx, cmd)
		}
		return executor.Result{ExitCode: 127, Stderr: "command not found"}, nil
	}
	if resp.Err != nil {
		return executor.Result{}, resp.Err
	}
	return executor.Result{
		ExitCode: resp.ExitCode,
		Stdout:   []byte(resp.Stdout),
		Stderr:   resp.Stderr,
	}, nil
}

// match returns the most recently added rule matching line.
func (f *Fake) match(line string) (Response, bool) {
	for i := len(f.rules) - 1; i >= 0; i-- {
		r := f.rules[i]
		if r.exact && r.prefix == line {
			return r.response, true
		}
		if !r.exact && strings.HasPrefix(line, r.prefix) {
			return r.response, true
		}
	}
	return Response{}, false
}

// Calls returns the command lines executed so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.calls))
	for i, c := range f.calls {
		lines[i] = c.Line
	}
	return lines
}

// CalledWithPrefix reports whether any executed line starts with prefix.
func (f *Fake) CalledWithPrefix(prefix string) bool {
	for _, line := range f.Calls() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
