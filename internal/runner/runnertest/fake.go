// Package runnertest provides a scripted Runner for tests so pipeline
// behavior can be exercised without spawning processes.
package runnertest

import (
	"context"
	"strings"
	"sync"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"
)

// Fake is a runner.Runner that records every request and answers from a
// script. Safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	calls []runner.Request

	// Script, when set, produces the result for each request. When nil,
	// every command succeeds with empty output.
	Script func(req runner.Request) runner.Result
}

// Run records req and returns the scripted result
func (f *Fake) Run(_ context.Context, req runner.Request) runner.Result {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.Script != nil {
		res := f.Script(req)
		if res.Command == "" {
			res.Command = commandLine(req)
		}
		return res
	}
	return Ok(req)
}

// Calls returns a copy of the recorded requests in order
func (f *Fake) Calls() []runner.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]runner.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many commands were run
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// CommandLines returns the recorded commands as joined strings
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = commandLine(c)
	}
	return out
}

// Ok returns a successful result for req
func Ok(req runner.Request) runner.Result {
	return runner.Result{
		Command:  commandLine(req),
		ExitCode: 0,
		Success:  true,
	}
}

// Failed returns a non-zero-exit result for req with the given stderr
func Failed(req runner.Request, exitCode int, stderr string) runner.Result {
	return runner.Result{
		Command:  commandLine(req),
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// TimedOut returns a timeout result for req
func TimedOut(req runner.Request) runner.Result {
	return runner.Result{
		Command:  commandLine(req),
		ExitCode: -1,
		TimedOut: true,
		Error:    "command timed out",
	}
}

func commandLine(req runner.Request) string {
	return strings.Join(append([]string{req.Name}, req.Args...), " ")
}
