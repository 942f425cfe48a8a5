package runner

import (
	"context"
	"time"
)

// Request describes a single external command invocation.
type Request struct {
	Name    string        `json:"name"`
	Args    []string      `json:"args"`
	Dir     string        `json:"dir"`
	Timeout time.Duration `json:"timeout"`
}

// Result represents the outcome of running one external command.
// Command failure is data, not a Go error: Success is true iff the
// process ran and exited zero.
type Result struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	TimedOut bool          `json:"timed_out"`
	Error    string        `json:"error,omitempty"`
}

// CombinedOutput returns stdout and stderr joined, stdout first.
func (r Result) CombinedOutput() string {
	out := r.Stdout
	if r.Stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += r.Stderr
	}
	return out
}

// Runner executes external commands. The process-spawning implementation
// is ExecRunner; tests substitute fakes returning scripted Results.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}
