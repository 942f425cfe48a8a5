package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ExecRunner runs commands with os/exec. It is the only component in the
// server that spawns processes.
type ExecRunner struct{}

// New creates a new ExecRunner
func New() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command described by req and captures its outcome.
// The command and any children it spawns are killed as a group when the
// timeout elapses or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, req Request) Result {
	result := Result{
		Command:  commandLine(req),
		ExitCode: -1,
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.Command(req.Name, req.Args...)
	cmd.Dir = req.Dir
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()

	if err := cmd.Start(); err != nil {
		result.Duration = time.Since(startTime)
		result.Error = err.Error()
		return result
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		terminateProcessGroup(cmd)
		<-done
		result.Duration = time.Since(startTime)
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			result.Error = "command timed out after " + req.Timeout.String()
		} else {
			result.Error = ctx.Err().Error()
		}
		return result
	case waitErr = <-done:
	}

	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Error = waitErr.Error()
		return result
	}

	result.ExitCode = 0
	result.Success = true
	return result
}

func commandLine(req Request) string {
	return strings.Join(append([]string{req.Name}, req.Args...), " ")
}
