package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSuccess(t *testing.T) {
	r := New()

	result := r.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo hello"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.False(t, result.TimedOut)
	assert.Empty(t, result.Error)
}

func TestRunNonZeroExit(t *testing.T) {
	r := New()

	result := r.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo oops >&2; exit 3"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.False(t, result.TimedOut)
	assert.NotEmpty(t, result.Error)
}

func TestRunExecutableNotFound(t *testing.T) {
	r := New()

	result := r.Run(context.Background(), Request{
		Name: "definitely-not-a-real-binary-xyz",
	})

	assert.False(t, result.Success)
	assert.Equal(t, -1, result.ExitCode)
	assert.False(t, result.TimedOut)
	assert.NotEmpty(t, result.Error)
}

func TestRunTimeout(t *testing.T) {
	r := New()

	start := time.Now()
	result := r.Run(context.Background(), Request{
		Name:    "sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 100 * time.Millisecond,
	})

	assert.False(t, result.Success)
	assert.True(t, result.TimedOut)
	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, result.Error, "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunContextCancelled(t *testing.T) {
	r := New()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result := r.Run(ctx, Request{
		Name: "sh",
		Args: []string{"-c", "sleep 10"},
	})

	assert.False(t, result.Success)
	// Cancellation is not a timeout
	assert.False(t, result.TimedOut)
	assert.NotEmpty(t, result.Error)
}

func TestRunWorkingDirectory(t *testing.T) {
	r := New()
	dir := t.TempDir()

	result := r.Run(context.Background(), Request{
		Name: "pwd",
		Dir:  dir,
	})

	assert.True(t, result.Success)
	assert.Contains(t, result.Stdout, dir)
}

func TestCombinedOutput(t *testing.T) {
	res := Result{Stdout: "out", Stderr: "err"}
	assert.Equal(t, "out\nerr", res.CombinedOutput())

	res = Result{Stderr: "err"}
	assert.Equal(t, "err", res.CombinedOutput())

	res = Result{Stdout: "out"}
	assert.Equal(t, "out", res.CombinedOutput())
}

func TestCommandLine(t *testing.T) {
	res := New().Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "true"},
	})
	assert.Equal(t, "sh -c true", res.Command)
}
