// Package copilot builds and runs the GitHub Copilot CLI invocation
// that asks the assistant to apply a code change inside a repository.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"
)

var (
	// ErrEmptyPrompt indicates a missing or blank prompt.
	ErrEmptyPrompt = errors.New("prompt must not be empty")

	// ErrInvalidFile indicates a file reference outside the repository
	// or one that does not exist.
	ErrInvalidFile = errors.New("invalid file reference")
)

// Step invokes the copilot CLI through the shared command runner. The
// step does not inspect the edits the assistant makes; its result is
// the process outcome only.
type Step struct {
	runner  runner.Runner
	timeout time.Duration
	binary  string
}

// New creates a copilot step with the given execution timeout
func New(r runner.Runner, timeout time.Duration) *Step {
	return &Step{
		runner:  r,
		timeout: timeout,
		binary:  "gh",
	}
}

// Execute runs the copilot CLI in repoPath with the given prompt.
// When files is non-empty the assistant is scoped to those files; each
// must be a relative path that exists under repoPath.
func (s *Step) Execute(ctx context.Context, repoPath, prompt string, files []string) (runner.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return runner.Result{}, ErrEmptyPrompt
	}

	if err := validateFiles(repoPath, files); err != nil {
		return runner.Result{}, err
	}

	args := []string{"copilot", "suggest"}
	if len(files) > 0 {
		args = append(args, "--files", strings.Join(files, ","))
	}
	args = append(args, prompt)

	return s.runner.Run(ctx, runner.Request{
		Name:    s.binary,
		Args:    args,
		Dir:     repoPath,
		Timeout: s.timeout,
	}), nil
}

func validateFiles(repoPath string, files []string) error {
	for _, f := range files {
		if f == "" {
			return fmt.Errorf("%w: empty path", ErrInvalidFile)
		}
		if filepath.IsAbs(f) {
			return fmt.Errorf("%w: %s is absolute", ErrInvalidFile, f)
		}
		clean := filepath.Clean(f)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s escapes the repository", ErrInvalidFile, f)
		}
		if _, err := os.Stat(filepath.Join(repoPath, clean)); err != nil {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidFile, f)
		}
	}
	return nil
}
