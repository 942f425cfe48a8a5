package gitops

import (
	"context"
	"strings"
	"time"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"
)

// Git runs git subcommands against a repository work tree through the
// shared command runner.
type Git struct {
	runner  runner.Runner
	timeout time.Duration
	remote  string
}

// New creates a git step executor
func New(r runner.Runner, timeout time.Duration, remote string) *Git {
	if remote == "" {
		remote = "origin"
	}
	return &Git{
		runner:  r,
		timeout: timeout,
		remote:  remote,
	}
}

func (g *Git) run(ctx context.Context, repoPath string, args ...string) runner.Result {
	return g.runner.Run(ctx, runner.Request{
		Name:    "git",
		Args:    args,
		Dir:     repoPath,
		Timeout: g.timeout,
	})
}

// Status returns the porcelain status of the work tree
func (g *Git) Status(ctx context.Context, repoPath string) runner.Result {
	return g.run(ctx, repoPath, "status", "--porcelain")
}

// CurrentBranch returns the checked-out branch name
func (g *Git) CurrentBranch(ctx context.Context, repoPath string) runner.Result {
	return g.run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
}

// Add stages the given files, or all changes when files is empty
func (g *Git) Add(ctx context.Context, repoPath string, files []string) runner.Result {
	if len(files) == 0 {
		return g.run(ctx, repoPath, "add", "-A")
	}
	args := append([]string{"add", "--"}, files...)
	return g.run(ctx, repoPath, args...)
}

// Commit records the staged changes with the given message
func (g *Git) Commit(ctx context.Context, repoPath, message string) runner.Result {
	return g.run(ctx, repoPath, "commit", "-m", message)
}

// Push pushes to the configured remote. When branch is set, HEAD is
// pushed to that branch without touching the work tree; otherwise the
// current branch's upstream is used.
func (g *Git) Push(ctx context.Context, repoPath, branch string) runner.Result {
	if branch == "" {
		return g.run(ctx, repoPath, "push", g.remote)
	}
	return g.run(ctx, repoPath, "push", g.remote, "HEAD:"+branch)
}

// IsNothingToCommit reports whether a failed commit result means the
// work tree had no staged changes, a non-fatal halt rather than an error.
func IsNothingToCommit(res runner.Result) bool {
	if res.Success {
		return false
	}
	out := strings.ToLower(res.CombinedOutput())
	return strings.Contains(out, "nothing to commit") ||
		strings.Contains(out, "nothing added to commit") ||
		strings.Contains(out, "no changes added to commit")
}

// CommitAndPush runs add, commit and push in order, stopping at the
// first failure. The returned sequence lists exactly the steps that ran.
func (g *Git) CommitAndPush(ctx context.Context, repoPath, message, branch string, files []string) *SequenceResult {
	seq := &SequenceResult{}

	addRes := g.Add(ctx, repoPath, files)
	seq.append(StepAdd, addRes)
	if !addRes.Success {
		seq.fail(StepAdd)
		return seq
	}

	commitRes := g.Commit(ctx, repoPath, message)
	seq.append(StepCommit, commitRes)
	if !commitRes.Success {
		seq.fail(StepCommit)
		if IsNothingToCommit(commitRes) {
			seq.HaltedReason = HaltNothingToCommit
		}
		return seq
	}

	pushRes := g.Push(ctx, repoPath, branch)
	seq.append(StepPush, pushRes)
	if !pushRes.Success {
		seq.fail(StepPush)
		return seq
	}

	seq.Success = true
	return seq
}

// ValidBranchName reports whether name is acceptable as a git branch
// name. The rules follow git check-ref-format for a single-level or
// slash-separated branch ref.
func ValidBranchName(name string) bool {
	if name == "" || name == "@" {
		return false
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{") {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
		switch r {
		case ' ', '~', '^', ':', '?', '*', '[', '\\':
			return false
		}
	}
	return true
}
