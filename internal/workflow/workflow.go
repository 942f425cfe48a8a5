// Package workflow composes the copilot invocation and git operation
// steps into sequential pipelines with short-circuit on failure.
package workflow

import (
	"context"
	"log"
	"strings"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/copilot"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/gitops"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/repo"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"
)

// Request carries the inputs of the combined copilot-commit-push
// pipeline. Branch and Files are optional.
type Request struct {
	RepoName      string
	Prompt        string
	CommitMessage string
	Branch        string
	Files         []string
}

// Result is the aggregated outcome of a pipeline run. Steps lists, in
// order, exactly the steps that were attempted; once a step fails no
// further step runs and no placeholder is recorded for it.
type Result struct {
	RepoName     string              `json:"repo_name"`
	Steps        []gitops.StepResult `json:"steps"`
	Success      bool                `json:"success"`
	FailedStep   string              `json:"failed_step,omitempty"`
	HaltedReason string              `json:"halted_reason,omitempty"`
}

// TimedOut reports whether any attempted step hit its timeout
func (r *Result) TimedOut() bool {
	for _, st := range r.Steps {
		if st.Result.TimedOut {
			return true
		}
	}
	return false
}

// CopilotOutcome is the result of the copilot-only pipeline: the CLI
// invocation plus a porcelain status snapshot of what changed.
type CopilotOutcome struct {
	RepoName  string        `json:"repo_name"`
	Result    runner.Result `json:"result"`
	GitStatus string        `json:"git_status"`
}

// Orchestrator wires the access guard, copilot step and git step into
// the three request pipelines. All pipelines hold the per-repository
// lock for their full duration.
type Orchestrator struct {
	guard   *repo.Guard
	copilot *copilot.Step
	git     *gitops.Git
	locks   *repoLocks
}

// New creates an orchestrator
func New(guard *repo.Guard, copilotStep *copilot.Step, git *gitops.Git) *Orchestrator {
	return &Orchestrator{
		guard:   guard,
		copilot: copilotStep,
		git:     git,
		locks:   newRepoLocks(),
	}
}

// ExecuteCopilot runs the copilot-only pipeline. The returned error
// covers validation failures (bad repo name, empty prompt, bad file
// refs); a failed CLI invocation is reported inside the outcome.
func (o *Orchestrator) ExecuteCopilot(ctx context.Context, repoName, prompt string, files []string) (*CopilotOutcome, error) {
	repoPath, err := o.guard.ResolveGitRepo(repoName)
	if err != nil {
		return nil, err
	}

	release := o.locks.acquire(repoPath)
	defer release()

	log.Printf("[workflow] repo=%s copilot execute", repoName)
	res, err := o.copilot.Execute(ctx, repoPath, prompt, files)
	if err != nil {
		return nil, err
	}

	outcome := &CopilotOutcome{
		RepoName: repoName,
		Result:   res,
	}

	// Best-effort snapshot of what the assistant touched
	if status := o.git.Status(ctx, repoPath); status.Success {
		outcome.GitStatus = strings.TrimSpace(status.Stdout)
	}

	return outcome, nil
}

// CommitAndPush runs the git-only pipeline under the repository lock
func (o *Orchestrator) CommitAndPush(ctx context.Context, repoName, message, branch string, files []string) (*Result, error) {
	repoPath, err := o.guard.ResolveGitRepo(repoName)
	if err != nil {
		return nil, err
	}

	release := o.locks.acquire(repoPath)
	defer release()

	log.Printf("[workflow] repo=%s commit-and-push branch=%q", repoName, branch)
	seq := o.git.CommitAndPush(ctx, repoPath, message, branch, files)

	return &Result{
		RepoName:     repoName,
		Steps:        seq.Steps,
		Success:      seq.Success,
		FailedStep:   seq.FailedStep,
		HaltedReason: seq.HaltedReason,
	}, nil
}

// Run executes the full pipeline: copilot, then add, commit and push.
// The git sequence only starts when the copilot invocation exited zero.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	repoPath, err := o.guard.ResolveGitRepo(req.RepoName)
	if err != nil {
		return nil, err
	}

	release := o.locks.acquire(repoPath)
	defer release()

	result := &Result{RepoName: req.RepoName}

	log.Printf("[workflow] repo=%s step 1: copilot", req.RepoName)
	copilotRes, err := o.copilot.Execute(ctx, repoPath, req.Prompt, req.Files)
	if err != nil {
		return nil, err
	}

	result.Steps = append(result.Steps, gitops.StepResult{
		Name:   gitops.StepCopilot,
		Result: copilotRes,
	})
	if !copilotRes.Success {
		result.FailedStep = gitops.StepCopilot
		log.Printf("[workflow] repo=%s copilot failed: %s", req.RepoName, copilotRes.Stderr)
		return result, nil
	}

	log.Printf("[workflow] repo=%s step 2: commit and push", req.RepoName)
	seq := o.git.CommitAndPush(ctx, repoPath, req.CommitMessage, req.Branch, req.Files)

	result.Steps = append(result.Steps, seq.Steps...)
	result.Success = seq.Success
	result.FailedStep = seq.FailedStep
	result.HaltedReason = seq.HaltedReason

	if result.Success {
		log.Printf("[workflow] repo=%s completed", req.RepoName)
	} else {
		log.Printf("[workflow] repo=%s halted at %s", req.RepoName, result.FailedStep)
	}

	return result, nil
}
