package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/config"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/copilot"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/gitops"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/repo"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/runner"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/system"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/workflow"
)

const version = "1.0.0"

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg          *config.Config
	orchestrator *workflow.Orchestrator
	lister       *repo.Lister
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config) *Handlers {
	guard := repo.NewGuard(cfg.ReposBasePath, cfg.AllowedRepos)
	exec := runner.New()
	copilotStep := copilot.New(exec, cfg.CopilotTimeout)
	git := gitops.New(exec, cfg.GitTimeout, cfg.GitRemote)

	return &Handlers{
		cfg:          cfg,
		orchestrator: workflow.New(guard, copilotStep, git),
		lister:       repo.NewLister(guard, git),
	}
}

// newHandlersWith wires handlers over a provided runner, for tests
func newHandlersWith(cfg *config.Config, exec runner.Runner) *Handlers {
	guard := repo.NewGuard(cfg.ReposBasePath, cfg.AllowedRepos)
	copilotStep := copilot.New(exec, cfg.CopilotTimeout)
	git := gitops.New(exec, cfg.GitTimeout, cfg.GitRemote)

	return &Handlers{
		cfg:          cfg,
		orchestrator: workflow.New(guard, copilotStep, git),
		lister:       repo.NewLister(guard, git),
	}
}

type copilotExecuteRequest struct {
	RepoName string   `json:"repo_name" binding:"required"`
	Prompt   string   `json:"prompt" binding:"required"`
	Files    []string `json:"files"`
}

type commitAndPushRequest struct {
	RepoName      string   `json:"repo_name" binding:"required"`
	CommitMessage string   `json:"commit_message" binding:"required"`
	Branch        string   `json:"branch"`
	Files         []string `json:"files"`
}

type workflowRequest struct {
	RepoName      string   `json:"repo_name" binding:"required"`
	Prompt        string   `json:"prompt" binding:"required"`
	CommitMessage string   `json:"commit_message" binding:"required"`
	Branch        string   `json:"branch"`
	Files         []string `json:"files"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   version,
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	hostInfo, err := system.GetHostInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"agent":           "copilot-cli-server",
		"version":         version,
		"hostname":        hostInfo.Hostname,
		"os":              hostInfo.OS,
		"platform":        hostInfo.Platform,
		"kernel":          hostInfo.KernelVersion,
		"arch":            hostInfo.KernelArch,
		"uptime":          hostInfo.UptimeHuman,
		"repos_base_path": h.cfg.ReposBasePath,
	}

	// Disk usage of the repos filesystem is best effort; the base path
	// may not exist yet
	if diskInfo, err := system.GetDiskInfo(h.cfg.ReposBasePath); err == nil {
		resp["disk"] = diskInfo
	}

	c.JSON(http.StatusOK, resp)
}

// ListRepos handles GET /api/repos
func (h *Handlers) ListRepos(c *gin.Context) {
	c.JSON(http.StatusOK, h.lister.List(c.Request.Context()))
}

// ExecuteCopilot handles POST /api/copilot/execute
func (h *Handlers) ExecuteCopilot(c *gin.Context) {
	var req copilotExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repo_name and prompt are required"})
		return
	}

	outcome, err := h.orchestrator.ExecuteCopilot(c.Request.Context(), req.RepoName, req.Prompt, req.Files)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if !outcome.Result.Success {
		status = http.StatusInternalServerError
		if outcome.Result.TimedOut {
			status = http.StatusGatewayTimeout
		}
	}

	c.JSON(status, gin.H{
		"success":    outcome.Result.Success,
		"output":     outcome.Result.Stdout,
		"error":      outcome.Result.Stderr,
		"git_status": outcome.GitStatus,
		"timestamp":  time.Now().UTC(),
	})
}

// CommitAndPush handles POST /api/git/commit-and-push
func (h *Handlers) CommitAndPush(c *gin.Context) {
	var req commitAndPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repo_name and commit_message are required"})
		return
	}

	if req.Branch != "" && !gitops.ValidBranchName(req.Branch) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch name"})
		return
	}

	result, err := h.orchestrator.CommitAndPush(c.Request.Context(), req.RepoName, req.CommitMessage, req.Branch, req.Files)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	writeWorkflowResult(c, result)
}

// RunWorkflow handles POST /api/workflow/copilot-commit-push
func (h *Handlers) RunWorkflow(c *gin.Context) {
	var req workflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repo_name, prompt and commit_message are required"})
		return
	}

	if req.Branch != "" && !gitops.ValidBranchName(req.Branch) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch name"})
		return
	}

	result, err := h.orchestrator.Run(c.Request.Context(), workflow.Request{
		RepoName:      req.RepoName,
		Prompt:        req.Prompt,
		CommitMessage: req.CommitMessage,
		Branch:        req.Branch,
		Files:         req.Files,
	})
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	writeWorkflowResult(c, result)
}

// writeWorkflowResult serializes a pipeline result. A failed pipeline is
// still a 200 so the caller gets the per-step results of everything
// that ran; only a step timeout changes the status.
func writeWorkflowResult(c *gin.Context, result *workflow.Result) {
	status := http.StatusOK
	if result.TimedOut() {
		status = http.StatusGatewayTimeout
	}

	message := "pipeline completed successfully"
	if !result.Success {
		message = "pipeline halted at step: " + result.FailedStep
	}

	c.JSON(status, gin.H{
		"success":       result.Success,
		"message":       message,
		"repo_name":     result.RepoName,
		"steps":         result.Steps,
		"failed_step":   result.FailedStep,
		"halted_reason": result.HaltedReason,
		"timestamp":     time.Now().UTC(),
	})
}

// validationStatus maps guard and step validation errors to HTTP codes
func validationStatus(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, repo.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrNotARepository):
		return http.StatusNotFound
	case errors.Is(err, copilot.ErrEmptyPrompt), errors.Is(err, copilot.ErrInvalidFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
