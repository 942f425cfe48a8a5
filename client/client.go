// Package client is a Go client for the Copilot CLI API server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the Copilot CLI API server
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL. apiKey may be empty
// when the server runs without authentication.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Workflows wait on copilot generation, which is slow
			Timeout: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HealthResponse is the /health response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// CopilotResponse is the /api/copilot/execute response
type CopilotResponse struct {
	Success   bool      `json:"success"`
	Output    string    `json:"output"`
	Error     string    `json:"error"`
	GitStatus string    `json:"git_status"`
	Timestamp time.Time `json:"timestamp"`
}

// StepResult is one named step outcome inside a pipeline response
type StepResult struct {
	Name     string `json:"name"`
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Success  bool   `json:"success"`
	TimedOut bool   `json:"timed_out"`
	Error    string `json:"error,omitempty"`
}

// WorkflowResponse is the response of the git and workflow pipelines
type WorkflowResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	RepoName     string       `json:"repo_name"`
	Steps        []StepResult `json:"steps"`
	FailedStep   string       `json:"failed_step,omitempty"`
	HaltedReason string       `json:"halted_reason,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Health checks if the API server is healthy
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// asAPIError reports whether err is a structured server error. Pipeline
// endpoints return the per-step results even on error statuses, so
// callers get both the decoded body and the error.
func asAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ExecuteCopilot runs the copilot CLI against a repository on the server
func (c *Client) ExecuteCopilot(ctx context.Context, repoName, prompt string, files []string) (*CopilotResponse, error) {
	payload := map[string]any{
		"repo_name": repoName,
		"prompt":    prompt,
	}
	if len(files) > 0 {
		payload["files"] = files
	}

	var resp CopilotResponse
	if err := c.do(ctx, http.MethodPost, "/api/copilot/execute", payload, &resp); err != nil {
		if asAPIError(err) {
			return &resp, err
		}
		return nil, err
	}
	return &resp, nil
}

// CommitAndPush commits and pushes changes in a repository
func (c *Client) CommitAndPush(ctx context.Context, repoName, commitMessage, branch string, files []string) (*WorkflowResponse, error) {
	payload := map[string]any{
		"repo_name":      repoName,
		"commit_message": commitMessage,
	}
	if branch != "" {
		payload["branch"] = branch
	}
	if len(files) > 0 {
		payload["files"] = files
	}

	var resp WorkflowResponse
	if err := c.do(ctx, http.MethodPost, "/api/git/commit-and-push", payload, &resp); err != nil {
		if asAPIError(err) {
			return &resp, err
		}
		return nil, err
	}
	return &resp, nil
}

// RunWorkflow executes the full copilot-commit-push pipeline
func (c *Client) RunWorkflow(ctx context.Context, repoName, prompt, commitMessage, branch string, files []string) (*WorkflowResponse, error) {
	payload := map[string]any{
		"repo_name":      repoName,
		"prompt":         prompt,
		"commit_message": commitMessage,
	}
	if branch != "" {
		payload["branch"] = branch
	}
	if len(files) > 0 {
		payload["files"] = files
	}

	var resp WorkflowResponse
	if err := c.do(ctx, http.MethodPost, "/api/workflow/copilot-commit-push", payload, &resp); err != nil {
		if asAPIError(err) {
			return &resp, err
		}
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(data)
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			if errBody.Error != "" {
				msg = errBody.Error
			} else if errBody.Message != "" {
				msg = errBody.Message
			}
		}
		// Decode what we can anyway; pipeline timeouts still carry
		// per-step results
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
