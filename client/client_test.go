package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now(),
			"version":   "1.0.0",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestExecuteCopilotSendsAPIKeyAndPayload(t *testing.T) {
	var gotBody map[string]any
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/copilot/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"output":     "suggested change",
			"git_status": " M main.go",
			"timestamp":  time.Now(),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	resp, err := c.ExecuteCopilot(context.Background(), "demo", "add logging", []string{"main.go"})
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "demo", gotBody["repo_name"])
	assert.Equal(t, "add logging", gotBody["prompt"])
	assert.Equal(t, []any{"main.go"}, gotBody["files"])

	assert.True(t, resp.Success)
	assert.Equal(t, "suggested change", resp.Output)
	assert.Equal(t, " M main.go", resp.GitStatus)
}

func TestExecuteCopilotOmitsEmptyFiles(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	_, err := c.ExecuteCopilot(context.Background(), "demo", "do something", nil)
	require.NoError(t, err)

	_, ok := gotBody["files"]
	assert.False(t, ok)
}

func TestCommitAndPush(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/git/commit-and-push", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"message":   "pipeline completed successfully",
			"repo_name": "demo",
			"steps": []map[string]any{
				{"name": "add", "command": "git add -A", "success": true},
				{"name": "commit", "command": "git commit -m msg", "success": true},
				{"name": "push", "command": "git push origin HEAD:feature/x", "success": true},
			},
			"timestamp": time.Now(),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	resp, err := c.CommitAndPush(context.Background(), "demo", "msg", "feature/x", nil)
	require.NoError(t, err)

	assert.Equal(t, "feature/x", gotBody["branch"])
	_, ok := gotBody["files"]
	assert.False(t, ok)

	assert.True(t, resp.Success)
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, "add", resp.Steps[0].Name)
	assert.Equal(t, "push", resp.Steps[2].Name)
}

func TestRunWorkflowHaltedPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflow/copilot-commit-push", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success":       false,
			"message":       "pipeline halted at step: commit",
			"repo_name":     "demo",
			"halted_reason": "nothing_to_commit",
			"steps": []map[string]any{
				{"name": "copilot", "success": true},
				{"name": "add", "success": true},
				{"name": "commit", "success": false, "exit_code": 1},
			},
			"timestamp": time.Now(),
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	resp, err := c.RunWorkflow(context.Background(), "demo", "add logging", "msg", "", nil)
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "nothing_to_commit", resp.HaltedReason)
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, "commit", resp.Steps[2].Name)
	assert.Equal(t, 1, resp.Steps[2].ExitCode)
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"error": "repository is not in the allowed list"})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	_, err := c.ExecuteCopilot(context.Background(), "forbidden", "prompt", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "not in the allowed list")
}

func TestTimeoutResponseCarriesSteps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		json.NewEncoder(w).Encode(map[string]any{
			"success":     false,
			"message":     "pipeline halted at step: push",
			"failed_step": "push",
			"steps": []map[string]any{
				{"name": "add", "success": true},
				{"name": "commit", "success": true},
				{"name": "push", "success": false, "timed_out": true},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	resp, err := c.CommitAndPush(context.Background(), "demo", "msg", "", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusGatewayTimeout, apiErr.StatusCode)

	// Partial results are still decoded alongside the error
	require.NotNil(t, resp)
	require.Len(t, resp.Steps, 3)
	assert.True(t, resp.Steps[2].TimedOut)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "")
	_, err := c.Health(context.Background())
	require.NoError(t, err)
}
