package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/config"
)

// SetupHandlers handles setup and settings endpoints
type SetupHandlers struct {
	cfg *config.Config
}

// NewSetupHandlers creates setup handlers
func NewSetupHandlers(cfg *config.Config) *SetupHandlers {
	return &SetupHandlers{cfg: cfg}
}

// SetupStatus handles GET /setup (no auth, setup mode only)
func (h *SetupHandlers) SetupStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"setup_mode": h.cfg.SetupMode,
		"env_file":   h.cfg.EnvFile,
		"note":       "POST /setup/generate to create an API key, then restart to enable authentication",
	})
}

// GetSettings returns current settings (requires auth)
func (h *SetupHandlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"port":            h.cfg.Port,
		"host":            h.cfg.Host,
		"allowed_origins": h.cfg.AllowedOrigins,
		"repos_base_path": h.cfg.ReposBasePath,
		"allowed_repos":   h.cfg.AllowedRepos,
		"git_remote":      h.cfg.GitRemote,
		"copilot_timeout": h.cfg.CopilotTimeout.String(),
		"git_timeout":     h.cfg.GitTimeout.String(),
		"rate_limit_rps":  h.cfg.RateLimitRPS,
		"log_level":       h.cfg.LogLevel,
		"env_file":        h.cfg.EnvFile,
		"setup_mode":      h.cfg.SetupMode,
		// Never expose the key itself
		"api_key_configured": h.cfg.APIKey != "",
	})
}

// GenerateKey generates a new API key
func (h *SetupHandlers) GenerateKey(c *gin.Context) {
	apiKey, err := config.GenerateAPIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate API key: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"api_key": apiKey,
	})
}

// SaveKey saves the API key to the .env file
func (h *SetupHandlers) SaveKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: api_key is required",
		})
		return
	}

	if len(req.APIKey) < 32 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "API key must be at least 32 characters",
		})
		return
	}

	if err := h.cfg.SaveAPIKey(req.APIKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save API key: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "API key saved successfully",
		"env_file": h.cfg.EnvFile,
		"note":     "Restart the server to apply the new API key for authentication",
	})
}
