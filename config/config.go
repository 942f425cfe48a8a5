package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// GenerateAPIKey generates a secure random API key
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Config holds all configuration for the server
type Config struct {
	// Server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Authentication
	APIKey    string
	JWTSecret string

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Repositories
	ReposBasePath string
	AllowedRepos  []string

	// Command execution
	CopilotTimeout time.Duration
	GitTimeout     time.Duration
	GitRemote      string

	// Logging
	LogLevel string

	// Setup mode
	SetupMode bool
	EnvFile   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Determine .env file path
	envFile := getEnvFile()

	// Load .env file if it exists
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Port:           getEnvInt("PORT", 8090),
		Host:           getEnv("HOST", "0.0.0.0"),
		ReadTimeout:    time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:   time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 600)) * time.Second,
		APIKey:         getEnv("API_KEY", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 100),
		ReposBasePath:  getEnv("REPOS_BASE_PATH", "/var/repos"),
		AllowedRepos:   getEnvSlice("ALLOWED_REPOS", nil),
		CopilotTimeout: time.Duration(getEnvInt("COPILOT_TIMEOUT_SECONDS", 300)) * time.Second,
		GitTimeout:     time.Duration(getEnvInt("GIT_TIMEOUT_SECONDS", 120)) * time.Second,
		GitRemote:      getEnv("GIT_REMOTE", "origin"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SetupMode:      false,
		EnvFile:        envFile,
	}

	if len(cfg.AllowedRepos) == 0 {
		return nil, fmt.Errorf("ALLOWED_REPOS is required (comma-separated repository names)")
	}

	if !filepath.IsAbs(cfg.ReposBasePath) {
		return nil, fmt.Errorf("REPOS_BASE_PATH must be an absolute path, got %q", cfg.ReposBasePath)
	}

	// Check if API key is configured
	if cfg.APIKey == "" {
		cfg.SetupMode = true
		return cfg, nil
	}

	if cfg.JWTSecret == "" {
		// Use API key as fallback for JWT secret
		cfg.JWTSecret = cfg.APIKey
	}

	return cfg, nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	// Fall back to the executable's directory
	exe, err := os.Executable()
	if err == nil {
		envPath := filepath.Join(filepath.Dir(exe), ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// SaveAPIKey saves the API key to the .env file
func (c *Config) SaveAPIKey(apiKey string) error {
	updates := map[string]string{"API_KEY": apiKey}
	if err := UpdateEnvFile(c.EnvFile, updates); err != nil {
		return err
	}

	c.APIKey = apiKey
	c.JWTSecret = apiKey
	c.SetupMode = false

	return nil
}

// UpdateEnvFile updates or adds environment variables in a .env file
func UpdateEnvFile(envFile string, updates map[string]string) error {
	existingContent := ""
	if data, err := os.ReadFile(envFile); err == nil {
		existingContent = string(data)
	}

	lines := strings.Split(existingContent, "\n")
	found := make(map[string]bool)

	// Update existing keys
	for i, line := range lines {
		for key, value := range updates {
			if strings.HasPrefix(line, key+"=") {
				lines[i] = key + "=" + value
				found[key] = true
				break
			}
		}
	}

	// Add missing keys at the beginning
	var newLines []string
	for key, value := range updates {
		if !found[key] {
			newLines = append(newLines, key+"="+value)
		}
	}
	if len(newLines) > 0 {
		lines = append(newLines, lines...)
	}

	// Remove empty lines at the end
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env file: %w", err)
	}

	return nil
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:           8090,
		Host:           "0.0.0.0",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   600 * time.Second,
		APIKey:         "test-api-key",
		JWTSecret:      "test-jwt-secret",
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   100,
		ReposBasePath:  "/var/repos",
		AllowedRepos:   []string{"demo"},
		CopilotTimeout: 300 * time.Second,
		GitTimeout:     120 * time.Second,
		GitRemote:      "origin",
		LogLevel:       "info",
	}
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsRepoAllowed checks if a repository name is on the allow-list
func (c *Config) IsRepoAllowed(name string) bool {
	for _, r := range c.AllowedRepos {
		if r == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
