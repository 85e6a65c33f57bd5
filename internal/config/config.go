package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the repoqa binaries
type Config struct {
	// Server settings
	Port int

	// Remote Q&A service (a Gradio Space)
	GradioSpace      string
	HFHubURL         string
	HFToken          string
	AnalyzeEndpoint  string
	GenerateEndpoint string

	// Question count range exposed by the UI
	DefaultQuestions int
	MinQuestions     int
	MaxQuestions     int

	// Preferences
	SessionSecret []byte
	SecureCookies bool
	PrefsFile     string

	// Optional repository card
	RepoInfo    bool
	GitHubToken string

	// Logging
	LogLevel  string
	LogFormat string // "console" or "json"

	// Warnings collected while loading, for the caller to log
	Warnings []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvInt("PORT", 8000),
		GradioSpace:      getEnv("GRADIO_SPACE", "PraneshJs/GithubprojectQandA"),
		HFHubURL:         getEnv("HF_HUB_URL", "https://huggingface.co"),
		HFToken:          os.Getenv("HF_TOKEN"),
		AnalyzeEndpoint:  getEnv("ANALYZE_ENDPOINT", "/on_analyze"),
		GenerateEndpoint: getEnv("GENERATE_ENDPOINT", "/on_generate"),
		DefaultQuestions: getEnvInt("DEFAULT_QUESTIONS", 10),
		MinQuestions:     getEnvInt("MIN_QUESTIONS", 5),
		MaxQuestions:     getEnvInt("MAX_QUESTIONS", 20),
		SessionSecret:    []byte(os.Getenv("SESSION_SECRET")),
		SecureCookies:    getEnvBool("SECURE_COOKIES", false),
		PrefsFile:        os.Getenv("PREFS_FILE"),
		RepoInfo:         getEnvBool("REPO_INFO", false),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the configuration is usable
func (c *Config) validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateQuestions(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.ensureSessionSecret()
}

func (c *Config) validateRemote() error {
	if strings.TrimSpace(c.GradioSpace) == "" {
		return fmt.Errorf("GRADIO_SPACE is required")
	}
	if !strings.HasPrefix(c.AnalyzeEndpoint, "/") {
		return fmt.Errorf("ANALYZE_ENDPOINT must start with '/': %s", c.AnalyzeEndpoint)
	}
	if !strings.HasPrefix(c.GenerateEndpoint, "/") {
		return fmt.Errorf("GENERATE_ENDPOINT must start with '/': %s", c.GenerateEndpoint)
	}
	return nil
}

func (c *Config) validateQuestions() error {
	if c.MinQuestions <= 0 {
		return fmt.Errorf("MIN_QUESTIONS must be greater than 0")
	}
	if c.MaxQuestions < c.MinQuestions {
		return fmt.Errorf("MAX_QUESTIONS must be >= MIN_QUESTIONS")
	}
	if c.DefaultQuestions < c.MinQuestions || c.DefaultQuestions > c.MaxQuestions {
		return fmt.Errorf("DEFAULT_QUESTIONS must be between %d and %d", c.MinQuestions, c.MaxQuestions)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be 'console' or 'json')", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}
	return nil
}

func (c *Config) ensureSessionSecret() error {
	if len(c.SessionSecret) > 0 {
		return nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}
	c.SessionSecret = secret
	c.Warnings = append(c.Warnings, "SESSION_SECRET not set, saved preferences will not survive a restart")
	return nil
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
