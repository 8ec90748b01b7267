// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// LLMConfig holds everything needed to talk to the chat-completions endpoint.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GitHubConfig holds the code-hosting side of the configuration. Token,
// Repository, SHA and EventPath follow the standard GitHub Actions
// environment; the App fields are used only by serve mode.
type GitHubConfig struct {
	Token          string
	Repository     string
	SHA            string
	EventPath      string
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// ServerConfig holds the webhook server settings.
type ServerConfig struct {
	Port       string
	MaxWorkers int
}

// Config is the process-wide configuration, constructed once at startup and
// passed into each component. Components never read the environment ad hoc.
type Config struct {
	LogLevel  slog.Level
	LogFormat string
	LLM       LLMConfig
	GitHub    GitHubConfig
	Server    ServerConfig
}

// envKeys are bound explicitly because the GitHub Actions variables carry no
// application prefix.
var envKeys = []string{
	"LLM_API_KEY", "LLM_API_URL", "LLM_MODEL",
	"GITHUB_TOKEN", "GITHUB_REPOSITORY", "GITHUB_SHA", "GITHUB_EVENT_PATH",
	"GITHUB_APP_ID", "GITHUB_WEBHOOK_SECRET", "GITHUB_PRIVATE_KEY_PATH",
	"SERVER_PORT", "MAX_WORKERS", "LOG_LEVEL", "LOG_FORMAT",
}

// LoadConfig reads configuration from environment variables and an optional
// .env file, and sets sensible defaults. Validation is deliberately lenient:
// a missing LLM credential or GitHub token is surfaced by the component that
// actually needs it, so that dry runs and credential-less skips keep working.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("LLM_API_URL", "https://api.deepseek.com/chat/completions")
	v.SetDefault("LLM_MODEL", "deepseek-chat")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MAX_WORKERS", 4)
	v.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/diffsentry.private-key.pem")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// .env is optional but a malformed one should not be silent.
			slog.Warn("failed to read .env file", "error", err)
		}
	}

	return &Config{
		LogLevel:  parseLogLevel(v.GetString("LOG_LEVEL")),
		LogFormat: v.GetString("LOG_FORMAT"),
		LLM: LLMConfig{
			APIKey:      v.GetString("LLM_API_KEY"),
			BaseURL:     v.GetString("LLM_API_URL"),
			Model:       v.GetString("LLM_MODEL"),
			Temperature: 0.3,
			MaxTokens:   4000,
		},
		GitHub: GitHubConfig{
			Token:          v.GetString("GITHUB_TOKEN"),
			Repository:     v.GetString("GITHUB_REPOSITORY"),
			SHA:            v.GetString("GITHUB_SHA"),
			EventPath:      v.GetString("GITHUB_EVENT_PATH"),
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  v.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		Server: ServerConfig{
			Port:       v.GetString("SERVER_PORT"),
			MaxWorkers: v.GetInt("MAX_WORKERS"),
		},
	}, nil
}

// RepoOwnerName splits the "owner/repo" identifier. ok is false when the
// identifier is absent or malformed.
func (c *GitHubConfig) RepoOwnerName() (owner, name string, ok bool) {
	owner, name, found := strings.Cut(c.Repository, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// ValidateServe checks the fields that only serve mode requires.
func (c *Config) ValidateServe() error {
	if c.GitHub.AppID == 0 {
		return fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
