package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.deepseek.com/chat/completions", cfg.LLM.BaseURL)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.MaxWorkers)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "other-model")
	t.Setenv("GITHUB_TOKEN", "ghp-test")
	t.Setenv("GITHUB_REPOSITORY", "octo/repo")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "other-model", cfg.LLM.Model)
	assert.Equal(t, "ghp-test", cfg.GitHub.Token)
	assert.Equal(t, "octo/repo", cfg.GitHub.Repository)
	assert.Equal(t, "abc123", cfg.GitHub.SHA)
	assert.Equal(t, "/tmp/event.json", cfg.GitHub.EventPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestRepoOwnerName(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		wantOwner  string
		wantName   string
		wantOK     bool
	}{
		{"valid", "octo/repo", "octo", "repo", true},
		{"empty", "", "", "", false},
		{"no slash", "octorepo", "", "", false},
		{"empty owner", "/repo", "", "", false},
		{"empty name", "octo/", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GitHubConfig{Repository: tt.repository}
			owner, name, ok := cfg.RepoOwnerName()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{GitHub: GitHubConfig{AppID: 1, WebhookSecret: "s"}}
	assert.NoError(t, cfg.ValidateServe())

	cfg = &Config{GitHub: GitHubConfig{WebhookSecret: "s"}}
	assert.ErrorContains(t, cfg.ValidateServe(), "GITHUB_APP_ID")

	cfg = &Config{GitHub: GitHubConfig{AppID: 1}}
	assert.ErrorContains(t, cfg.ValidateServe(), "GITHUB_WEBHOOK_SECRET")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}
