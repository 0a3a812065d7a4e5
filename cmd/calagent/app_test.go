package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Backend.Endpoint = "https://backend.example.com"
	cfg.Backend.APIKey = "test-key"
	cfg.Logging.SessionDir = t.TempDir()
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAppRequiresEndpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.Endpoint = ""

	_, err := buildApp(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestBuildAppRequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend.APIKey = ""
	cfg.Backend.APIKeyEnvVar = ""

	_, err := buildApp(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestBuildAppWiresSession(t *testing.T) {
	cfg := testConfig(t)
	cfg.Approvals.WorkflowURL = "https://workflow.example.com/trigger"
	cfg.HR.Enabled = true
	cfg.HR.BaseURL = "https://hr.example.com"

	a, err := buildApp(cfg, discardLogger())
	require.NoError(t, err)

	assert.NotNil(t, a.session)
	assert.NotNil(t, a.tracker)
	assert.NotNil(t, a.ingress)
	assert.False(t, a.session.Active())
}

func TestLoadConfigAppliesCLIOverrides(t *testing.T) {
	// Pin the config file and blank the env overrides so the developer's
	// own config and CALAGENT_* variables can't bleed into the test.
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"backend": {"endpoint": "https://file.example.com", "api_key": "file-key"}
	}`), 0o644))
	t.Setenv("CALAGENT_ENDPOINT", "")
	t.Setenv("CALAGENT_API_KEY", "")

	cli := &CLI{
		Config:   path,
		Endpoint: "https://flag.example.com",
		APIKey:   "flag-key",
	}

	cfg, err := loadConfig(cli)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.Backend.Endpoint)
	assert.Equal(t, "flag-key", cfg.Backend.APIKey)
}
