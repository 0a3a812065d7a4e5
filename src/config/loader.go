package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	precedence ConfigPrecedence
	validator  *Validator
}

// NewLoader creates a new configuration loader
func NewLoader(precedence ConfigPrecedence) *Loader {
	return &Loader{
		precedence: precedence,
		validator:  NewValidator(),
	}
}

// Load loads configuration from all sources and merges them
func (l *Loader) Load() (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()

	// Load and merge configurations in order of precedence
	sources := []struct {
		path   string
		source ConfigSource
	}{
		{l.precedence.SystemConfig, SourceSystem},
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
		{l.precedence.LocalConfig, SourceLocal},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}

		if cfg, err := l.loadFile(src.path); err == nil {
			config = l.mergeConfigs(config, cfg)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, src.path, err)
		}
	}

	// Apply environment variable overrides
	if l.precedence.EnvironmentPrefix != "" {
		l.applyEnvironmentOverrides(config)
	}

	// Validate the final configuration
	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFile loads a single configuration file
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	// Validate before saving
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal with pretty printing
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	result.Backend = l.mergeBackend(result.Backend, override.Backend)
	result.Agent = l.mergeAgent(result.Agent, override.Agent)
	result.Runner = l.mergeRunner(result.Runner, override.Runner)
	result.Calendar = l.mergeCalendar(result.Calendar, override.Calendar)
	result.HR = l.mergeHR(result.HR, override.HR)
	result.Approvals = l.mergeApprovals(result.Approvals, override.Approvals)
	result.Logging = l.mergeLogging(result.Logging, override.Logging)

	return &result
}

func (l *Loader) mergeBackend(base, override BackendConfig) BackendConfig {
	result := base

	if override.Endpoint != "" {
		result.Endpoint = override.Endpoint
	}
	if override.APIKey != "" {
		result.APIKey = override.APIKey
	}
	if override.APIKeyEnvVar != "" {
		result.APIKeyEnvVar = override.APIKeyEnvVar
	}
	if override.APIVersion != "" {
		result.APIVersion = override.APIVersion
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.MaxRetries != 0 {
		result.MaxRetries = override.MaxRetries
	}
	if override.RetryDelay != 0 {
		result.RetryDelay = override.RetryDelay
	}

	return result
}

func (l *Loader) mergeAgent(base, override AgentConfig) AgentConfig {
	result := base

	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.Instructions != "" {
		result.Instructions = override.Instructions
	}

	return result
}

func (l *Loader) mergeRunner(base, override RunnerConfig) RunnerConfig {
	result := base

	if override.MaxIterations != 0 {
		result.MaxIterations = override.MaxIterations
	}
	if override.PollInterval != 0 {
		result.PollInterval = override.PollInterval
	}
	if override.SubmitPause != 0 {
		result.SubmitPause = override.SubmitPause
	}

	return result
}

func (l *Loader) mergeCalendar(base, override CalendarConfig) CalendarConfig {
	result := base

	result.Enabled = override.Enabled
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.TenantID != "" {
		result.TenantID = override.TenantID
	}
	if override.ClientID != "" {
		result.ClientID = override.ClientID
	}
	if override.ClientSecret != "" {
		result.ClientSecret = override.ClientSecret
	}
	if override.ClientSecretEnvVar != "" {
		result.ClientSecretEnvVar = override.ClientSecretEnvVar
	}
	if override.DefaultUser != "" {
		result.DefaultUser = override.DefaultUser
	}
	if override.DefaultTimezone != "" {
		result.DefaultTimezone = override.DefaultTimezone
	}

	return result
}

func (l *Loader) mergeHR(base, override HRConfig) HRConfig {
	result := base

	result.Enabled = override.Enabled
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	result.Submitter = mergeCredential(result.Submitter, override.Submitter)
	result.Approver = mergeCredential(result.Approver, override.Approver)
	if override.DefaultEmployeeNum != "" {
		result.DefaultEmployeeNum = override.DefaultEmployeeNum
	}

	return result
}

func mergeCredential(base, override CredentialConfig) CredentialConfig {
	result := base

	if override.Login != "" {
		result.Login = override.Login
	}
	if override.Password != "" {
		result.Password = override.Password
	}
	if override.PasswordEnvVar != "" {
		result.PasswordEnvVar = override.PasswordEnvVar
	}

	return result
}

func (l *Loader) mergeApprovals(base, override ApprovalsConfig) ApprovalsConfig {
	result := base

	if override.WorkflowURL != "" {
		result.WorkflowURL = override.WorkflowURL
	}
	if override.CallbackBaseURL != "" {
		result.CallbackBaseURL = override.CallbackBaseURL
	}
	if override.ListenAddr != "" {
		result.ListenAddr = override.ListenAddr
	}
	if override.RetentionMinutes != 0 {
		result.RetentionMinutes = override.RetentionMinutes
	}
	if override.PendingTTLMinutes != 0 {
		result.PendingTTLMinutes = override.PendingTTLMinutes
	}

	return result
}

func (l *Loader) mergeLogging(base, override LoggingConfig) LoggingConfig {
	result := base

	if override.Level != "" {
		result.Level = override.Level
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.File != "" {
		result.File = override.File
	}
	if override.SessionDir != "" {
		result.SessionDir = override.SessionDir
	}

	return result
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	prefix := l.precedence.EnvironmentPrefix

	if apiKey := os.Getenv(prefix + "_API_KEY"); apiKey != "" {
		config.Backend.APIKey = apiKey
	}
	if endpoint := os.Getenv(prefix + "_ENDPOINT"); endpoint != "" {
		config.Backend.Endpoint = endpoint
	}
	if model := os.Getenv(prefix + "_MODEL"); model != "" {
		config.Agent.Model = model
	}
	if upn := os.Getenv(prefix + "_USER_UPN"); upn != "" {
		config.Calendar.DefaultUser = upn
	}
	if base := os.Getenv(prefix + "_CALLBACK_BASE_URL"); base != "" {
		config.Approvals.CallbackBaseURL = base
	}
	if workflow := os.Getenv(prefix + "_WORKFLOW_URL"); workflow != "" {
		config.Approvals.WorkflowURL = workflow
	}
	if level := os.Getenv(prefix + "_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetConfigPaths returns the configuration file paths to check
func GetConfigPaths() ConfigPrecedence {
	// Use XDG paths for cross-platform compatibility
	userConfigPath := filepath.Join(xdg.ConfigHome, "calagent", "config.json")

	// System config path varies by OS
	systemConfigPath := "/etc/calagent/config.json"
	if runtime.GOOS == "windows" {
		systemConfigPath = filepath.Join(os.Getenv("PROGRAMDATA"), "calagent", "config.json")
	}

	return ConfigPrecedence{
		SystemConfig:      systemConfigPath,
		UserConfig:        userConfigPath,
		ProjectConfig:     filepath.Join(".calagent", "config.json"),
		LocalConfig:       filepath.Join(".calagent", "config.local.json"),
		EnvironmentPrefix: "CALAGENT",
	}
}

// FindConfigFile searches for a configuration file in standard locations
func FindConfigFile() (string, error) {
	paths := GetConfigPaths()

	// Check in order of precedence (reversed for finding)
	checkPaths := []string{
		paths.LocalConfig,
		paths.ProjectConfig,
		paths.UserConfig,
		paths.SystemConfig,
	}

	for _, path := range checkPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found")
}
