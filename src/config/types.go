package config

import (
	"time"
)

// Config represents the complete configuration for calagent
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Backend holds the agents backend API settings
	Backend BackendConfig `json:"backend"`

	// Agent holds provisioning parameters for the assistant
	Agent AgentConfig `json:"agent"`

	// Runner holds run poll-loop tuning
	Runner RunnerConfig `json:"runner"`

	// Calendar holds the calendar backend settings
	Calendar CalendarConfig `json:"calendar"`

	// HR holds the leave backend settings
	HR HRConfig `json:"hr"`

	// Approvals holds the notifier and callback ingress settings
	Approvals ApprovalsConfig `json:"approvals"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// BackendConfig holds the agents backend API settings
type BackendConfig struct {
	// Endpoint is the backend base URL
	Endpoint string `json:"endpoint" validate:"omitempty,url"`

	// APIKey for the backend. Prefer APIKeyEnvVar in checked-in configs.
	APIKey string `json:"api_key,omitempty"`

	// APIKeyEnvVar names the environment variable holding the key
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`

	// APIVersion is appended to every request as a query parameter
	APIVersion string `json:"api_version,omitempty"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries for failed requests
	MaxRetries int `json:"max_retries,omitempty" validate:"omitempty,min=1,max=10"`

	// RetryDelay is the base delay between retries
	RetryDelay time.Duration `json:"retry_delay,omitempty"`
}

// AgentConfig holds provisioning parameters for the assistant
type AgentConfig struct {
	// Name of the provisioned agent
	Name string `json:"name,omitempty"`

	// Model to run the agent on
	Model string `json:"model,omitempty"`

	// Instructions overrides the built-in system prompt when set
	Instructions string `json:"instructions,omitempty"`
}

// RunnerConfig holds run poll-loop tuning
type RunnerConfig struct {
	// MaxIterations caps the poll loop per turn
	MaxIterations int `json:"max_iterations,omitempty" validate:"omitempty,min=1"`

	// PollInterval is the sleep between run status refreshes
	PollInterval time.Duration `json:"poll_interval,omitempty"`

	// SubmitPause is the pause after submitting tool outputs
	SubmitPause time.Duration `json:"submit_pause,omitempty"`
}

// CalendarConfig holds the calendar backend settings
type CalendarConfig struct {
	// Enabled toggles the calendar tool group
	Enabled bool `json:"enabled"`

	// BaseURL of the calendar API
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// TenantID, ClientID, ClientSecret are the app-only auth parameters
	TenantID string `json:"tenant_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`

	// ClientSecret inline. Prefer ClientSecretEnvVar in checked-in configs.
	ClientSecret string `json:"client_secret,omitempty"`

	// ClientSecretEnvVar names the environment variable holding the secret
	ClientSecretEnvVar string `json:"client_secret_env_var,omitempty"`

	// DefaultUser is the mailbox targeted when a call omits the user
	DefaultUser string `json:"default_user,omitempty" validate:"omitempty,email"`

	// DefaultTimezone for schedule reads
	DefaultTimezone string `json:"default_timezone,omitempty"`
}

// CredentialConfig is one HR login pair
type CredentialConfig struct {
	Login string `json:"login,omitempty"`

	// Password inline. Prefer PasswordEnvVar in checked-in configs.
	Password string `json:"password,omitempty"`

	// PasswordEnvVar names the environment variable holding the password
	PasswordEnvVar string `json:"password_env_var,omitempty"`
}

// HRConfig holds the leave backend settings
type HRConfig struct {
	// Enabled toggles the HR tool group
	Enabled bool `json:"enabled"`

	// BaseURL of the HR API
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Submitter and Approver are the two login roles
	Submitter CredentialConfig `json:"submitter,omitempty"`
	Approver  CredentialConfig `json:"approver,omitempty"`

	// DefaultEmployeeNum stands in when a call omits the employee number
	DefaultEmployeeNum string `json:"default_employee_num,omitempty"`
}

// ApprovalsConfig holds the notifier and callback ingress settings
type ApprovalsConfig struct {
	// WorkflowURL is the approval email workflow trigger URL
	WorkflowURL string `json:"workflow_url,omitempty" validate:"omitempty,url"`

	// CallbackBaseURL is the externally reachable base for callback URLs
	CallbackBaseURL string `json:"callback_base_url,omitempty" validate:"omitempty,url"`

	// ListenAddr is the callback ingress bind address
	ListenAddr string `json:"listen_addr,omitempty" validate:"omitempty,hostname_port"`

	// RetentionMinutes bounds how long delivered decisions stay visible
	RetentionMinutes int `json:"retention_minutes,omitempty" validate:"omitempty,min=1"`

	// PendingTTLMinutes expires approvals nobody ever decided
	PendingTTLMinutes int `json:"pending_ttl_minutes,omitempty" validate:"omitempty,min=1"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"omitempty,log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" validate:"omitempty,log_format"`

	// File is the log file path; empty logs to stderr only
	File string `json:"file,omitempty"`

	// SessionDir is where per-session audit logs are written
	SessionDir string `json:"session_dir,omitempty"`
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	// SystemConfig path
	SystemConfig string

	// UserConfig path
	UserConfig string

	// ProjectConfig path
	ProjectConfig string

	// LocalConfig path
	LocalConfig string

	// EnvironmentPrefix for environment variable overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceLocal       ConfigSource = "local"
	SourceEnvironment ConfigSource = "environment"
)
