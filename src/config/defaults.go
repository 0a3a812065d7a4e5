package config

import (
	"time"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",

		Backend: BackendConfig{
			APIKeyEnvVar: "AGENTS_API_KEY",
			APIVersion:   "v1",
			Timeout:      30 * time.Second,
			MaxRetries:   3,
			RetryDelay:   time.Second,
		},

		Agent: AgentConfig{
			Name:  "CalendarAgent",
			Model: "gpt-4o",
		},

		Runner: RunnerConfig{
			MaxIterations: 150,
			PollInterval:  2 * time.Second,
			SubmitPause:   time.Second,
		},

		Calendar: CalendarConfig{
			Enabled:            true,
			BaseURL:            "https://graph.microsoft.com/v1.0",
			ClientSecretEnvVar: "GRAPH_CLIENT_SECRET",
			DefaultTimezone:    "Singapore Standard Time",
		},

		HR: HRConfig{
			Enabled: false,
			Submitter: CredentialConfig{
				PasswordEnvVar: "FLEXHR_SUBMITTER_PASSWORD",
			},
			Approver: CredentialConfig{
				PasswordEnvVar: "FLEXHR_APPROVER_PASSWORD",
			},
		},

		Approvals: ApprovalsConfig{
			CallbackBaseURL:   "http://localhost:5000",
			ListenAddr:        "0.0.0.0:5000",
			RetentionMinutes:  5,
			PendingTTLMinutes: 60,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
