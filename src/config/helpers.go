package config

import (
	"os"
)

// ResolveAPIKey returns the inline key or falls back to the named
// environment variable.
func (c BackendConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnvVar != "" {
		return os.Getenv(c.APIKeyEnvVar)
	}
	return ""
}

// ResolveClientSecret returns the inline secret or falls back to the named
// environment variable.
func (c CalendarConfig) ResolveClientSecret() string {
	if c.ClientSecret != "" {
		return c.ClientSecret
	}
	if c.ClientSecretEnvVar != "" {
		return os.Getenv(c.ClientSecretEnvVar)
	}
	return ""
}

// ResolvePassword returns the inline password or falls back to the named
// environment variable.
func (c CredentialConfig) ResolvePassword() string {
	if c.Password != "" {
		return c.Password
	}
	if c.PasswordEnvVar != "" {
		return os.Getenv(c.PasswordEnvVar)
	}
	return ""
}
