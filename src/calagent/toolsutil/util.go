package toolsutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"time"
)

// Package-level logger for tools
var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
	Level: slog.LevelError,
}))

// SetLogger allows setting a custom logger for the tools package
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// GetLogger returns the current tools logger
func GetLogger() *slog.Logger {
	return logger
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether the value looks like an email address.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidateISODatetime checks a full ISO 8601 datetime, with or without zone.
func ValidateISODatetime(value string) bool {
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return true
	}
	if _, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return true
	}
	return false
}

// ValidateISODate checks a bare YYYY-MM-DD date.
func ValidateISODate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// ToolError is a structured tool failure. Its Error text is the JSON payload
// itself so the dispatch layer can forward it to the model unchanged.
type ToolError struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	out, err := json.Marshal(e)
	if err != nil {
		return e.Kind + ": " + e.Message
	}
	return string(out)
}

// NewToolError creates a structured tool failure.
func NewToolError(kind, message string) *ToolError {
	return &ToolError{Kind: kind, Message: message}
}
