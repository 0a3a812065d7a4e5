// Package aisdk defines the provider-neutral types and service contract for
// an agents-style model backend: agents, threads, runs, and tool calls.
package aisdk

import (
	"encoding/json"
	"log/slog"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// RunStatus is the lifecycle state of a Run as reported by the backend.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether the run has reached a state the backend will not
// leave on its own.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// Agent is a configured model + instruction set + tool definitions, created
// once and reused across threads.
type Agent struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	CreatedAt    time.Time        `json:"created_at,omitempty"`
}

// Thread is an ordered message history backing one conversation.
type Thread struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Message is a single entry in a thread.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Run is one model-invocation lifecycle for a single user turn.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	AgentID        string          `json:"agent_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// RequiredAction carries the tool calls the backend is waiting on before the
// run can continue.
type RequiredAction struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// RunError is the backend's error payload on a failed run.
type RunError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *RunError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// ToolCall is a structured request from the model to invoke a named external
// function with JSON arguments.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function" for now
	Function FunctionCall `json:"function"`
}

// FunctionCall contains the function name and raw argument object.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolOutput is the result of executing one tool call, keyed by the call id.
// The backend requires exactly one output per submitted call id.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// ToolResponse is the local result of executing a tool, before it is
// serialized into a ToolOutput for the backend.
type ToolResponse struct {
	Type     string `json:"type"`
	Content  []byte `json:"content"`
	Metadata string `json:"metadata,omitempty"`
	IsError  bool   `json:"is_error"`
}

// ToolDefinition declares a callable function to the backend.
type ToolDefinition struct {
	Type     string        `json:"type"`
	Function *ToolFunction `json:"function,omitempty"`
}

// ToolFunction is the function declaration within a tool definition.
type ToolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// CreateAgentRequest holds the parameters for creating a new agent.
type CreateAgentRequest struct {
	Name         string           `json:"name"`
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// ClientConfig holds the configuration shared by backend client
// implementations.
type ClientConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	RetryCount int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Error represents an API error response body.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ErrorResponse wraps an error from the API.
type ErrorResponse struct {
	Error Error `json:"error"`
}
