package aisdk

import (
	"context"
)

// AgentService is the contract a model backend must provide: agent and thread
// lifecycle plus the polling-oriented run loop.
type AgentService interface {
	// CreateAgent provisions a new agent with the given model, instructions,
	// and tool definitions.
	CreateAgent(ctx context.Context, req *CreateAgentRequest) (*Agent, error)

	// DeleteAgent removes an agent. Deleting an unknown agent is an error.
	DeleteAgent(ctx context.Context, agentID string) error

	// CreateThread creates a new empty conversation thread.
	CreateThread(ctx context.Context) (*Thread, error)

	// CreateMessage appends a message to a thread.
	CreateMessage(ctx context.Context, threadID, role, content string) (*Message, error)

	// ListMessages returns thread messages, newest first, up to limit.
	ListMessages(ctx context.Context, threadID string, limit int) ([]*Message, error)

	// CreateRun starts a run of the agent against the thread.
	CreateRun(ctx context.Context, threadID, agentID string) (*Run, error)

	// GetRun refreshes the state of an in-flight run.
	GetRun(ctx context.Context, threadID, runID string) (*Run, error)

	// SubmitToolOutputs delivers tool results for a run in requires_action.
	// Every tool call id the run is waiting on must have exactly one output.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error)
}
