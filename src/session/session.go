// Package session owns the lifetime of one conversation context: the agent
// handle and the thread handle, across multiple turns.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/runner"
	"github.com/elee1766/calagent/src/sessionlog"
)

// Session actions accepted by Perform.
const (
	ActionMessage = "message"
	ActionReset   = "reset"
	ActionCleanup = "cleanup"
)

// Config holds session manager construction options.
type Config struct {
	Service aisdk.AgentService
	Runner  *runner.Runner

	// Agent provisioning parameters, used on first initialize.
	AgentName    string
	Model        string
	Instructions string
	Tools        []aisdk.ToolDefinition

	Logger *slog.Logger
	// Audit receives the session lifecycle trail. Optional.
	Audit *sessionlog.Logger
}

// Response is the JSON-shaped result of any session operation.
type Response struct {
	Status       string                  `json:"status"`
	Message      string                  `json:"message"`
	ThreadID     string                  `json:"thread_id,omitempty"`
	Timestamp    string                  `json:"timestamp,omitempty"`
	ToolCalls    []runner.ToolCallRecord `json:"tool_calls,omitempty"`
	ErrorDetails string                  `json:"error_details,omitempty"`
}

// Manager maintains a persistent agent session. At most one thread is active
// at a time; the agent handle outlives threads except across a full reinit.
type Manager struct {
	mu  sync.Mutex
	cfg Config

	logger *slog.Logger

	agentID  string
	threadID string
}

// NewManager creates a session manager. No backend resources are created
// until Initialize or the first message.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Active reports whether the session has a live agent and thread.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agentID != "" && m.threadID != ""
}

// ThreadID returns the current thread handle, or "".
func (m *Manager) ThreadID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threadID
}

// Initialize creates the agent and conversation thread. Idempotent: a no-op
// when the session is already active. On failure the session stays
// uninitialized.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializeLocked(ctx)
}

func (m *Manager) initializeLocked(ctx context.Context) error {
	if m.agentID != "" && m.threadID != "" {
		return nil
	}

	m.audit("Initializing new agent session")

	agentID := m.agentID
	createdAgent := false
	if agentID == "" {
		created, err := m.cfg.Service.CreateAgent(ctx, &aisdk.CreateAgentRequest{
			Name:         m.cfg.AgentName,
			Model:        m.cfg.Model,
			Instructions: m.cfg.Instructions,
			Tools:        m.cfg.Tools,
		})
		if err != nil {
			m.audit(fmt.Sprintf("ERROR: Failed to create agent: %v", err))
			m.logger.Error("failed to create agent", "error", err)
			return fmt.Errorf("failed to initialize agent session: %w", err)
		}
		agentID = created.ID
		createdAgent = true
		m.audit(fmt.Sprintf("Agent created with ID: %s", agentID))
	}

	threadID := m.threadID
	if threadID == "" {
		thread, err := m.cfg.Service.CreateThread(ctx)
		if err != nil {
			m.audit(fmt.Sprintf("ERROR: Failed to create thread: %v", err))
			m.logger.Error("failed to create thread", "error", err)
			// Don't leak the agent; the session must stay uninitialized.
			if createdAgent {
				if delErr := m.cfg.Service.DeleteAgent(ctx, agentID); delErr != nil {
					m.logger.Warn("failed to delete agent after thread failure", "agent_id", agentID, "error", delErr)
				}
			}
			return fmt.Errorf("failed to initialize agent session: %w", err)
		}
		threadID = thread.ID
		m.audit(fmt.Sprintf("Thread created with ID: %s", threadID))
	}

	m.agentID = agentID
	m.threadID = threadID
	return nil
}

// ProcessMessage runs one user turn on the session's current thread.
// Initialization is lazy, and no failure escapes as an error or panic; every
// outcome is a structured Response.
func (m *Manager) ProcessMessage(ctx context.Context, message string) *Response {
	return m.ProcessMessageInThread(ctx, "", message)
}

// ProcessMessageInThread runs one user turn. A non-empty threadID is adopted
// as the session's thread, so a caller can resume a conversation created by
// an earlier process.
func (m *Manager) ProcessMessageInThread(ctx context.Context, threadID, message string) *Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	if threadID != "" && threadID != m.threadID {
		m.threadID = threadID
		m.audit(fmt.Sprintf("Resuming existing thread: %s", threadID))
	}

	if m.agentID == "" || m.threadID == "" {
		if err := m.initializeLocked(ctx); err != nil {
			return &Response{
				Status:       "error",
				Message:      "Failed to initialize agent session",
				ErrorDetails: err.Error(),
			}
		}
	}

	preview := message
	if len(preview) > 30 {
		preview = preview[:30] + "..."
	}
	m.audit(fmt.Sprintf("Processing: %q (Agent: %s)", preview, m.agentID))

	result := m.cfg.Runner.ExecuteTurn(ctx, m.agentID, m.threadID, message)
	m.audit(fmt.Sprintf("Processed: %s", result.Status))

	return &Response{
		Status:       result.Status,
		Message:      result.Message,
		ThreadID:     m.threadID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ToolCalls:    result.ToolCalls,
		ErrorDetails: result.ErrorDetails,
	}
}

// Reset starts a new conversation. When an agent exists only the thread is
// replaced, reusing the expensive resource; otherwise the session is fully
// reinitialized.
func (m *Manager) Reset(ctx context.Context) *Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.agentID != "" {
		m.audit("Resetting session - creating new thread")
		thread, err := m.cfg.Service.CreateThread(ctx)
		if err != nil {
			m.audit(fmt.Sprintf("ERROR: Failed to reset session: %v", err))
			return &Response{
				Status:       "error",
				Message:      fmt.Sprintf("Error resetting session: %v", err),
				ErrorDetails: err.Error(),
			}
		}
		m.threadID = thread.ID
		m.audit(fmt.Sprintf("New thread created: %s, keeping same agent: %s", thread.ID, m.agentID))
		return &Response{
			Status:   "success",
			Message:  "Session reset - new conversation started",
			ThreadID: m.threadID,
		}
	}

	m.audit("Re-initializing entire session")
	m.cleanupLocked(ctx)
	if err := m.initializeLocked(ctx); err != nil {
		return &Response{
			Status:       "error",
			Message:      "Failed to reset session",
			ErrorDetails: err.Error(),
		}
	}
	return &Response{
		Status:   "success",
		Message:  "Session reset - new agent and conversation started",
		ThreadID: m.threadID,
	}
}

// Cleanup deletes the agent resource and resets all handles. Best-effort:
// backend failures are logged, never raised. Safe to call when the session
// was never initialized or is already torn down.
func (m *Manager) Cleanup(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(ctx)
}

func (m *Manager) cleanupLocked(ctx context.Context) {
	m.audit("Starting cleanup of agent resources")

	if m.agentID != "" {
		if err := m.cfg.Service.DeleteAgent(ctx, m.agentID); err != nil {
			m.audit(fmt.Sprintf("ERROR: Error deleting agent: %v", err))
			m.logger.Warn("failed to delete agent", "agent_id", m.agentID, "error", err)
		} else {
			m.audit(fmt.Sprintf("Agent %s deleted successfully", m.agentID))
		}
	}

	m.agentID = ""
	m.threadID = ""
	m.audit("Cleanup completed")
}

// Perform executes a named session action. An absent message for the
// "message" action is a usage error and is returned as a Go error rather
// than a structured Response. threadID is optional and only meaningful for
// the "message" action.
func (m *Manager) Perform(ctx context.Context, action, message, threadID string) (*Response, error) {
	switch action {
	case ActionMessage:
		if message == "" {
			return nil, fmt.Errorf("message is required for message action")
		}
		return m.ProcessMessageInThread(ctx, threadID, message), nil
	case ActionReset:
		return m.Reset(ctx), nil
	case ActionCleanup:
		m.Cleanup(ctx)
		return &Response{Status: "success", Message: "Session cleaned up"}, nil
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

func (m *Manager) audit(message string) {
	if m.cfg.Audit != nil {
		m.cfg.Audit.Log("agent", "AGENT: "+message)
	}
}
