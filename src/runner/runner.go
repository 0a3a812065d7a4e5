// Package runner drives one conversation turn: it starts a backend run,
// polls it to completion, dispatches requested tool calls, and extracts the
// final assistant response.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/aisdk"
)

const (
	defaultMaxIterations = 150
	defaultPollInterval  = 2 * time.Second
	defaultSubmitPause   = time.Second
	messageListLimit     = 50
)

// Config holds runner construction options.
type Config struct {
	Service aisdk.AgentService
	Toolbox *agent.DefaultToolbox
	Logger  *slog.Logger

	// MaxIterations caps the poll loop. Multi-step tool chains need a higher
	// cap; tune per deployment.
	MaxIterations int
	// PollInterval is the sleep between status refreshes.
	PollInterval time.Duration
	// SubmitPause is the brief pause after submitting tool outputs.
	SubmitPause time.Duration
}

// Runner executes turns against a single backend service and toolbox.
type Runner struct {
	service       aisdk.AgentService
	toolbox       *agent.DefaultToolbox
	logger        *slog.Logger
	maxIterations int
	pollInterval  time.Duration
	submitPause   time.Duration
}

// ToolCallRecord is the per-turn record of a dispatched tool call.
type ToolCallRecord struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Status       string           `json:"status"` // "success" or "error"
	Message      string           `json:"message"`
	RunStatus    aisdk.RunStatus  `json:"run_status,omitempty"`
	ThreadID     string           `json:"thread_id,omitempty"`
	ErrorType    string           `json:"error_type,omitempty"`
	ErrorDetails string           `json:"error_details,omitempty"`
	ToolCalls    []ToolCallRecord `json:"tool_calls,omitempty"`
}

// NewRunner creates a turn runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	pause := cfg.SubmitPause
	if pause < 0 {
		pause = 0
	} else if pause == 0 {
		pause = defaultSubmitPause
	}
	return &Runner{
		service:       cfg.Service,
		toolbox:       cfg.Toolbox,
		logger:        logger,
		maxIterations: maxIter,
		pollInterval:  poll,
		submitPause:   pause,
	}
}

// ExecuteTurn appends the user message to the thread, runs the agent against
// it, and polls to a terminal state. Failures never escape as errors or
// panics; every outcome is a TurnResult. A timeout is fatal to the turn but
// recoverable for the session.
func (r *Runner) ExecuteTurn(ctx context.Context, agentID, threadID, message string) (result *TurnResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during turn", "panic", rec)
			result = classifyTurnError(fmt.Errorf("panic: %v", rec), threadID)
		}
	}()

	r.logger.Debug("processing message", "thread_id", threadID, "message_len", len(message))

	if _, err := r.service.CreateMessage(ctx, threadID, "user", message); err != nil {
		r.logger.Error("failed to append user message", "thread_id", threadID, "error", err)
		return classifyTurnError(err, threadID)
	}

	run, err := r.service.CreateRun(ctx, threadID, agentID)
	if err != nil {
		r.logger.Error("failed to create run", "thread_id", threadID, "error", err)
		return classifyTurnError(err, threadID)
	}

	var toolCalls []ToolCallRecord
	iterations := 0

	for !run.Status.Terminal() && iterations < r.maxIterations {
		if err := sleepCtx(ctx, r.pollInterval); err != nil {
			return classifyTurnError(err, threadID)
		}
		iterations++

		run, err = r.service.GetRun(ctx, threadID, run.ID)
		if err != nil {
			r.logger.Error("failed to refresh run", "run_id", run.ID, "error", err)
			return classifyTurnError(err, threadID)
		}

		if iterations%5 == 0 {
			r.logger.Debug("run status", "run_id", run.ID, "status", run.Status, "iterations", iterations)
		}

		if run.Status == aisdk.RunStatusRequiresAction && run.RequiredAction != nil {
			calls := run.RequiredAction.ToolCalls
			for _, call := range calls {
				toolCalls = append(toolCalls, ToolCallRecord{CallID: call.ID, Name: call.Function.Name})
			}

			// All outputs for this cycle are gathered before anything is
			// submitted; the backend expects one batch per requires_action.
			outputs := agent.Dispatch(ctx, r.toolbox, r.logger, calls)
			if len(outputs) > 0 {
				run, err = r.service.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
				if err != nil {
					r.logger.Error("failed to submit tool outputs", "run_id", run.ID, "error", err)
					return classifyTurnError(err, threadID)
				}
				if err := sleepCtx(ctx, r.submitPause); err != nil {
					return classifyTurnError(err, threadID)
				}
			}
		}
	}

	if !run.Status.Terminal() {
		elapsed := time.Duration(iterations) * r.pollInterval
		r.logger.Error("run timed out", "run_id", run.ID, "elapsed", elapsed, "status", run.Status)
		return &TurnResult{
			Status:    "error",
			Message:   fmt.Sprintf("Request timed out after %d seconds. Status: %s", int(elapsed.Seconds()), run.Status),
			RunStatus: run.Status,
			ThreadID:  threadID,
			ErrorType: "timeout",
			ToolCalls: toolCalls,
		}
	}

	switch run.Status {
	case aisdk.RunStatusFailed:
		res := classifyRunFailure(run.LastError)
		res.ThreadID = threadID
		res.ToolCalls = toolCalls
		r.logger.Error("run failed", "run_id", run.ID, "error_type", res.ErrorType, "details", res.ErrorDetails)
		return res

	case aisdk.RunStatusCompleted:
		text, err := r.latestAssistantMessage(ctx, threadID)
		if err != nil {
			return classifyTurnError(err, threadID)
		}
		if text == "" {
			// Observed backend edge case: a completed run with no assistant
			// message.
			r.logger.Warn("no assistant response found", "run_id", run.ID)
			return &TurnResult{
				Status:    "error",
				Message:   "No response generated",
				RunStatus: run.Status,
				ThreadID:  threadID,
				ToolCalls: toolCalls,
			}
		}
		return &TurnResult{
			Status:    "success",
			Message:   text,
			RunStatus: run.Status,
			ThreadID:  threadID,
			ToolCalls: toolCalls,
		}

	default:
		r.logger.Error("run ended abnormally", "run_id", run.ID, "status", run.Status)
		return &TurnResult{
			Status:    "error",
			Message:   fmt.Sprintf("Processing failed with status: %s", run.Status),
			RunStatus: run.Status,
			ThreadID:  threadID,
			ToolCalls: toolCalls,
		}
	}
}

// latestAssistantMessage returns the newest assistant-authored text in the
// thread, or "" when none exists.
func (r *Runner) latestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	messages, err := r.service.ListMessages(ctx, threadID, messageListLimit)
	if err != nil {
		return "", err
	}
	for _, msg := range messages {
		if msg.Role == "assistant" {
			return msg.Content, nil
		}
	}
	return "", nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
