package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elee1766/calagent/src/aisdk"
)

// Dispatch error kinds fed back to the model as tool output.
const (
	ErrKindUnknownFunction  = "unknown_function"
	ErrKindInvalidArguments = "invalid_arguments"
	ErrKindExecutionError   = "execution_error"
)

// DispatchError is the structured error payload returned to the model when a
// tool call cannot be executed.
type DispatchError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Dispatch executes a batch of tool calls against the toolbox and returns
// exactly one output per call id. The backend stalls if any submitted call id
// is missing an output, so every failure mode is converted to an error
// payload instead of being raised.
func Dispatch(ctx context.Context, toolbox *DefaultToolbox, logger *slog.Logger, calls []aisdk.ToolCall) []aisdk.ToolOutput {
	if logger == nil {
		logger = slog.Default()
	}

	outputs := make([]aisdk.ToolOutput, 0, len(calls))
	for i := range calls {
		call := calls[i]
		outputs = append(outputs, aisdk.ToolOutput{
			ToolCallID: call.ID,
			Output:     dispatchOne(ctx, toolbox, logger, &call),
		})
	}
	return outputs
}

func dispatchOne(ctx context.Context, toolbox *DefaultToolbox, logger *slog.Logger, call *aisdk.ToolCall) (output string) {
	name := call.Function.Name

	// A panicking tool must still produce an output for its call id.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool call panicked", "tool", name, "panic", r)
			output = errorPayload(ErrKindExecutionError, fmt.Sprintf("Error executing %s: %v", name, r))
		}
	}()

	if toolbox == nil || !toolbox.HasTool(name) {
		logger.Warn("unknown function called", "tool", name)
		return errorPayload(ErrKindUnknownFunction, fmt.Sprintf("Function %s is not supported", name))
	}

	if len(call.Function.Arguments) > 0 && !json.Valid(call.Function.Arguments) {
		logger.Error("invalid JSON in function arguments", "tool", name)
		return errorPayload(ErrKindInvalidArguments, "Invalid function arguments")
	}

	logger.Debug("executing tool call", "tool", name, "call_id", call.ID)

	resp, err := toolbox.ExecuteTool(ctx, call)
	if err != nil {
		logger.Error("tool execution failed", "tool", name, "error", err)
		return errorPayload(ErrKindExecutionError, fmt.Sprintf("Error executing %s: %v", name, err))
	}

	if resp.IsError {
		// Tools that emit a structured taxonomy payload pass through as-is;
		// plain error text is wrapped so the model always sees one shape.
		if json.Valid(resp.Content) && len(resp.Content) > 0 && resp.Content[0] == '{' {
			return string(resp.Content)
		}
		return errorPayload(ErrKindExecutionError, string(resp.Content))
	}

	return string(resp.Content)
}

func errorPayload(kind, message string) string {
	out, err := json.Marshal(DispatchError{Error: kind, Message: message})
	if err != nil {
		// DispatchError cannot actually fail to marshal; keep the contract anyway.
		return `{"error":"execution_error","message":"failed to encode error"}`
	}
	return string(out)
}
