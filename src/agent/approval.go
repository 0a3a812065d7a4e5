package agent

import (
	"context"

	"github.com/elee1766/calagent/src/aisdk"
)

// ApprovalBindFunc rewrites a tool call before execution: it mints a tracking
// id, registers the approval request, and returns the call with the callback
// URL injected into its arguments.
type ApprovalBindFunc func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolCall, error)

// ApprovalBound marks tools whose dispatch must register an approval request
// before the underlying call is made.
type ApprovalBound interface {
	Tool
	ApprovalBind() ApprovalBindFunc
}

type approvalTool struct {
	Tool
	bind ApprovalBindFunc
}

// NewApprovalTool wraps a tool so every execution is preceded by approval
// registration. The wrapped call only triggers delivery of the approval
// notification; the decision arrives later through the callback ingress.
func NewApprovalTool(tool Tool, bind ApprovalBindFunc) Tool {
	return &approvalTool{Tool: tool, bind: bind}
}

func (t *approvalTool) ApprovalBind() ApprovalBindFunc {
	return t.bind
}

func (t *approvalTool) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	bound, err := t.bind(ctx, call)
	if err != nil {
		return &aisdk.ToolResponse{
			Type:    "error",
			Content: []byte(err.Error()),
			IsError: true,
		}, nil
	}
	return t.Tool.Execute(ctx, bound)
}

var _ ApprovalBound = (*approvalTool)(nil)
