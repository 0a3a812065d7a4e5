package calagent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/approval"
	"github.com/elee1766/calagent/src/calagent/tools"
	"github.com/elee1766/calagent/src/calagent/tools/tool_hrentitlement"
	"github.com/elee1766/calagent/src/calagent/tools/tool_leavesubmit"
	"github.com/elee1766/calagent/src/calagent/tools/tool_requestleave"
	"github.com/elee1766/calagent/src/flexhr"
	"github.com/elee1766/calagent/src/graph"
	"github.com/elee1766/calagent/src/logicapp"
)

// Backends bundles everything the toolset talks to.
type Backends struct {
	Calendar *graph.Client
	HR       *flexhr.Client
	Notifier *logicapp.Client
	Tracker  *approval.Tracker

	// DefaultUserUPN identifies the employee when the model omits identity
	// fields.
	DefaultUserUPN string
	// DefaultEmployeeNum is the HR employee number used as a fallback.
	DefaultEmployeeNum string
}

// BuildToolbox registers the full toolset against the given backends. The
// two approval tools are wrapped so every execution registers a tracked
// approval request and carries its callback URL.
func BuildToolbox(b Backends) (*agent.DefaultToolbox, error) {
	if b.Tracker == nil {
		return nil, fmt.Errorf("approval tracker is required")
	}

	toolbox := agent.NewToolbox[agent.Tool]()

	type builtTool struct {
		tool agent.Tool
		err  error
	}
	var entries []builtTool
	add := func(tool agent.Tool, err error) {
		entries = append(entries, builtTool{tool: tool, err: err})
	}

	if b.Calendar != nil {
		add(tools.ReadScheduleTool(b.Calendar))
		add(tools.CreateMeetingTool(b.Calendar))
	}
	add(tools.CurrentDatetimeTool())
	add(tools.CheckNotificationsTool(b.Tracker))

	if b.Notifier != nil {
		leaveTool, err := tools.RequestLeaveTool(b.Notifier, tool_requestleave.Config{
			DefaultUserUPN: b.DefaultUserUPN,
		})
		if err != nil {
			return nil, err
		}
		add(agent.NewApprovalTool(leaveTool, leaveApprovalBind(b.Tracker, b.DefaultUserUPN)), nil)

		emailTool, err := tools.ApprovalEmailTool(b.Notifier)
		if err != nil {
			return nil, err
		}
		add(agent.NewApprovalTool(emailTool, emailApprovalBind(b.Tracker)), nil)
	}

	if b.HR != nil {
		add(tools.HRLoginTool(b.HR))
		add(tools.EntitlementTool(b.HR, tool_hrentitlement.Config{DefaultEmployeeNum: b.DefaultEmployeeNum}))
		add(tools.LeaveListingTool(b.HR))
		add(tools.LeaveSubmitTool(b.HR, tool_leavesubmit.Config{DefaultEmployeeNum: b.DefaultEmployeeNum}))
		add(tools.LeaveActionTool(b.HR))
	}

	for _, entry := range entries {
		if entry.err != nil {
			return nil, fmt.Errorf("failed to build tool: %w", entry.err)
		}
		if err := toolbox.RegisterTool(entry.tool); err != nil {
			return nil, err
		}
	}
	return toolbox, nil
}

// leaveApprovalBind registers a leave approval request and injects its
// callback URL into the call arguments. A caller-supplied callback_url is
// left alone.
func leaveApprovalBind(tracker *approval.Tracker, defaultUPN string) agent.ApprovalBindFunc {
	return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolCall, error) {
		var args map[string]any
		if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
			return nil, fmt.Errorf("failed to parse arguments: %w", err)
		}
		if cb, ok := args["callback_url"].(string); ok && cb != "" {
			return call, nil
		}

		employeeEmail := stringArg(args, "employee_email")
		if employeeEmail == "" {
			employeeEmail = defaultUPN
		}
		employeeName := stringArg(args, "employee_name")
		if employeeName == "" {
			employeeName = tool_requestleave.NameFromUPN(employeeEmail)
		}

		approvalID := approval.NewApprovalID()
		callbackURL := tracker.Register(approvalID, approval.RequestDetails{
			Type:           approval.TypeLeaveRequest,
			EmployeeName:   employeeName,
			EmployeeEmail:  employeeEmail,
			LeaveStartDate: stringArg(args, "leave_start_date"),
			LeaveEndDate:   stringArg(args, "leave_end_date"),
			LeaveReason:    stringArg(args, "leave_reason"),
			ManagerEmail:   stringArg(args, "manager_email"),
			CalendarStatus: stringArg(args, "calendar_status"),
		})

		return withCallbackURL(call, args, callbackURL)
	}
}

// emailApprovalBind registers a generic approval request for the
// send_approval_email tool.
func emailApprovalBind(tracker *approval.Tracker) agent.ApprovalBindFunc {
	return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolCall, error) {
		var args map[string]any
		if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
			return nil, fmt.Errorf("failed to parse arguments: %w", err)
		}
		if cb, ok := args["callback_url"].(string); ok && cb != "" {
			return call, nil
		}

		approvalID := approval.NewApprovalID()
		callbackURL := tracker.Register(approvalID, approval.RequestDetails{
			Type:         approval.TypeMeetingRequest,
			ManagerEmail: stringArg(args, "to"),
			Subject:      stringArg(args, "subject"),
		})

		return withCallbackURL(call, args, callbackURL)
	}
}

func withCallbackURL(call *aisdk.ToolCall, args map[string]any, callbackURL string) (*aisdk.ToolCall, error) {
	args["callback_url"] = callbackURL
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	bound := *call
	bound.Function.Arguments = raw
	return &bound, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
