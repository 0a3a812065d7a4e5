package tool_leaveaction

import (
	"context"
	"encoding/json"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/flexhr"
)

// Tool name constant
const Name = "leave_action"

const leaveActionPrompt = `Take action on a leave document: withdraw (acttkn "5"), approve (acttkn "6"), or reject (acttkn "8"). Approve and reject require an approver session from hr_login. Get document references from leave_listing.`

// LeaveActor applies actions to leave documents.
type LeaveActor interface {
	LeaveAction(ctx context.Context, session *flexhr.Session, docRefs, action, remark string) (*flexhr.Result, error)
}

// LeaveActionInput represents the parameters for leave_action
type LeaveActionInput struct {
	Token   string `json:"token" required:"true" description:"Session token from hr_login"`
	DevID   string `json:"devid" required:"true" description:"Device ID from hr_login"`
	DocRefs string `json:"docrefarr" required:"true" description:"Document reference(s) to act on, from leave_listing"`
	Action  string `json:"acttkn" required:"true" description:"Action token: \"5\"=Withdraw, \"6\"=Approve, \"8\"=Reject"`
	Remark  string `json:"rmk,omitempty" description:"Optional remarks for the action"`
}

// LeaveActionOutput represents the response from leave_action
type LeaveActionOutput struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Tool returns the leave_action tool definition using GenericTool
func Tool(actor LeaveActor) (agent.Tool, error) {
	return agent.NewGenericTool(Name, leaveActionPrompt, makeLeaveActionHandler(actor))
}

func makeLeaveActionHandler(actor LeaveActor) func(ctx context.Context, input LeaveActionInput) (LeaveActionOutput, error) {
	return func(ctx context.Context, input LeaveActionInput) (LeaveActionOutput, error) {
		logger := toolsutil.GetLogger()
		logger.Info("leave action", "action", input.Action, "docref", input.DocRefs)

		result, err := actor.LeaveAction(ctx, &flexhr.Session{Token: input.Token, DevID: input.DevID},
			input.DocRefs, input.Action, input.Remark)
		if err != nil {
			logger.Error("leave action failed", "error", err)
			return LeaveActionOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return LeaveActionOutput{Status: result.Status, Message: result.Message, Data: result.Data}, nil
	}
}
