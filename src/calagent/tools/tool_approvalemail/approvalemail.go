package tool_approvalemail

import (
	"context"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/logicapp"
)

// Tool name constant
const Name = "send_approval_email"

const approvalEmailPrompt = `Send a generic approval email with Approve/Reject actions to a recipient. Use this for approvals that are not leave requests, such as meeting scheduling that needs manager sign-off. The decision arrives asynchronously as a notification.`

// EmailSender delivers approval emails.
type EmailSender interface {
	SendApprovalEmail(ctx context.Context, to, subject, bodyText, callbackURL string) (*logicapp.Result, error)
}

// ApprovalEmailInput represents the parameters for send_approval_email
type ApprovalEmailInput struct {
	To          string `json:"to" required:"true" description:"Email address of the approver"`
	Subject     string `json:"subject" required:"true" description:"Subject line describing what needs approval"`
	BodyText    string `json:"body_text" required:"true" description:"Plain text description of the request"`
	CallbackURL string `json:"callback_url,omitempty" description:"Filled in automatically. Do not set."`
}

// ApprovalEmailOutput represents the response from send_approval_email
type ApprovalEmailOutput struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Tool returns the send_approval_email tool definition using GenericTool
func Tool(sender EmailSender) (agent.Tool, error) {
	return agent.NewGenericTool(Name, approvalEmailPrompt, makeApprovalEmailHandler(sender))
}

func makeApprovalEmailHandler(sender EmailSender) func(ctx context.Context, input ApprovalEmailInput) (ApprovalEmailOutput, error) {
	return func(ctx context.Context, input ApprovalEmailInput) (ApprovalEmailOutput, error) {
		logger := toolsutil.GetLogger()

		if !toolsutil.IsValidEmail(input.To) {
			return ApprovalEmailOutput{}, toolsutil.NewToolError("validation_error", "to is not a valid email address")
		}

		logger.Info("sending approval email", "to", input.To, "subject", input.Subject)

		result, err := sender.SendApprovalEmail(ctx, input.To, input.Subject, input.BodyText, input.CallbackURL)
		if err != nil {
			logger.Error("approval email failed", "error", err)
			return ApprovalEmailOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return ApprovalEmailOutput{
			Status:     result.Status,
			StatusCode: result.StatusCode,
			Message:    "Approval email sent to " + input.To + ". The decision will arrive as a notification.",
		}, nil
	}
}
