package tool_leavelisting

import (
	"context"
	"encoding/json"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/flexhr"
)

// Tool name constant
const Name = "leave_listing"

const leaveListingPrompt = `List leave applications to view their status and obtain document references for withdraw/approve/reject actions. The window defaults to the current calendar year. Requires token and devid from hr_login.`

// LeaveLister queries leave documents.
type LeaveLister interface {
	LeaveListing(ctx context.Context, session *flexhr.Session, params flexhr.LeaveListingParams) (*flexhr.Result, error)
}

// LeaveListingInput represents the parameters for leave_listing
type LeaveListingInput struct {
	Token    string `json:"token" required:"true" description:"Session token from hr_login"`
	DevID    string `json:"devid" required:"true" description:"Device ID from hr_login"`
	ViewAs   string `json:"viewas,omitempty" description:"View type (default \"P\" for personal)"`
	DateFrom string `json:"dtfrm,omitempty" description:"Start date YYYY-MM-DD (default start of current year)"`
	DateTo   string `json:"dtto,omitempty" description:"End date YYYY-MM-DD (default end of current year)"`
}

// LeaveListingOutput represents the response from leave_listing
type LeaveListingOutput struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Tool returns the leave_listing tool definition using GenericTool
func Tool(lister LeaveLister) (agent.Tool, error) {
	return agent.NewGenericTool(Name, leaveListingPrompt, makeLeaveListingHandler(lister))
}

func makeLeaveListingHandler(lister LeaveLister) func(ctx context.Context, input LeaveListingInput) (LeaveListingOutput, error) {
	return func(ctx context.Context, input LeaveListingInput) (LeaveListingOutput, error) {
		logger := toolsutil.GetLogger()

		result, err := lister.LeaveListing(ctx, &flexhr.Session{Token: input.Token, DevID: input.DevID},
			flexhr.LeaveListingParams{
				ViewAs:   input.ViewAs,
				DateFrom: input.DateFrom,
				DateTo:   input.DateTo,
			})
		if err != nil {
			logger.Error("leave listing failed", "error", err)
			return LeaveListingOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return LeaveListingOutput{Status: result.Status, Message: result.Message, Data: result.Data}, nil
	}
}
