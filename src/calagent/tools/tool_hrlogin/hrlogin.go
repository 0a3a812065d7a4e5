package tool_hrlogin

import (
	"context"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/flexhr"
)

// Tool name constant
const Name = "hr_login"

const hrLoginPrompt = `Login to the HR system as submitter or approver. ALWAYS call this before any other HR operation. Returns the session token and devid that must be passed to all subsequent HR calls. Use "submitter" for employee actions and "approver" for manager actions.`

// Authenticator opens an HR session.
type Authenticator interface {
	Login(ctx context.Context, role string) (*flexhr.Session, error)
}

// HRLoginInput represents the parameters for hr_login
type HRLoginInput struct {
	UserType string `json:"user_type" required:"true" description:"Either \"submitter\" or \"approver\""`
}

// HRLoginOutput represents the response from hr_login
type HRLoginOutput struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Token    string `json:"token"`
	DevID    string `json:"devid"`
	UserType string `json:"user_type"`
}

// Tool returns the hr_login tool definition using GenericTool
func Tool(auth Authenticator) (agent.Tool, error) {
	return agent.NewGenericTool(Name, hrLoginPrompt, makeHRLoginHandler(auth))
}

func makeHRLoginHandler(auth Authenticator) func(ctx context.Context, input HRLoginInput) (HRLoginOutput, error) {
	return func(ctx context.Context, input HRLoginInput) (HRLoginOutput, error) {
		logger := toolsutil.GetLogger()
		logger.Info("hr login", "role", input.UserType)

		session, err := auth.Login(ctx, input.UserType)
		if err != nil {
			logger.Error("hr login failed", "error", err)
			return HRLoginOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return HRLoginOutput{
			Status:   "success",
			Message:  "Successfully logged in as " + session.UserType,
			Token:    session.Token,
			DevID:    session.DevID,
			UserType: session.UserType,
		}, nil
	}
}
