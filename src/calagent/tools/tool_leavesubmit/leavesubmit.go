package tool_leavesubmit

import (
	"context"
	"encoding/json"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/flexhr"
)

// Tool name constant
const Name = "leave_submit"

const leaveSubmitPrompt = `Submit a new leave request in the HR system. Dates are YYYY-MM-DD; end_date defaults to start_date for single-day leave. Requires token and devid from hr_login (submitter session).`

// LeaveSubmitter files leave requests.
type LeaveSubmitter interface {
	LeaveSubmit(ctx context.Context, session *flexhr.Session, params flexhr.LeaveSubmitParams) (*flexhr.Result, error)
}

// LeaveSubmitInput represents the parameters for leave_submit
type LeaveSubmitInput struct {
	Token        string `json:"token" required:"true" description:"Session token from hr_login"`
	DevID        string `json:"devid" required:"true" description:"Device ID from hr_login"`
	StartDate    string `json:"start_date" required:"true" description:"Leave start date in YYYY-MM-DD format"`
	EndDate      string `json:"end_date,omitempty" description:"Leave end date in YYYY-MM-DD format (defaults to start_date)"`
	LeaveCode    string `json:"leave_code,omitempty" description:"Leave type code (default \"#AL\" for Annual Leave)"`
	NumberOfDays string `json:"number_of_days,omitempty" description:"Number of days requested (default \"1.0\")"`
	Remark       string `json:"submitter_remark,omitempty" description:"Optional reason or comment"`
	SubmitterNum string `json:"submitterempnum,omitempty" description:"Submitting employee number (default configured submitter)"`
	OwnerNum     string `json:"ownerempnum,omitempty" description:"Employee taking the leave (default configured submitter)"`
}

// LeaveSubmitOutput represents the response from leave_submit
type LeaveSubmitOutput struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config supplies defaults for fields the model may omit.
type Config struct {
	DefaultEmployeeNum string
}

// Tool returns the leave_submit tool definition using GenericTool
func Tool(submitter LeaveSubmitter, cfg Config) (agent.Tool, error) {
	return agent.NewGenericTool(Name, leaveSubmitPrompt, makeLeaveSubmitHandler(submitter, cfg))
}

func makeLeaveSubmitHandler(submitter LeaveSubmitter, cfg Config) func(ctx context.Context, input LeaveSubmitInput) (LeaveSubmitOutput, error) {
	return func(ctx context.Context, input LeaveSubmitInput) (LeaveSubmitOutput, error) {
		logger := toolsutil.GetLogger()

		if !toolsutil.ValidateISODate(input.StartDate) {
			return LeaveSubmitOutput{}, toolsutil.NewToolError("validation_error", "start_date must be in YYYY-MM-DD format")
		}
		if input.EndDate != "" && !toolsutil.ValidateISODate(input.EndDate) {
			return LeaveSubmitOutput{}, toolsutil.NewToolError("validation_error", "end_date must be in YYYY-MM-DD format")
		}

		submitterNum := input.SubmitterNum
		if submitterNum == "" {
			submitterNum = cfg.DefaultEmployeeNum
		}
		ownerNum := input.OwnerNum
		if ownerNum == "" {
			ownerNum = submitterNum
		}

		logger.Info("submitting leave", "start", input.StartDate, "end", input.EndDate, "code", input.LeaveCode)

		result, err := submitter.LeaveSubmit(ctx, &flexhr.Session{Token: input.Token, DevID: input.DevID},
			flexhr.LeaveSubmitParams{
				StartDate:    input.StartDate,
				EndDate:      input.EndDate,
				LeaveCode:    input.LeaveCode,
				NumberOfDays: input.NumberOfDays,
				Remark:       input.Remark,
				SubmitterNum: submitterNum,
				OwnerNum:     ownerNum,
			})
		if err != nil {
			logger.Error("leave submission failed", "error", err)
			return LeaveSubmitOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return LeaveSubmitOutput{Status: result.Status, Message: result.Message, Data: result.Data}, nil
	}
}
