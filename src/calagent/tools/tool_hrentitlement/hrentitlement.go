package tool_hrentitlement

import (
	"context"
	"encoding/json"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/flexhr"
)

// Tool name constant
const Name = "leave_entitlement"

const hrEntitlementPrompt = `Get leave entitlement balances for an employee. Without a leave code this returns the summary of all balances; with a leave code (e.g. "#AL" for Annual Leave, "#SL" for Sick Leave) it returns the detailed breakdown for that code. Requires token and devid from hr_login.`

// EntitlementReader queries leave balances.
type EntitlementReader interface {
	EntitlementSummary(ctx context.Context, session *flexhr.Session, params flexhr.EntitlementSummaryParams) (*flexhr.Result, error)
	EntitlementDetail(ctx context.Context, session *flexhr.Session, params flexhr.EntitlementDetailParams) (*flexhr.Result, error)
}

// HREntitlementInput represents the parameters for leave_entitlement
type HREntitlementInput struct {
	Token       string `json:"token" required:"true" description:"Session token from hr_login"`
	DevID       string `json:"devid" required:"true" description:"Device ID from hr_login"`
	EmployeeNum string `json:"empnum,omitempty" description:"Employee number (default configured submitter)"`
	Year        string `json:"entlyr,omitempty" description:"Entitlement year (default current year)"`
	LeaveCode   string `json:"lvecode,omitempty" description:"Leave code for a detailed breakdown. Omit for the summary."`
}

// HREntitlementOutput represents the response from leave_entitlement
type HREntitlementOutput struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config supplies defaults for fields the model may omit.
type Config struct {
	DefaultEmployeeNum string
}

// Tool returns the leave_entitlement tool definition using GenericTool
func Tool(reader EntitlementReader, cfg Config) (agent.Tool, error) {
	return agent.NewGenericTool(Name, hrEntitlementPrompt, makeHREntitlementHandler(reader, cfg))
}

func makeHREntitlementHandler(reader EntitlementReader, cfg Config) func(ctx context.Context, input HREntitlementInput) (HREntitlementOutput, error) {
	return func(ctx context.Context, input HREntitlementInput) (HREntitlementOutput, error) {
		logger := toolsutil.GetLogger()
		session := &flexhr.Session{Token: input.Token, DevID: input.DevID}
		empnum := input.EmployeeNum
		if empnum == "" {
			empnum = cfg.DefaultEmployeeNum
		}

		var result *flexhr.Result
		var err error
		if input.LeaveCode != "" {
			result, err = reader.EntitlementDetail(ctx, session, flexhr.EntitlementDetailParams{
				EmployeeNum: empnum,
				Year:        input.Year,
				LeaveCode:   input.LeaveCode,
			})
		} else {
			result, err = reader.EntitlementSummary(ctx, session, flexhr.EntitlementSummaryParams{
				EmployeeNum: empnum,
				Year:        input.Year,
			})
		}
		if err != nil {
			logger.Error("entitlement query failed", "error", err)
			return HREntitlementOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return HREntitlementOutput{Status: result.Status, Message: result.Message, Data: result.Data}, nil
	}
}
