package tool_requestleave

import (
	"context"
	"strings"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/logicapp"
)

// Tool name constant
const Name = "request_leave_approval"

const requestLeavePrompt = `Submit a leave request for manager approval. An approval email with Approve/Reject actions is sent to the manager and the decision arrives asynchronously. Check the employee's calendar for conflicts with read_schedule first and pass the result as calendar_status. Dates are YYYY-MM-DD.`

// LeaveRequestSender delivers leave approval emails.
type LeaveRequestSender interface {
	SendLeaveRequest(ctx context.Context, email logicapp.LeaveRequestEmail) (*logicapp.Result, error)
}

// RequestLeaveInput represents the parameters for request_leave_approval
type RequestLeaveInput struct {
	LeaveStartDate string `json:"leave_start_date" required:"true" description:"Leave start date in YYYY-MM-DD format"`
	LeaveEndDate   string `json:"leave_end_date" required:"true" description:"Leave end date in YYYY-MM-DD format"`
	LeaveReason    string `json:"leave_reason" required:"true" description:"Reason for the leave request"`
	ManagerEmail   string `json:"manager_email" required:"true" description:"Manager's email address for approval"`
	EmployeeName   string `json:"employee_name,omitempty" description:"Employee full name. Defaults to the configured user."`
	EmployeeEmail  string `json:"employee_email,omitempty" description:"Employee email. Defaults to the configured user."`
	CalendarStatus string `json:"calendar_status,omitempty" description:"Summary of calendar conflicts found before requesting approval"`
	CallbackURL    string `json:"callback_url,omitempty" description:"Filled in automatically. Do not set."`
}

// RequestLeaveOutput represents the response from request_leave_approval
type RequestLeaveOutput struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Config supplies defaults for fields the model may omit.
type Config struct {
	// DefaultUserUPN stands in for missing employee identity fields.
	DefaultUserUPN string
}

// Tool returns the request_leave_approval tool definition using GenericTool
func Tool(sender LeaveRequestSender, cfg Config) (agent.Tool, error) {
	return agent.NewGenericTool(Name, requestLeavePrompt, makeRequestLeaveHandler(sender, cfg))
}

func makeRequestLeaveHandler(sender LeaveRequestSender, cfg Config) func(ctx context.Context, input RequestLeaveInput) (RequestLeaveOutput, error) {
	return func(ctx context.Context, input RequestLeaveInput) (RequestLeaveOutput, error) {
		logger := toolsutil.GetLogger()

		if !toolsutil.ValidateISODate(input.LeaveStartDate) || !toolsutil.ValidateISODate(input.LeaveEndDate) {
			return RequestLeaveOutput{}, toolsutil.NewToolError("validation_error", "leave dates must be in YYYY-MM-DD format")
		}
		if !toolsutil.IsValidEmail(input.ManagerEmail) {
			return RequestLeaveOutput{}, toolsutil.NewToolError("validation_error", "manager_email is not a valid email address")
		}

		employeeEmail := input.EmployeeEmail
		if employeeEmail == "" {
			employeeEmail = cfg.DefaultUserUPN
		}
		employeeName := input.EmployeeName
		if employeeName == "" {
			employeeName = NameFromUPN(employeeEmail)
		}

		logger.Info("requesting leave approval",
			"employee", employeeName, "start", input.LeaveStartDate, "end", input.LeaveEndDate)

		result, err := sender.SendLeaveRequest(ctx, logicapp.LeaveRequestEmail{
			EmployeeName:   employeeName,
			EmployeeEmail:  employeeEmail,
			StartDate:      input.LeaveStartDate,
			EndDate:        input.LeaveEndDate,
			Reason:         input.LeaveReason,
			ManagerEmail:   input.ManagerEmail,
			CalendarStatus: input.CalendarStatus,
			CallbackURL:    input.CallbackURL,
		})
		if err != nil {
			logger.Error("leave approval request failed", "error", err)
			return RequestLeaveOutput{}, toolsutil.NewToolError("execution_error", err.Error())
		}

		return RequestLeaveOutput{
			Status:     result.Status,
			StatusCode: result.StatusCode,
			Message:    "Approval request sent to " + input.ManagerEmail + ". The decision will arrive as a notification.",
		}, nil
	}
}

// NameFromUPN derives a display name from an email-style UPN, turning
// "john.doe@contoso.com" into "John Doe".
func NameFromUPN(upn string) string {
	prefix, _, _ := strings.Cut(upn, "@")
	prefix = strings.NewReplacer(".", " ", "_", " ").Replace(prefix)
	words := strings.Fields(prefix)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
