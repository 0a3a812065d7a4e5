package calagent

import (
	"fmt"
	"strings"
	"time"
)

// Static prompt templates
const (
	mainPromptTemplate = `You are a professional calendar and leave assistant that helps users manage their schedules and time off.

For availability questions, call read_schedule with appropriate time windows. When booking meetings, call create_meeting with the requested details. Always provide clear, concise responses with timezone information. Handle errors gracefully and inform users of any issues.
`

	datesSection = `# Dates
The current date is %s. When users ask about "next week", "tomorrow" or other relative dates, call get_current_datetime and calculate the appropriate ISO datetime strings before making tool calls.
`

	approvalSection = `# Approvals
Leave requests and approvals are asynchronous. When a user asks for time off, check their calendar for conflicts with read_schedule, then call request_leave_approval with the conflict summary as calendar_status. The manager's decision does NOT arrive in the same turn; tell the user the request was sent and that they can ask later whether it was decided. When the user asks about a decision, call check_notifications.
`

	hrSection = `# HR system
For leave balances, submissions, and document actions use the HR tools. Always call hr_login first and pass its token and devid to every subsequent HR call. Login as "submitter" for employee actions and "approver" for manager actions. Approve and reject need document references from leave_listing.
`
)

// SystemPromptConfig controls prompt assembly.
type SystemPromptConfig struct {
	// Now supplies the date baked into the prompt. Defaults to time.Now.
	Now func() time.Time
	// IncludeHR adds the HR workflow section.
	IncludeHR bool
}

// BuildSystemPrompt assembles the agent instructions.
func BuildSystemPrompt(cfg SystemPromptConfig) string {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var b strings.Builder
	b.WriteString(mainPromptTemplate)
	b.WriteString("\n")
	fmt.Fprintf(&b, datesSection, now().Format("January 2, 2006"))
	b.WriteString("\n")
	b.WriteString(approvalSection)
	if cfg.IncludeHR {
		b.WriteString("\n")
		b.WriteString(hrSection)
	}
	return b.String()
}
