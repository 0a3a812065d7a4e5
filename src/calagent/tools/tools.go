package tools

// Barrel-style re-exports so the toolbox builder can reach every tool
// without importing each package individually.

import (
	"github.com/elee1766/calagent/src/agent"
	tool_approvalemail "github.com/elee1766/calagent/src/calagent/tools/tool_approvalemail"
	tool_checknotifications "github.com/elee1766/calagent/src/calagent/tools/tool_checknotifications"
	tool_createmeeting "github.com/elee1766/calagent/src/calagent/tools/tool_createmeeting"
	tool_currentdatetime "github.com/elee1766/calagent/src/calagent/tools/tool_currentdatetime"
	tool_hrentitlement "github.com/elee1766/calagent/src/calagent/tools/tool_hrentitlement"
	tool_hrlogin "github.com/elee1766/calagent/src/calagent/tools/tool_hrlogin"
	tool_leaveaction "github.com/elee1766/calagent/src/calagent/tools/tool_leaveaction"
	tool_leavelisting "github.com/elee1766/calagent/src/calagent/tools/tool_leavelisting"
	tool_leavesubmit "github.com/elee1766/calagent/src/calagent/tools/tool_leavesubmit"
	tool_readschedule "github.com/elee1766/calagent/src/calagent/tools/tool_readschedule"
	tool_requestleave "github.com/elee1766/calagent/src/calagent/tools/tool_requestleave"
)

// Tool name constants - re-exported from individual packages
const (
	ReadScheduleName       = tool_readschedule.Name
	CreateMeetingName      = tool_createmeeting.Name
	CurrentDatetimeName    = tool_currentdatetime.Name
	RequestLeaveName       = tool_requestleave.Name
	ApprovalEmailName      = tool_approvalemail.Name
	CheckNotificationsName = tool_checknotifications.Name
	HRLoginName            = tool_hrlogin.Name
	EntitlementName        = tool_hrentitlement.Name
	LeaveListingName       = tool_leavelisting.Name
	LeaveSubmitName        = tool_leavesubmit.Name
	LeaveActionName        = tool_leaveaction.Name
)

// Calendar tools
func ReadScheduleTool(reader tool_readschedule.ScheduleReader) (agent.Tool, error) {
	return tool_readschedule.Tool(reader)
}
func CreateMeetingTool(creator tool_createmeeting.MeetingCreator) (agent.Tool, error) {
	return tool_createmeeting.Tool(creator)
}
func CurrentDatetimeTool() (agent.Tool, error) { return tool_currentdatetime.Tool() }

// Approval workflow tools
func RequestLeaveTool(sender tool_requestleave.LeaveRequestSender, cfg tool_requestleave.Config) (agent.Tool, error) {
	return tool_requestleave.Tool(sender, cfg)
}
func ApprovalEmailTool(sender tool_approvalemail.EmailSender) (agent.Tool, error) {
	return tool_approvalemail.Tool(sender)
}
func CheckNotificationsTool(source tool_checknotifications.NotificationSource) (agent.Tool, error) {
	return tool_checknotifications.Tool(source)
}

// HR tools
func HRLoginTool(auth tool_hrlogin.Authenticator) (agent.Tool, error) {
	return tool_hrlogin.Tool(auth)
}
func EntitlementTool(reader tool_hrentitlement.EntitlementReader, cfg tool_hrentitlement.Config) (agent.Tool, error) {
	return tool_hrentitlement.Tool(reader, cfg)
}
func LeaveListingTool(lister tool_leavelisting.LeaveLister) (agent.Tool, error) {
	return tool_leavelisting.Tool(lister)
}
func LeaveSubmitTool(submitter tool_leavesubmit.LeaveSubmitter, cfg tool_leavesubmit.Config) (agent.Tool, error) {
	return tool_leavesubmit.Tool(submitter, cfg)
}
func LeaveActionTool(actor tool_leaveaction.LeaveActor) (agent.Tool, error) {
	return tool_leaveaction.Tool(actor)
}
