package tool_checknotifications

import (
	"context"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/approval"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
)

// Tool name constant
const Name = "check_notifications"

const checkNotificationsPrompt = `Check for pending approval decision notifications. Returns decisions received since the last check. Call this when the user asks whether an approval has come back.`

// NotificationSource drains pending approval notifications.
type NotificationSource interface {
	Drain() []approval.Notification
}

// CheckNotificationsInput represents the parameters for check_notifications
type CheckNotificationsInput struct{}

// CheckNotificationsOutput represents the response from check_notifications
type CheckNotificationsOutput struct {
	Status           string                  `json:"status"`
	HasNotifications bool                    `json:"has_notifications"`
	Notifications    []approval.Notification `json:"notifications"`
	Count            int                     `json:"count"`
}

// Tool returns the check_notifications tool definition using GenericTool
func Tool(source NotificationSource) (agent.Tool, error) {
	return agent.NewGenericTool(Name, checkNotificationsPrompt, makeCheckNotificationsHandler(source))
}

func makeCheckNotificationsHandler(source NotificationSource) func(ctx context.Context, input CheckNotificationsInput) (CheckNotificationsOutput, error) {
	return func(ctx context.Context, input CheckNotificationsInput) (CheckNotificationsOutput, error) {
		notifications := source.Drain()
		toolsutil.GetLogger().Debug("checked notifications", "count", len(notifications))

		if notifications == nil {
			notifications = []approval.Notification{}
		}
		return CheckNotificationsOutput{
			Status:           "success",
			HasNotifications: len(notifications) > 0,
			Notifications:    notifications,
			Count:            len(notifications),
		}, nil
	}
}
