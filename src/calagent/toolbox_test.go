package calagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/agent"
	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/approval"
	"github.com/elee1766/calagent/src/calagent/tools"
	"github.com/elee1766/calagent/src/logicapp"
)

func TestBuildToolboxRequiresTracker(t *testing.T) {
	_, err := BuildToolbox(Backends{})
	require.Error(t, err)
}

func TestBuildToolboxMinimal(t *testing.T) {
	tracker := approval.NewTracker(approval.Config{})
	toolbox, err := BuildToolbox(Backends{Tracker: tracker})
	require.NoError(t, err)

	assert.True(t, toolbox.HasTool(tools.CurrentDatetimeName))
	assert.True(t, toolbox.HasTool(tools.CheckNotificationsName))
	assert.False(t, toolbox.HasTool(tools.ReadScheduleName))
	assert.False(t, toolbox.HasTool(tools.HRLoginName))
}

func TestBuildToolboxWithNotifier(t *testing.T) {
	tracker := approval.NewTracker(approval.Config{})
	notifier := logicapp.NewClient(logicapp.Config{URL: "http://example.invalid"})

	toolbox, err := BuildToolbox(Backends{Tracker: tracker, Notifier: notifier})
	require.NoError(t, err)

	assert.True(t, toolbox.HasTool(tools.RequestLeaveName))
	assert.True(t, toolbox.HasTool(tools.ApprovalEmailName))
	assert.Len(t, toolbox.Definitions(), 4)
}

func toolCall(id, name string, args any) aisdk.ToolCall {
	raw, _ := json.Marshal(args)
	return aisdk.ToolCall{
		ID:   id,
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      name,
			Arguments: raw,
		},
	}
}

// End to end: a leave request registers an approval, the manager's callback
// resolves it, and the decision surfaces through check_notifications.
func TestLeaveApprovalRoundTrip(t *testing.T) {
	var sent logicapp.Payload
	workflow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer workflow.Close()

	tracker := approval.NewTracker(approval.Config{CallbackBaseURL: "http://localhost:5000"})
	toolbox, err := BuildToolbox(Backends{
		Tracker:        tracker,
		Notifier:       logicapp.NewClient(logicapp.Config{URL: workflow.URL}),
		DefaultUserUPN: "john.doe@contoso.com",
	})
	require.NoError(t, err)

	// Turn one: the model requests leave approval.
	outputs := agent.Dispatch(context.Background(), toolbox, nil, []aisdk.ToolCall{
		toolCall("call_1", tools.RequestLeaveName, map[string]string{
			"leave_start_date": "2025-11-20",
			"leave_end_date":   "2025-11-22",
			"leave_reason":     "family vacation",
			"manager_email":    "manager@contoso.com",
		}),
	})
	require.Len(t, outputs, 1)

	var requestResult map[string]any
	require.NoError(t, json.Unmarshal([]byte(outputs[0].Output), &requestResult))
	assert.Equal(t, "success", requestResult["status"])

	// The approval email carried a callback URL minted by the tracker.
	require.Contains(t, sent.CallbackURL, "/api/approval/callback/")
	assert.Equal(t, "manager@contoso.com", sent.Message.To)
	assert.Contains(t, sent.Message.BodyText, "John Doe")
	assert.Contains(t, sent.Message.BodyText, "2025-11-20 to 2025-11-22")

	approvalID := sent.CallbackURL[strings.LastIndex(sent.CallbackURL, "/")+1:]
	require.NotEmpty(t, approvalID)
	assert.Equal(t, 1, tracker.PendingCount())

	// The manager approves through the callback ingress.
	ingress := httptest.NewServer(approval.NewServer(tracker, nil).Routes())
	defer ingress.Close()

	decision, _ := json.Marshal(map[string]string{"status": "approved", "message": "Enjoy!"})
	resp, err := http.Post(
		fmt.Sprintf("%s/api/approval/callback/%s", ingress.URL, approvalID),
		"application/json", bytes.NewReader(decision))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Turn two: the decision shows up exactly once via check_notifications.
	outputs = agent.Dispatch(context.Background(), toolbox, nil, []aisdk.ToolCall{
		toolCall("call_2", tools.CheckNotificationsName, map[string]string{}),
	})
	require.Len(t, outputs, 1)

	var checkResult struct {
		Status           string                  `json:"status"`
		HasNotifications bool                    `json:"has_notifications"`
		Notifications    []approval.Notification `json:"notifications"`
		Count            int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(outputs[0].Output), &checkResult))
	assert.True(t, checkResult.HasNotifications)
	require.Equal(t, 1, checkResult.Count)

	notification := checkResult.Notifications[0]
	assert.Equal(t, approvalID, notification.ApprovalID)
	assert.Equal(t, "APPROVED", notification.Status)
	assert.Contains(t, notification.Message, "APPROVED")
	assert.Contains(t, notification.Message, "2025-11-20 to 2025-11-22")
	assert.Contains(t, notification.Message, "Enjoy!")
}
