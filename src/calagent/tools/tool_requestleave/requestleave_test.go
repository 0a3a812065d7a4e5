package tool_requestleave

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/logicapp"
)

type fakeSender struct {
	sent   []logicapp.LeaveRequestEmail
	result *logicapp.Result
	err    error
}

func (f *fakeSender) SendLeaveRequest(ctx context.Context, email logicapp.LeaveRequestEmail) (*logicapp.Result, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func callTool(t *testing.T, sender LeaveRequestSender, args map[string]any) *aisdk.ToolResponse {
	t.Helper()
	tool, err := Tool(sender, Config{DefaultUserUPN: "john.doe@contoso.com"})
	require.NoError(t, err)

	raw, err := json.Marshal(args)
	require.NoError(t, err)

	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		ID:   "call_1",
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      Name,
			Arguments: raw,
		},
	})
	require.NoError(t, err)
	return resp
}

func TestRequestLeaveFillsEmployeeDefaults(t *testing.T) {
	sender := &fakeSender{result: &logicapp.Result{Status: "success", StatusCode: 202}}

	resp := callTool(t, sender, map[string]any{
		"leave_start_date": "2025-11-20",
		"leave_end_date":   "2025-11-22",
		"leave_reason":     "family event",
		"manager_email":    "boss@contoso.com",
	})

	require.False(t, resp.IsError)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "John Doe", sender.sent[0].EmployeeName)
	assert.Equal(t, "john.doe@contoso.com", sender.sent[0].EmployeeEmail)

	var out RequestLeaveOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, 202, out.StatusCode)
	assert.Contains(t, out.Message, "boss@contoso.com")
}

func TestRequestLeaveRejectsBadDates(t *testing.T) {
	sender := &fakeSender{result: &logicapp.Result{Status: "success"}}

	resp := callTool(t, sender, map[string]any{
		"leave_start_date": "20-11-2025",
		"leave_end_date":   "2025-11-22",
		"leave_reason":     "family event",
		"manager_email":    "boss@contoso.com",
	})

	require.True(t, resp.IsError)
	assert.Empty(t, sender.sent)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(resp.Content, &payload))
	assert.Equal(t, "validation_error", payload["error"])
}

func TestRequestLeaveRejectsBadManagerEmail(t *testing.T) {
	sender := &fakeSender{result: &logicapp.Result{Status: "success"}}

	resp := callTool(t, sender, map[string]any{
		"leave_start_date": "2025-11-20",
		"leave_end_date":   "2025-11-22",
		"leave_reason":     "family event",
		"manager_email":    "not-an-email",
	})

	require.True(t, resp.IsError)
	assert.Empty(t, sender.sent)
}

func TestNameFromUPN(t *testing.T) {
	tests := []struct {
		upn  string
		want string
	}{
		{"john.doe@contoso.com", "John Doe"},
		{"jane_tan@contoso.com", "Jane Tan"},
		{"admin@contoso.com", "Admin"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameFromUPN(tt.upn))
	}
}
