package foundry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/aisdk"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(aisdk.ClientConfig{
		Endpoint:   srv.URL,
		APIKey:     "test-key",
		RetryCount: 2,
		RetryDelay: time.Millisecond,
	})
}

func TestCreateAgent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/assistants", r.URL.Path)
		require.Equal(t, "v1", r.URL.Query().Get("api-version"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req aisdk.CreateAgentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "CalendarAgent", req.Name)

		json.NewEncoder(w).Encode(map[string]any{"id": "agent-1", "name": req.Name, "model": req.Model})
	})

	agent, err := client.CreateAgent(context.Background(), &aisdk.CreateAgentRequest{
		Name:  "CalendarAgent",
		Model: "gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, "agent-1", agent.ID)
}

func TestListMessagesDecodesContentParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads/thread-1/messages", r.URL.Path)
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[
			{"id":"msg-2","role":"assistant","content":[{"type":"text","text":{"value":"You are free Thursday."}}],"created_at":1758000002},
			{"id":"msg-1","role":"user","content":[{"type":"text","text":{"value":"am I free?"}}],"created_at":1758000001}
		]}`))
	})

	messages, err := client.ListMessages(context.Background(), "thread-1", 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "assistant", messages[0].Role)
	assert.Equal(t, "You are free Thursday.", messages[0].Content)
}

func TestGetRunDecodesRequiredAction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id":"run-1","thread_id":"thread-1","assistant_id":"agent-1","status":"requires_action",
			"required_action":{"type":"submit_tool_outputs","submit_tool_outputs":{"tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"read_schedule","arguments":"{\"start_iso\":\"2025-11-20T09:00:00Z\"}"}}
			]}}
		}`))
	})

	run, err := client.GetRun(context.Background(), "thread-1", "run-1")
	require.NoError(t, err)
	assert.Equal(t, aisdk.RunStatusRequiresAction, run.Status)
	require.NotNil(t, run.RequiredAction)
	require.Len(t, run.RequiredAction.ToolCalls, 1)
	assert.Equal(t, "read_schedule", run.RequiredAction.ToolCalls[0].Function.Name)
}

func TestSubmitToolOutputs(t *testing.T) {
	var got map[string][]aisdk.ToolOutput
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads/thread-1/runs/run-1/submit_tool_outputs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"run-1","status":"in_progress"}`))
	})

	run, err := client.SubmitToolOutputs(context.Background(), "thread-1", "run-1", []aisdk.ToolOutput{
		{ToolCallID: "call_1", Output: `{"status":"success"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, aisdk.RunStatusInProgress, run.Status)
	require.Len(t, got["tool_outputs"], 1)
	assert.Equal(t, "call_1", got["tool_outputs"][0].ToolCallID)
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"thread-1"}`))
	})

	thread, err := client.CreateThread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread-1", thread.ID)
	assert.Equal(t, 2, attempts)
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit","code":"rate_limit_exceeded","message":"Too many requests"}}`))
	})

	_, err := client.CreateThread(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsRateLimit())
	assert.Equal(t, "rate_limit_exceeded", apiErr.Code)
}

func TestDeleteAgent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/assistants/agent-1", r.URL.Path)
		w.Write([]byte(`{"id":"agent-1","deleted":true}`))
	})
	require.NoError(t, client.DeleteAgent(context.Background(), "agent-1"))
}
