package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Tracker) {
	t.Helper()
	tracker := NewTracker(Config{CallbackBaseURL: "http://localhost:5000"})
	srv := httptest.NewServer(NewServer(tracker, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, tracker
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCallbackApproves(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Register("abc-123", leaveDetails())

	resp, body := postJSON(t, srv.URL+"/api/approval/callback/abc-123",
		`{"status":"approved","selectedOption":"Approve","message":"Enjoy!"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Contains(t, body["message"], "abc-123")

	state, rec, err := tracker.Status("abc-123")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
	assert.Equal(t, StatusApproved, rec.Status)
}

func TestCallbackMalformedJSON(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Register("abc-123", leaveDetails())

	resp, body := postJSON(t, srv.URL+"/api/approval/callback/abc-123", `{"status": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])

	// A malformed body must not consume the pending request.
	assert.Equal(t, 1, tracker.PendingCount())
}

func TestCallbackUnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/approval/callback/nope",
		`{"status":"approved"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "nope")
}

func TestCallbackOversizedBody(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Register("abc-123", leaveDetails())

	huge := `{"status":"approved","message":"` + strings.Repeat("x", maxCallbackBodySize+1) + `"}`
	resp, _ := postJSON(t, srv.URL+"/api/approval/callback/abc-123", huge)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Register("abc-123", leaveDetails())

	resp, err := http.Get(srv.URL + "/api/approval/status/abc-123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pending", body["approval_status"])

	resp2, err := http.Get(srv.URL + "/api/approval/status/missing")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestNotificationsEndpoints(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Register("abc-123", leaveDetails())
	_, err := tracker.Resolve("abc-123", "rejected", "Reject", "short staffed")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/approval/notifications")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status           string         `json:"status"`
		HasNotifications bool           `json:"has_notifications"`
		Notifications    []Notification `json:"notifications"`
		Count            int            `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.HasNotifications)
	require.Equal(t, 1, body.Count)
	assert.Contains(t, body.Notifications[0].Message, "REJECTED")

	// Clearing stops re-delivery inside the retention window.
	respClear, clearBody := postJSON(t, srv.URL+"/api/approval/notifications/clear", `{}`)
	assert.Equal(t, http.StatusOK, respClear.StatusCode)
	assert.Equal(t, "success", clearBody["status"])

	resp3, err := http.Get(srv.URL + "/api/approval/notifications")
	require.NoError(t, err)
	defer resp3.Body.Close()
	var after map[string]any
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&after))
	assert.Equal(t, false, after["has_notifications"])
}

func TestServerStartAndShutdown(t *testing.T) {
	tracker := NewTracker(Config{})
	server := NewServer(tracker, nil)

	require.NoError(t, server.Start("127.0.0.1:0"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}
