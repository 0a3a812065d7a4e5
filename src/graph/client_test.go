package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		TokenSource: StaticTokenSource("test-token"),
		DefaultUser: "alice@contoso.com",
	})
}

func TestReadSchedule(t *testing.T) {
	var gotPath, gotPrefer, gotAuth string
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotPrefer = r.Header.Get("Prefer")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(CalendarView{Value: []Event{
			{ID: "ev1", Subject: "Standup"},
			{ID: "ev2", Subject: "Review"},
		}})
	})

	view, err := client.ReadSchedule(context.Background(), ReadScheduleParams{
		StartISO:     "2025-11-20T09:00:00Z",
		EndISO:       "2025-11-20T18:00:00Z",
		TimezoneName: "Singapore Standard Time",
	})
	require.NoError(t, err)
	require.Len(t, view.Value, 2)
	assert.Equal(t, "Standup", view.Value[0].Subject)

	assert.Equal(t, "/users/alice@contoso.com/calendarView", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, `outlook.timezone="Singapore Standard Time"`, gotPrefer)
	assert.Equal(t, []string{"2025-11-20T09:00:00.000Z"}, gotQuery["startDateTime"])
	assert.Equal(t, []string{"10"}, gotQuery["$top"])
	assert.Equal(t, []string{"id,subject,start,end,location,organizer"}, gotQuery["$select"])
}

func TestReadScheduleValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be reached")
	})

	tests := []struct {
		name   string
		params ReadScheduleParams
		kind   string
	}{
		{
			name:   "bad datetime",
			params: ReadScheduleParams{StartISO: "tomorrow", EndISO: "2025-11-20T18:00:00Z"},
			kind:   KindValidationError,
		},
		{
			name: "disallowed select field",
			params: ReadScheduleParams{
				StartISO: "2025-11-20T09:00:00Z",
				EndISO:   "2025-11-20T18:00:00Z",
				Select:   []string{"subject", "body"},
			},
			kind: KindValidationError,
		},
		{
			name: "top above cap",
			params: ReadScheduleParams{
				StartISO: "2025-11-20T09:00:00Z",
				EndISO:   "2025-11-20T18:00:00Z",
				Top:      1001,
			},
			kind: KindValidationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ReadSchedule(context.Background(), tt.params)
			require.Error(t, err)
			gerr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, tt.kind, gerr.Kind)
		})
	}
}

func TestReadScheduleStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{http.StatusUnauthorized, KindAuthenticationFailed},
		{http.StatusForbidden, KindPermissionDenied},
		{http.StatusNotFound, KindUserNotFound},
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusTooManyRequests, KindRateLimitExceeded},
		{http.StatusServiceUnavailable, KindServiceUnavailable},
		{http.StatusBadGateway, KindGraphAPIError},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.ReadSchedule(context.Background(), ReadScheduleParams{
				StartISO: "2025-11-20T09:00:00Z",
				EndISO:   "2025-11-20T18:00:00Z",
			})
			require.Error(t, err)
			gerr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, tt.kind, gerr.Kind)
		})
	}
}

func TestCreateMeeting(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/alice@contoso.com/events", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Event{ID: "ev-new", WebLink: "https://outlook.example/ev-new"})
	})

	created, err := client.CreateMeeting(context.Background(), CreateMeetingParams{
		Subject:   "Planning",
		StartISO:  "2025-11-21T10:00:00",
		EndISO:    "2025-11-21T11:00:00",
		Attendees: []string{"bob@contoso.com"},
		Location:  "Room 4",
	})
	require.NoError(t, err)
	assert.Equal(t, "created", created.Status)
	assert.Equal(t, "ev-new", created.EventID)
	assert.Equal(t, "https://outlook.example/ev-new", created.WebLink)
	assert.Equal(t, "Planning", created.Subject)

	assert.Equal(t, "Planning", gotBody["subject"])
	assert.Equal(t, true, gotBody["isOnlineMeeting"])
	assert.Equal(t, "teamsForBusiness", gotBody["onlineMeetingProvider"])
	attendees := gotBody["attendees"].([]any)
	require.Len(t, attendees, 1)
}

func TestCreateMeetingValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be reached")
	})

	tests := []struct {
		name   string
		params CreateMeetingParams
	}{
		{
			name:   "empty subject",
			params: CreateMeetingParams{Subject: "  ", StartISO: "2025-11-21T10:00:00Z", EndISO: "2025-11-21T11:00:00Z"},
		},
		{
			name:   "start after end",
			params: CreateMeetingParams{Subject: "X", StartISO: "2025-11-21T12:00:00Z", EndISO: "2025-11-21T11:00:00Z"},
		},
		{
			name: "bad attendee email",
			params: CreateMeetingParams{
				Subject: "X", StartISO: "2025-11-21T10:00:00Z", EndISO: "2025-11-21T11:00:00Z",
				Attendees: []string{"not-an-email"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateMeeting(context.Background(), tt.params)
			require.Error(t, err)
			gerr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, KindValidationError, gerr.Kind)
		})
	}
}
