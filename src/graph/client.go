// Package graph is the calendar backend client: app-only calendar reads and
// event creation against /users/{UPN} resources (never /me).
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	defaultTopCap  = 1000
	defaultTop     = 10
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Select fields accepted by ReadSchedule.
var allowedSelectFields = map[string]bool{
	"id": true, "subject": true, "start": true, "end": true,
	"location": true, "attendees": true, "organizer": true, "bodyPreview": true,
}

// Config holds calendar client construction options.
type Config struct {
	BaseURL     string
	TokenSource TokenSource
	// DefaultUser is the mailbox targeted when a call omits the user.
	DefaultUser string
	// DefaultTimezone applies when a call omits the timezone. Defaults to UTC.
	DefaultTimezone string
	Logger          *slog.Logger
}

// Client calls the calendar backend.
type Client struct {
	baseURL    string
	tokens     TokenSource
	defaultUPN string
	defaultTZ  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a calendar backend client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tz := cfg.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     cfg.TokenSource,
		defaultUPN: cfg.DefaultUser,
		defaultTZ:  tz,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "graph_client"),
	}
}

// DateTimeTimeZone is the backend's split datetime representation.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Event is one calendar event.
type Event struct {
	ID          string            `json:"id"`
	Subject     string            `json:"subject"`
	Start       *DateTimeTimeZone `json:"start,omitempty"`
	End         *DateTimeTimeZone `json:"end,omitempty"`
	Location    json.RawMessage   `json:"location,omitempty"`
	Organizer   json.RawMessage   `json:"organizer,omitempty"`
	Attendees   json.RawMessage   `json:"attendees,omitempty"`
	BodyPreview string            `json:"bodyPreview,omitempty"`
	WebLink     string            `json:"webLink,omitempty"`
}

// CalendarView is the result of a schedule read.
type CalendarView struct {
	Value []Event `json:"value"`
}

// ReadScheduleParams selects the window and shape of a schedule read.
type ReadScheduleParams struct {
	UserUPN      string   `json:"user_upn,omitempty"`
	StartISO     string   `json:"start_iso,omitempty"`
	EndISO       string   `json:"end_iso,omitempty"`
	TimezoneName string   `json:"timezone_name,omitempty"`
	Select       []string `json:"select,omitempty"`
	Top          int      `json:"top,omitempty"`
}

// ReadSchedule returns events in [start, end] for the user's default
// calendar. Failures are *Error values carrying a taxonomy kind.
func (c *Client) ReadSchedule(ctx context.Context, params ReadScheduleParams) (*CalendarView, error) {
	user := params.UserUPN
	if user == "" {
		user = c.defaultUPN
	}
	if user == "" {
		return nil, newError(KindValidationError, "user_upn is required")
	}

	startISO, endISO := params.StartISO, params.EndISO
	if startISO == "" || endISO == "" {
		now := time.Now().UTC()
		startISO = now.Format(time.RFC3339)
		endISO = now.AddDate(0, 0, 7).Format(time.RFC3339)
	}
	start, err := ParseISODatetime(startISO)
	if err != nil {
		return nil, newError(KindValidationError, "invalid ISO datetime format for start_iso or end_iso")
	}
	end, err := ParseISODatetime(endISO)
	if err != nil {
		return nil, newError(KindValidationError, "invalid ISO datetime format for start_iso or end_iso")
	}

	if params.Top < 0 || params.Top > defaultTopCap {
		return nil, newError(KindValidationError, fmt.Sprintf("top must be a positive integer <= %d", defaultTopCap))
	}
	top := params.Top
	if top == 0 {
		top = defaultTop
	}

	selectFields := params.Select
	if len(selectFields) == 0 {
		selectFields = []string{"id", "subject", "start", "end", "location", "organizer"}
	} else {
		var invalid []string
		for _, f := range selectFields {
			if !allowedSelectFields[f] {
				invalid = append(invalid, f)
			}
		}
		if len(invalid) > 0 {
			return nil, newError(KindValidationError, fmt.Sprintf("invalid select fields: %s", strings.Join(invalid, ", ")))
		}
	}

	tz := params.TimezoneName
	if tz == "" {
		tz = c.defaultTZ
	}

	// The backend wants UTC window bounds regardless of display timezone.
	q := url.Values{}
	q.Set("startDateTime", start.UTC().Format("2006-01-02T15:04:05.000Z"))
	q.Set("endDateTime", end.UTC().Format("2006-01-02T15:04:05.000Z"))
	q.Set("$select", strings.Join(selectFields, ","))
	q.Set("$top", fmt.Sprintf("%d", top))

	endpoint := fmt.Sprintf("%s/users/%s/calendarView?%s", c.baseURL, url.PathEscape(user), q.Encode())
	c.logger.Debug("reading schedule", "user", user, "start", startISO, "end", endISO, "tz", tz)

	headers := map[string]string{"Prefer": fmt.Sprintf("outlook.timezone=%q", tz)}

	var view CalendarView
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, headers, &view, user); err != nil {
		return nil, err
	}

	c.logger.Debug("schedule read", "user", user, "events", len(view.Value))
	return &view, nil
}

// CreateMeetingParams describes the event to create.
type CreateMeetingParams struct {
	UserUPN               string   `json:"user_upn,omitempty"`
	Subject               string   `json:"subject"`
	StartISO              string   `json:"start_iso"`
	EndISO                string   `json:"end_iso"`
	TimezoneName          string   `json:"timezone_name,omitempty"`
	Attendees             []string `json:"attendees,omitempty"`
	BodyHTML              string   `json:"body_html,omitempty"`
	Location              string   `json:"location,omitempty"`
	AllowNewTimeProposals *bool    `json:"allow_new_time_proposals,omitempty"`
	IsOnlineMeeting       *bool    `json:"is_online_meeting,omitempty"`
}

// CreatedMeeting is the result of a successful event creation.
type CreatedMeeting struct {
	Status  string `json:"status"`
	EventID string `json:"eventId"`
	WebLink string `json:"webLink"`
	Subject string `json:"subject"`
}

// CreateMeeting creates an event on the user's default calendar.
func (c *Client) CreateMeeting(ctx context.Context, params CreateMeetingParams) (*CreatedMeeting, error) {
	user := params.UserUPN
	if user == "" {
		user = c.defaultUPN
	}
	if user == "" {
		return nil, newError(KindValidationError, "user_upn is required")
	}
	if strings.TrimSpace(params.Subject) == "" {
		return nil, newError(KindValidationError, "subject is required and cannot be empty")
	}
	if params.StartISO == "" || params.EndISO == "" {
		return nil, newError(KindValidationError, "start_iso and end_iso are required")
	}
	start, err := ParseISODatetime(params.StartISO)
	if err != nil {
		return nil, newError(KindValidationError, "invalid ISO datetime format for start_iso or end_iso")
	}
	end, err := ParseISODatetime(params.EndISO)
	if err != nil {
		return nil, newError(KindValidationError, "invalid ISO datetime format for start_iso or end_iso")
	}
	if !start.Before(end) {
		return nil, newError(KindValidationError, "start_iso must be before end_iso")
	}
	var badEmails []string
	for _, a := range params.Attendees {
		if !emailPattern.MatchString(a) {
			badEmails = append(badEmails, a)
		}
	}
	if len(badEmails) > 0 {
		return nil, newError(KindValidationError, fmt.Sprintf("invalid email addresses: %s", strings.Join(badEmails, ", ")))
	}

	tz := params.TimezoneName
	if tz == "" {
		tz = c.defaultTZ
	}

	event := map[string]any{
		"subject":               params.Subject,
		"start":                 DateTimeTimeZone{DateTime: params.StartISO, TimeZone: tz},
		"end":                   DateTimeTimeZone{DateTime: params.EndISO, TimeZone: tz},
		"allowNewTimeProposals": params.AllowNewTimeProposals == nil || *params.AllowNewTimeProposals,
	}
	if params.BodyHTML != "" {
		event["body"] = map[string]string{"contentType": "HTML", "content": params.BodyHTML}
	}
	if params.Location != "" {
		event["location"] = map[string]string{"displayName": params.Location}
	}
	if len(params.Attendees) > 0 {
		attendees := make([]map[string]any, 0, len(params.Attendees))
		for _, a := range params.Attendees {
			attendees = append(attendees, map[string]any{
				"emailAddress": map[string]string{"address": a},
				"type":         "required",
			})
		}
		event["attendees"] = attendees
	}
	if params.IsOnlineMeeting == nil || *params.IsOnlineMeeting {
		event["isOnlineMeeting"] = true
		event["onlineMeetingProvider"] = "teamsForBusiness"
	}

	endpoint := fmt.Sprintf("%s/users/%s/events", c.baseURL, url.PathEscape(user))
	c.logger.Debug("creating meeting", "user", user, "subject", params.Subject)

	var created Event
	if err := c.doJSON(ctx, http.MethodPost, endpoint, event, nil, &created, user); err != nil {
		return nil, err
	}

	c.logger.Info("event created", "event_id", created.ID)
	return &CreatedMeeting{
		Status:  "created",
		EventID: created.ID,
		WebLink: created.WebLink,
		Subject: params.Subject,
	}, nil
}

// doJSON performs one backend call, mapping HTTP failures into taxonomy
// errors.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, headers map[string]string, out any, user string) error {
	if c.tokens == nil {
		return newError(KindAuthenticationFailed, "no token source configured")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if gerr, ok := err.(*Error); ok {
			return gerr
		}
		return newError(KindAuthenticationFailed, fmt.Sprintf("failed to acquire token: %v", err))
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(KindUnexpectedError, fmt.Sprintf("failed to marshal request: %v", err))
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return newError(KindUnexpectedError, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError(KindGraphAPIError, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(KindGraphAPIError, fmt.Sprintf("failed to decode response: %v", err))
		}
		return nil
	}

	text, _ := io.ReadAll(resp.Body)
	c.logger.Error("backend call failed", "status", resp.StatusCode, "body", string(text))

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter == "" {
			retryAfter = "unknown"
		}
		return newError(KindRateLimitExceeded, fmt.Sprintf("Graph API rate limit exceeded. Retry after: %s seconds", retryAfter))
	case http.StatusForbidden:
		return newError(KindPermissionDenied, "App lacks required Application permissions.")
	case http.StatusUnauthorized:
		return newError(KindAuthenticationFailed, "Authentication failed. Check credentials.")
	case http.StatusNotFound:
		return newError(KindUserNotFound, fmt.Sprintf("User %s not found.", user))
	case http.StatusBadRequest:
		return newError(KindBadRequest, "Invalid request parameters.")
	case http.StatusServiceUnavailable:
		return newError(KindServiceUnavailable, "Graph API service temporarily unavailable")
	default:
		return newError(KindGraphAPIError, fmt.Sprintf("Graph API error %d: %s", resp.StatusCode, string(text)))
	}
}

// ParseISODatetime accepts RFC 3339 datetimes, tolerating a trailing "Z".
func ParseISODatetime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}
	// Accept a bare date-time without zone, interpreted as UTC.
	t, err2 := time.Parse("2006-01-02T15:04:05", value)
	if err2 == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}
