// Package flexhr is the HR backend client for leave management: device
// login, entitlement queries, leave submission, and approval actions.
package flexhr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://dev.renecosystem.com/reneco_int/api"

// Device constants sent with every login. These identify the registered
// mobile device on the development tenant.
var devConstants = map[string]string{
	"devid":      "990000862471854",
	"buid":       "a33a4b19-ae4d-4dbf-b5b2-c6ae513a48e3",
	"appver":     "10.2.1",
	"langid":     "en-US",
	"tz":         "8",
	"colastsync": "2017-11-15 19:45:12",
	"emplastsync": "2017-11-15 19:45:12",
	"usrlastsync": "2017-11-15 19:45:12",
}

// Roles accepted by Login.
const (
	RoleSubmitter = "submitter"
	RoleApprover  = "approver"
)

// Leave action tokens.
const (
	ActionWithdraw = "5"
	ActionApprove  = "6"
	ActionReject   = "8"
)

var actionNames = map[string]string{
	ActionWithdraw: "Withdraw",
	ActionApprove:  "Approve",
	ActionReject:   "Reject",
}

// The backend keeps timestamps in UTC+8.
var backendZone = time.FixedZone("UTC+8", 8*3600)

// Credentials is one login/password pair.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"pwd"`
}

// Config holds HR client construction options.
type Config struct {
	BaseURL string
	// Credentials maps a role (submitter or approver) to its login pair.
	Credentials map[string]Credentials
	Logger      *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Client calls the HR backend. All endpoints are POST with JSON bodies.
type Client struct {
	baseURL     string
	credentials map[string]Credentials
	httpClient  *http.Client
	logger      *slog.Logger
	now         func() time.Time
}

// NewClient creates an HR backend client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		baseURL:     baseURL,
		credentials: cfg.Credentials,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger.With("component", "flexhr_client"),
		now:         now,
	}
}

// Session identifies an authenticated device session. Both fields must be
// sent together on every subsequent call.
type Session struct {
	Token    string `json:"token"`
	DevID    string `json:"devid"`
	UserType string `json:"user_type"`
}

// Result wraps a backend response. Data carries the backend's JSON as-is
// so callers can surface it without reshaping.
type Result struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Login authenticates as the given role and returns the session pair.
func (c *Client) Login(ctx context.Context, role string) (*Session, error) {
	if role != RoleSubmitter && role != RoleApprover {
		return nil, fmt.Errorf("user_type must be either %q or %q", RoleSubmitter, RoleApprover)
	}
	creds, ok := c.credentials[role]
	if !ok {
		return nil, fmt.Errorf("no credentials configured for role %q", role)
	}

	payload := map[string]string{
		"login": creds.Login,
		"pwd":   creds.Password,
	}
	for k, v := range devConstants {
		payload[k] = v
	}

	data, err := c.post(ctx, "/MDP/LoginDevice", payload)
	if err != nil {
		return nil, err
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Token == "" {
		return nil, fmt.Errorf("login response did not contain token")
	}

	c.logger.Info("logged in", "role", role)
	return &Session{Token: body.Token, DevID: devConstants["devid"], UserType: role}, nil
}

// EntitlementSummaryParams selects the employee and year for a balance
// summary.
type EntitlementSummaryParams struct {
	EmployeeNum string
	Year        string
}

// EntitlementSummary returns the leave balance summary for an employee.
func (c *Client) EntitlementSummary(ctx context.Context, session *Session, params EntitlementSummaryParams) (*Result, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	year := params.Year
	if year == "" {
		year = fmt.Sprintf("%d", c.now().Year())
	}

	payload := map[string]string{
		"token":     session.Token,
		"devid":     session.DevID,
		"isrfsh":    "true",
		"empnum":    params.EmployeeNum,
		"entlyr":    year,
		"startDate": "",
	}
	data, err := c.post(ctx, "/mLeavz/LeaveEntitlementSummary", payload)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Retrieved entitlement summary for %s (%s)", params.EmployeeNum, year),
		Data:    data,
	}, nil
}

// EntitlementDetailParams selects the leave code to drill into.
type EntitlementDetailParams struct {
	EmployeeNum string
	Year        string
	LeaveCode   string
}

// EntitlementDetail returns the entitlement breakdown for one leave code.
func (c *Client) EntitlementDetail(ctx context.Context, session *Session, params EntitlementDetailParams) (*Result, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	year := params.Year
	if year == "" {
		year = fmt.Sprintf("%d", c.now().Year())
	}
	code := params.LeaveCode
	if code == "" {
		code = "#AL"
	}

	payload := map[string]string{
		"token":     session.Token,
		"devid":     session.DevID,
		"isrfsh":    "true",
		"empnum":    params.EmployeeNum,
		"entlyr":    year,
		"lvecode":   code,
		"startDate": "",
		"docref":    "",
	}
	data, err := c.post(ctx, "/mLeavz/LeaveEntitlement", payload)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Retrieved %s entitlement details for %s (%s)", code, params.EmployeeNum, year),
		Data:    data,
	}, nil
}

// LeaveListingParams bounds the listing window.
type LeaveListingParams struct {
	ViewAs   string
	DateFrom string
	DateTo   string
	// StatusFilter is a comma separated list of status codes.
	StatusFilter string
}

// LeaveListing lists leave documents in [DateFrom, DateTo]. The window
// defaults to the current calendar year.
func (c *Client) LeaveListing(ctx context.Context, session *Session, params LeaveListingParams) (*Result, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	year := c.now().Year()
	from := params.DateFrom
	if from == "" {
		from = fmt.Sprintf("%d-01-01", year)
	}
	to := params.DateTo
	if to == "" {
		to = fmt.Sprintf("%d-12-31", year)
	}
	viewAs := params.ViewAs
	if viewAs == "" {
		viewAs = "P"
	}
	statuses := params.StatusFilter
	if statuses == "" {
		statuses = "1,3,4,6,5,9"
	}

	payload := map[string]string{
		"token":      session.Token,
		"devid":      session.DevID,
		"isrfsh":     "true",
		"viewas":     viewAs,
		"statarr":    statuses,
		"ttlstatarr": "1,3",
		"dtfrm":      from,
		"dtto":       to,
		"doctyparr":  "",
		"ownnum":     "",
		"perpgcnt":   "1000",
		"nowcnt":     "1",
		"dtmodify":   c.now().Format("2006-01-02"),
	}
	data, err := c.post(ctx, "/mLeavz/LeaveListing", payload)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Retrieved leave listing from %s to %s", from, to),
		Data:    data,
	}, nil
}

// LeaveSubmitParams describes the leave request to file.
type LeaveSubmitParams struct {
	StartDate    string
	EndDate      string
	LeaveCode    string
	NumberOfDays string
	Remark       string
	SubmitterNum string
	OwnerNum     string
}

// LeaveSubmit files a new leave request as a single document.
func (c *Client) LeaveSubmit(ctx context.Context, session *Session, params LeaveSubmitParams) (*Result, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	if params.StartDate == "" {
		return nil, fmt.Errorf("start_date is required")
	}
	endDate := params.EndDate
	if endDate == "" {
		endDate = params.StartDate
	}
	code := params.LeaveCode
	if code == "" {
		code = "#AL"
	}
	days := params.NumberOfDays
	if days == "" {
		days = "1.0"
	}

	timestamp := c.now().In(backendZone).Format(time.RFC3339)
	entry := map[string]any{
		"LeaveId":             "00000000-0000-0000-0000-000000000000",
		"StartDate":           formatBackendDate(params.StartDate),
		"EndDate":             formatBackendDate(endDate),
		"StartTime":           "",
		"EndTime":             "",
		"StartTimeVal":        timestamp,
		"EndTimeVal":          timestamp,
		"LeaveCode":           code,
		"NumberOfDays":        days,
		"NumberOfHours":       "0.0",
		"DaySession":          "0",
		"EntitleYear":         c.now().Year(),
		"IsAdvance":           false,
		"ReasonCode":          "",
		"AccidentRef":         "",
		"MedicalRef":          "",
		"SubmitterRemark":     params.Remark,
		"OwnerEmployeeNo":     strings.ToUpper(params.OwnerNum),
		"SubmitterType":       "PE",
		"SlipName":            "",
		"SlipData":            "",
		"SubmitterEmployeeNo": strings.ToUpper(params.SubmitterNum),
		"LeaveCustomField":    "",
		"Attr":                "",
		"LeaveDuration":       0,
		"Platform":            2,
		"Attr1": "", "Attr2": "", "Attr3": "", "Attr4": "", "Attr5": "",
		"Attr6": "", "Attr7": "", "Attr8": "", "Attr9": "", "Attr10": "",
		"AttachmentList":                  []any{},
		"isLinkRemark":                    false,
		"SlipDescription":                 "",
		"FileExtension":                   "",
		"FileSize":                        "",
		"designatedAppr1":                 "",
		"designatedAppr2":                 "",
		"designatedAppr3":                 "",
		"designatedAppr4":                 "",
		"designatedAppr5":                 "",
		"verifier":                        "",
		"designatedAppr1EmpNo":            "",
		"designatedAppr2EmpNo":            "",
		"designatedAppr3EmpNo":            "",
		"designatedAppr4EmpNo":            "",
		"designatedAppr5EmpNo":            "",
		"verifierEmpNo":                   "",
		"designatedNotf":                  []any{},
		"isDesignatedApproverEnabled":     false,
		"DesignatedApprover":              "",
		"isVerifierRequired":              false,
		"isDesignatedNotificationEnabled": false,
		"DesignatedNotification":          "",
	}

	// The backend takes the document list as a JSON string, not nested JSON.
	newLeave, err := json.Marshal([]any{entry})
	if err != nil {
		return nil, fmt.Errorf("failed to encode leave entry: %w", err)
	}

	payload := map[string]string{
		"token":           session.Token,
		"devid":           session.DevID,
		"isrfsh":          "true",
		"submitterempnum": params.SubmitterNum,
		"ownerempnum":     params.OwnerNum,
		"docref":          "",
		"newlve":          string(newLeave),
		"acttkn":          "2",
	}
	data, err := c.post(ctx, "/mLeavz/LeaveSubmission", payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("leave submitted", "code", code, "start", params.StartDate, "end", endDate)
	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Successfully submitted %s leave request", code),
		Data:    data,
	}, nil
}

// LeaveAction applies an action token to one or more leave documents.
func (c *Client) LeaveAction(ctx context.Context, session *Session, docRefs, action, remark string) (*Result, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	name, ok := actionNames[action]
	if !ok {
		return nil, fmt.Errorf("invalid action token %q: use 5=Withdraw, 6=Approve, 8=Reject", action)
	}
	if docRefs == "" {
		return nil, fmt.Errorf("docrefarr is required")
	}

	payload := map[string]string{
		"token":     session.Token,
		"devid":     session.DevID,
		"isrfsh":    "true",
		"docrefarr": docRefs,
		"acttkn":    action,
		"rmk":       remark,
	}
	data, err := c.post(ctx, "/mLeavz/LeaveAction", payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("leave action applied", "action", name, "docref", docRefs)
	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Successfully %sed leave request %s", strings.ToLower(name), docRefs),
		Data:    data,
	}, nil
}

// Withdraw cancels a previously submitted leave request.
func (c *Client) Withdraw(ctx context.Context, session *Session, docRefs, remark string) (*Result, error) {
	return c.LeaveAction(ctx, session, docRefs, ActionWithdraw, remark)
}

// Approve approves a leave request. Requires an approver session.
func (c *Client) Approve(ctx context.Context, session *Session, docRefs, remark string) (*Result, error) {
	return c.LeaveAction(ctx, session, docRefs, ActionApprove, remark)
}

// Reject rejects a leave request. Requires an approver session.
func (c *Client) Reject(ctx context.Context, session *Session, docRefs, remark string) (*Result, error) {
	return c.LeaveAction(ctx, session, docRefs, ActionReject, remark)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("backend call failed", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
	}

	c.logger.Debug("backend call succeeded", "endpoint", endpoint)
	return json.RawMessage(data), nil
}

func validateSession(session *Session) error {
	if session == nil || session.Token == "" || session.DevID == "" {
		return fmt.Errorf("a valid session token and devid are required")
	}
	return nil
}

// formatBackendDate normalizes a date or datetime to the backend's
// "YYYY-MM-DD HH:MM:SS+08:00" form in UTC+8.
func formatBackendDate(value string) string {
	if value == "" {
		return ""
	}
	if strings.Contains(value, "T") {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.In(backendZone).Format("2006-01-02 15:04:05+08:00")
		}
		if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
			return t.Format("2006-01-02 15:04:05") + "+08:00"
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Format("2006-01-02") + " 00:00:00+08:00"
	}
	if !strings.Contains(value, " ") {
		return value + " 00:00:00+08:00"
	}
	return value
}
