// Package logicapp delivers approval emails through an HTTP-triggered
// workflow endpoint.
package logicapp

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

// Message is the mail body the workflow sends.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyText string `json:"bodyText"`
}

// Payload is the workflow trigger schema.
type Payload struct {
	Message     Message `json:"message"`
	CallbackURL string  `json:"callbackUrl,omitempty"`
}

// Result reports one workflow invocation. The endpoint answers 202 when
// it queues the mail for delivery.
type Result struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// Config holds notifier construction options.
type Config struct {
	// URL is the workflow's HTTP trigger URL, including its signature query.
	URL    string
	Logger *slog.Logger
}

// Client posts approval emails to the workflow endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a workflow notifier.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "logicapp_client"),
	}
}

// Invoke POSTs the payload to the workflow trigger. 200 and 202 both
// count as accepted.
func (c *Client) Invoke(ctx context.Context, payload Payload) (*Result, error) {
	if c.url == "" {
		return nil, fmt.Errorf("workflow URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workflow invocation failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.logger.Error("workflow invocation failed", "status", resp.StatusCode, "body", string(text))
		return nil, fmt.Errorf("workflow returned status %d: %s", resp.StatusCode, string(text))
	}

	c.logger.Info("workflow invoked", "status", resp.StatusCode)
	response := json.RawMessage(text)
	if len(bytes.TrimSpace(text)) == 0 {
		response = json.RawMessage(`{"message":"Request accepted"}`)
	}
	return &Result{Status: "success", StatusCode: resp.StatusCode, Response: response}, nil
}

// SendApprovalEmail sends a plain approval email with optional decision
// callback.
func (c *Client) SendApprovalEmail(ctx context.Context, to, subject, bodyText, callbackURL string) (*Result, error) {
	return c.Invoke(ctx, Payload{
		Message:     Message{To: to, Subject: subject, BodyText: bodyText},
		CallbackURL: callbackURL,
	})
}

// LeaveRequestEmail describes a leave approval email.
type LeaveRequestEmail struct {
	EmployeeName   string
	EmployeeEmail  string
	StartDate      string
	EndDate        string
	Reason         string
	ManagerEmail   string
	CalendarStatus string
	CallbackURL    string
}

// SendLeaveRequest formats and sends a leave approval email to the
// manager.
func (c *Client) SendLeaveRequest(ctx context.Context, email LeaveRequestEmail) (*Result, error) {
	calendarLine := email.CalendarStatus
	if calendarLine == "" {
		calendarLine = "Please verify calendar for any conflicts before approval."
	}

	subject := fmt.Sprintf("Leave Request Approval: %s (%s to %s)",
		email.EmployeeName, email.StartDate, email.EndDate)

	var b strings.Builder
	b.WriteString("Leave Request Details:\n\n")
	fmt.Fprintf(&b, "Employee: %s (%s)\n", email.EmployeeName, email.EmployeeEmail)
	fmt.Fprintf(&b, "Leave Period: %s to %s\n", email.StartDate, email.EndDate)
	fmt.Fprintf(&b, "Reason: %s\n", email.Reason)
	fmt.Fprintf(&b, "Calendar Status: %s\n\n", calendarLine)
	b.WriteString("Please review and approve or reject this leave request.\n")

	return c.Invoke(ctx, Payload{
		Message:     Message{To: email.ManagerEmail, Subject: subject, BodyText: b.String()},
		CallbackURL: email.CallbackURL,
	})
}
