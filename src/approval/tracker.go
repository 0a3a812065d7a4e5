// Package approval tracks human-approval workflows: pending requests, the
// decisions delivered asynchronously by the workflow service, and the
// notifications surfaced to polling consumers.
package approval

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default retention for windowed notifications.
const defaultRetention = 5 * time.Minute

// ErrNotFound is returned when a decision references an approval id that was
// never registered. Unknown ids never create records: a spoofed or duplicate
// callback must not fabricate tracked state.
var ErrNotFound = errors.New("approval id not found")

// Status is the lifecycle state of an approval request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request type tags.
const (
	TypeLeaveRequest   = "leave_request"
	TypeMeetingRequest = "meeting_request"
)

// RequestDetails describes what is being approved.
type RequestDetails struct {
	Type           string `json:"type"`
	EmployeeName   string `json:"employee_name,omitempty"`
	EmployeeEmail  string `json:"employee_email,omitempty"`
	LeaveStartDate string `json:"leave_start_date,omitempty"`
	LeaveEndDate   string `json:"leave_end_date,omitempty"`
	LeaveReason    string `json:"leave_reason,omitempty"`
	ManagerEmail   string `json:"manager_email,omitempty"`
	Subject        string `json:"subject,omitempty"`
	CalendarStatus string `json:"calendar_status,omitempty"`
}

// Record is the tracked state of one approval request.
type Record struct {
	ApprovalID      string         `json:"approval_id"`
	Details         RequestDetails `json:"request_details"`
	Status          Status         `json:"status"`
	SelectedOption  string         `json:"selected_option,omitempty"`
	DecisionMessage string         `json:"decision_message,omitempty"`
	CallbackURL     string         `json:"callback_url"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// Notification is a one-time event describing an approval state change.
type Notification struct {
	Type       string `json:"type"`
	ApprovalID string `json:"approval_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type windowedNotification struct {
	Notification
	receivedAt time.Time
}

// Config holds tracker construction options.
type Config struct {
	// CallbackBaseURL is the externally reachable base for callback URLs,
	// e.g. "http://localhost:5000".
	CallbackBaseURL string

	// Retention bounds how long windowed notifications stay visible.
	// Defaults to 5 minutes.
	Retention time.Duration

	Logger *slog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Tracker correlates approval ids to their lifecycle state. The callback
// ingress writes from its own goroutine while the turn-processing path reads
// and drains, so every operation takes the tracker lock.
type Tracker struct {
	mu       sync.Mutex
	pending  map[string]*Record
	resolved map[string]*Record
	queue    []Notification
	windowed []windowedNotification

	baseURL   string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewTracker creates an approval tracker. One tracker instance is shared per
// process between the ingress and the turn-processing path.
func NewTracker(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	baseURL := strings.TrimSuffix(cfg.CallbackBaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return &Tracker{
		pending:   make(map[string]*Record),
		resolved:  make(map[string]*Record),
		baseURL:   baseURL,
		retention: retention,
		logger:    logger,
		now:       now,
	}
}

// NewApprovalID mints a fresh approval identifier.
func NewApprovalID() string {
	return uuid.NewString()
}

// Register inserts a pending approval request and returns the callback URL
// the workflow service must POST the decision to. Registration always
// succeeds.
func (t *Tracker) Register(approvalID string, details RequestDetails) string {
	callbackURL := fmt.Sprintf("%s/api/approval/callback/%s", t.baseURL, approvalID)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[approvalID] = &Record{
		ApprovalID:  approvalID,
		Details:     details,
		Status:      StatusPending,
		CallbackURL: callbackURL,
		CreatedAt:   t.now(),
	}

	t.logger.Info("registered approval request", "approval_id", approvalID, "callback_url", callbackURL)
	return callbackURL
}

// Resolve applies an external decision to a pending request and emits a
// notification. status is the workflow service's "APPROVED" or "REJECTED".
// A decision for an id that is already resolved is ignored with a warning;
// accepting the overwrite silently would be a correctness risk.
func (t *Tracker) Resolve(approvalID, status, selectedOption, message string) (*Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.pending[approvalID]
	if !ok {
		if prev, done := t.resolved[approvalID]; done {
			t.logger.Warn("duplicate decision for resolved approval ignored",
				"approval_id", approvalID, "status", status)
			out := *prev
			return &out, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, approvalID)
	}

	completed := t.now()
	rec.Status = normalizeStatus(status)
	rec.SelectedOption = selectedOption
	rec.DecisionMessage = message
	rec.CompletedAt = &completed

	delete(t.pending, approvalID)
	t.resolved[approvalID] = rec

	notif := Notification{
		Type:       "approval_update",
		ApprovalID: approvalID,
		Status:     strings.ToUpper(status),
		Message:    formatDecision(rec),
	}
	t.queue = append(t.queue, notif)
	t.windowed = append(t.windowed, windowedNotification{Notification: notif, receivedAt: completed})

	t.logger.Info("processed approval decision", "approval_id", approvalID, "status", rec.Status)

	out := *rec
	return &out, nil
}

// State of an approval id as reported by Status.
type ApprovalState string

const (
	StatePending   ApprovalState = "pending"
	StateCompleted ApprovalState = "completed"
)

// Status returns the current state of an approval request, checking pending
// before resolved.
func (t *Tracker) Status(approvalID string) (ApprovalState, *Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.pending[approvalID]; ok {
		out := *rec
		return StatePending, &out, nil
	}
	if rec, ok := t.resolved[approvalID]; ok {
		out := *rec
		return StateCompleted, &out, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrNotFound, approvalID)
}

// Drain atomically empties the delivery queue, then appends any still-fresh
// windowed notifications not already present, de-duplicated by value.
// Windowed entries past the retention window are pruned as a side effect.
func (t *Tracker) Drain() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.queue
	t.queue = nil

	t.pruneWindowedLocked()
	for _, wn := range t.windowed {
		if !containsNotification(out, wn.Notification) {
			out = append(out, wn.Notification)
		}
	}
	return out
}

// ClearShown empties both the queue and the windowed list. Called by a
// consumer that has just displayed everything and must not re-show it.
func (t *Tracker) ClearShown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = nil
	t.windowed = nil
}

// SweepPending expires pending requests older than ttl. A pending entry whose
// outbound notification send failed would otherwise linger forever with no
// decision ever arriving.
func (t *Tracker) SweepPending(ttl time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-ttl)
	swept := 0
	for id, rec := range t.pending {
		if rec.CreatedAt.Before(cutoff) {
			delete(t.pending, id)
			swept++
			t.logger.Warn("expired stale pending approval", "approval_id", id, "created_at", rec.CreatedAt)
		}
	}
	return swept
}

// PendingCount reports the number of unresolved requests.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) pruneWindowedLocked() {
	cutoff := t.now().Add(-t.retention)
	fresh := t.windowed[:0]
	for _, wn := range t.windowed {
		if wn.receivedAt.After(cutoff) {
			fresh = append(fresh, wn)
		}
	}
	t.windowed = fresh
}

func containsNotification(list []Notification, n Notification) bool {
	for _, have := range list {
		if have == n {
			return true
		}
	}
	return false
}

func normalizeStatus(status string) Status {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "APPROVED":
		return StatusApproved
	case "REJECTED":
		return StatusRejected
	default:
		return Status(strings.ToLower(strings.TrimSpace(status)))
	}
}

func formatDecision(rec *Record) string {
	var b strings.Builder

	subject := "request"
	switch rec.Details.Type {
	case TypeLeaveRequest:
		subject = "leave request"
	case TypeMeetingRequest:
		subject = "meeting request"
	}

	if rec.Status == StatusApproved {
		fmt.Fprintf(&b, "Great news! Your %s has been APPROVED.\n\n", subject)
	} else {
		fmt.Fprintf(&b, "Your %s has been REJECTED.\n\n", subject)
	}

	fmt.Fprintf(&b, "Approval Details:\n")
	fmt.Fprintf(&b, "- Request ID: %s\n", rec.ApprovalID)
	fmt.Fprintf(&b, "- Status: %s\n", strings.ToUpper(string(rec.Status)))
	if rec.Details.Type == TypeLeaveRequest && rec.Details.LeaveStartDate != "" {
		fmt.Fprintf(&b, "- Leave Period: %s to %s\n", rec.Details.LeaveStartDate, rec.Details.LeaveEndDate)
	}
	if rec.Details.Subject != "" {
		fmt.Fprintf(&b, "- Subject: %s\n", rec.Details.Subject)
	}
	response := rec.DecisionMessage
	if response == "" {
		response = strings.ToUpper(string(rec.Status))
	}
	fmt.Fprintf(&b, "- Manager's Response: %s\n", response)
	if rec.CompletedAt != nil {
		fmt.Fprintf(&b, "- Processed: %s\n", rec.CompletedAt.UTC().Format(time.RFC3339))
	}

	if rec.Status == StatusApproved {
		if rec.Details.Type == TypeLeaveRequest {
			b.WriteString("\nYour leave has been added to the system. Enjoy your time off!")
		}
	} else {
		b.WriteString("\nYou may want to discuss this with your manager for more details.")
	}

	return b.String()
}
