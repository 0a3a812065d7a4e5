package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(clock *fakeClock) *Tracker {
	return NewTracker(Config{
		CallbackBaseURL: "http://localhost:5000",
		Now:             clock.Now,
	})
}

func leaveDetails() RequestDetails {
	return RequestDetails{
		Type:           TypeLeaveRequest,
		EmployeeName:   "John Doe",
		EmployeeEmail:  "john.doe@contoso.com",
		LeaveStartDate: "2025-11-20",
		LeaveEndDate:   "2025-11-22",
		LeaveReason:    "family vacation",
		ManagerEmail:   "manager@contoso.com",
	}
}

func TestRegisterBuildsCallbackURL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)

	url := tracker.Register("abc-123", leaveDetails())
	assert.Equal(t, "http://localhost:5000/api/approval/callback/abc-123", url)
	assert.Equal(t, 1, tracker.PendingCount())

	state, rec, err := tracker.Status("abc-123")
	require.NoError(t, err)
	assert.Equal(t, StatePending, state)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, clock.now, rec.CreatedAt)
}

func TestResolveApproved(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)
	tracker.Register("abc-123", leaveDetails())

	clock.Advance(time.Minute)
	rec, err := tracker.Resolve("abc-123", "approved", "Approve", "Enjoy!")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, rec.Status)
	assert.Equal(t, "Enjoy!", rec.DecisionMessage)
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, clock.now, *rec.CompletedAt)
	assert.Equal(t, 0, tracker.PendingCount())

	state, _, err := tracker.Status("abc-123")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
}

func TestResolveUnknownIDIsNotFound(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tracker := newTestTracker(clock)

	_, err := tracker.Resolve("missing", "approved", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	// An unknown decision must not create tracking state.
	_, _, err = tracker.Status("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolveDuplicateIsIdempotent(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tracker := newTestTracker(clock)
	tracker.Register("abc-123", leaveDetails())

	first, err := tracker.Resolve("abc-123", "approved", "", "ok")
	require.NoError(t, err)

	second, err := tracker.Resolve("abc-123", "rejected", "", "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, "ok", second.DecisionMessage)

	// The duplicate must not emit a second notification.
	assert.Len(t, tracker.Drain(), 1)
}

func TestDrainEmptiesQueueAndDedupes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)
	tracker.Register("abc-123", leaveDetails())

	_, err := tracker.Resolve("abc-123", "approved", "", "")
	require.NoError(t, err)

	first := tracker.Drain()
	require.Len(t, first, 1)
	assert.Equal(t, "approval_update", first[0].Type)
	assert.Equal(t, "APPROVED", first[0].Status)
	assert.Contains(t, first[0].Message, "2025-11-20 to 2025-11-22")

	// Within the retention window the notification stays visible but is
	// never duplicated.
	second := tracker.Drain()
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
}

func TestDrainExpiresWindowedNotifications(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)
	tracker.Register("abc-123", leaveDetails())

	_, err := tracker.Resolve("abc-123", "rejected", "", "short staffed")
	require.NoError(t, err)
	require.Len(t, tracker.Drain(), 1)

	clock.Advance(6 * time.Minute)
	assert.Empty(t, tracker.Drain())
}

func TestClearShown(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	tracker := newTestTracker(clock)
	tracker.Register("abc-123", leaveDetails())

	_, err := tracker.Resolve("abc-123", "approved", "", "")
	require.NoError(t, err)

	tracker.ClearShown()
	assert.Empty(t, tracker.Drain())
}

func TestSweepPending(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(clock)
	tracker.Register("old", leaveDetails())

	clock.Advance(2 * time.Hour)
	tracker.Register("fresh", leaveDetails())

	swept := tracker.SweepPending(time.Hour)
	assert.Equal(t, 1, swept)
	assert.Equal(t, 1, tracker.PendingCount())

	_, _, err := tracker.Status("fresh")
	assert.NoError(t, err)
	_, _, err = tracker.Status("old")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewApprovalIDIsUnique(t *testing.T) {
	a := NewApprovalID()
	b := NewApprovalID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
