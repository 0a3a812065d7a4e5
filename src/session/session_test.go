package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/runner"
)

// fakeService counts lifecycle calls and always completes runs immediately.
type fakeService struct {
	agentSeq  int
	threadSeq int
	deleted   []string
	reply     string

	createAgentErr  error
	createThreadErr error
}

func (f *fakeService) CreateAgent(ctx context.Context, req *aisdk.CreateAgentRequest) (*aisdk.Agent, error) {
	if f.createAgentErr != nil {
		return nil, f.createAgentErr
	}
	f.agentSeq++
	return &aisdk.Agent{ID: fmt.Sprintf("agent-%d", f.agentSeq)}, nil
}

func (f *fakeService) DeleteAgent(ctx context.Context, agentID string) error {
	f.deleted = append(f.deleted, agentID)
	return nil
}

func (f *fakeService) CreateThread(ctx context.Context) (*aisdk.Thread, error) {
	if f.createThreadErr != nil {
		return nil, f.createThreadErr
	}
	f.threadSeq++
	return &aisdk.Thread{ID: fmt.Sprintf("thread-%d", f.threadSeq)}, nil
}

func (f *fakeService) CreateMessage(ctx context.Context, threadID, role, content string) (*aisdk.Message, error) {
	return &aisdk.Message{Role: role, Content: content}, nil
}

func (f *fakeService) ListMessages(ctx context.Context, threadID string, limit int) ([]*aisdk.Message, error) {
	return []*aisdk.Message{{Role: "assistant", Content: f.reply}}, nil
}

func (f *fakeService) CreateRun(ctx context.Context, threadID, agentID string) (*aisdk.Run, error) {
	return &aisdk.Run{ID: "run-1", Status: aisdk.RunStatusCompleted}, nil
}

func (f *fakeService) GetRun(ctx context.Context, threadID, runID string) (*aisdk.Run, error) {
	return &aisdk.Run{ID: runID, Status: aisdk.RunStatusCompleted}, nil
}

func (f *fakeService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []aisdk.ToolOutput) (*aisdk.Run, error) {
	return &aisdk.Run{ID: runID, Status: aisdk.RunStatusCompleted}, nil
}

func newTestManager(svc *fakeService) *Manager {
	r := runner.NewRunner(runner.Config{
		Service:       svc,
		MaxIterations: 5,
		PollInterval:  time.Millisecond,
		SubmitPause:   -1,
	})
	return NewManager(Config{
		Service:   svc,
		Runner:    r,
		AgentName: "CalendarAgent",
		Model:     "gpt-4o",
	})
}

func TestInitializeIsIdempotent(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(svc)

	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, 1, svc.agentSeq)
	assert.Equal(t, 1, svc.threadSeq)
	assert.True(t, m.Active())
}

func TestInitializeRollsBackAgentOnThreadFailure(t *testing.T) {
	svc := &fakeService{createThreadErr: fmt.Errorf("thread backend down")}
	m := newTestManager(svc)

	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, m.Active())
	assert.Equal(t, []string{"agent-1"}, svc.deleted)
}

func TestProcessMessageLazyInit(t *testing.T) {
	svc := &fakeService{reply: "hello there"}
	m := newTestManager(svc)

	resp := m.ProcessMessage(context.Background(), "hi")
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "hello there", resp.Message)
	assert.Equal(t, "thread-1", resp.ThreadID)
	assert.NotEmpty(t, resp.Timestamp)
	assert.True(t, m.Active())
}

func TestProcessMessageInThreadResumesExistingThread(t *testing.T) {
	svc := &fakeService{reply: "picking up where we left off"}
	m := newTestManager(svc)

	resp := m.ProcessMessageInThread(context.Background(), "thread-keep", "hi again")
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "thread-keep", resp.ThreadID)
	assert.Equal(t, "thread-keep", m.ThreadID())
	assert.Equal(t, 1, svc.agentSeq)
	assert.Equal(t, 0, svc.threadSeq, "adopted threads must not be recreated")
}

func TestProcessMessageInitFailure(t *testing.T) {
	svc := &fakeService{createAgentErr: fmt.Errorf("no capacity")}
	m := newTestManager(svc)

	resp := m.ProcessMessage(context.Background(), "hi")
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Failed to initialize agent session", resp.Message)
	assert.Contains(t, resp.ErrorDetails, "no capacity")
}

func TestResetKeepsAgent(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(svc)
	require.NoError(t, m.Initialize(context.Background()))

	resp := m.Reset(context.Background())
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Session reset - new conversation started", resp.Message)
	assert.Equal(t, "thread-2", resp.ThreadID)
	// The agent resource is reused.
	assert.Equal(t, 1, svc.agentSeq)
	assert.Empty(t, svc.deleted)
}

func TestResetWithoutAgentReinitializes(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(svc)

	resp := m.Reset(context.Background())
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Session reset - new agent and conversation started", resp.Message)
	assert.True(t, m.Active())
}

func TestCleanup(t *testing.T) {
	svc := &fakeService{}
	m := newTestManager(svc)
	require.NoError(t, m.Initialize(context.Background()))

	m.Cleanup(context.Background())
	assert.False(t, m.Active())
	assert.Equal(t, []string{"agent-1"}, svc.deleted)

	// Safe to call again with nothing to tear down.
	m.Cleanup(context.Background())
	assert.Equal(t, []string{"agent-1"}, svc.deleted)
}

func TestPerform(t *testing.T) {
	svc := &fakeService{reply: "ok"}
	m := newTestManager(svc)

	_, err := m.Perform(context.Background(), ActionMessage, "", "")
	require.Error(t, err)

	resp, err := m.Perform(context.Background(), ActionMessage, "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)

	resp, err = m.Perform(context.Background(), ActionReset, "", "")
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)

	resp, err = m.Perform(context.Background(), ActionCleanup, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Session cleaned up", resp.Message)

	_, err = m.Perform(context.Background(), "explode", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}
