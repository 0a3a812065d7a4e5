package foundry

import (
	"time"

	"github.com/elee1766/calagent/src/aisdk"
)

// The backend's message content is an array of typed parts; only text parts
// are meaningful to this client.

type wireMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   []wireContentPart `json:"content"`
	CreatedAt int64             `json:"created_at"`
}

type wireContentPart struct {
	Type string        `json:"type"`
	Text *wireTextPart `json:"text,omitempty"`
}

type wireTextPart struct {
	Value string `json:"value"`
}

type wireMessageList struct {
	Data []wireMessage `json:"data"`
}

func (m wireMessage) toMessage() *aisdk.Message {
	text := ""
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			text = part.Text.Value
			break
		}
	}
	return &aisdk.Message{
		ID:        m.ID,
		Role:      m.Role,
		Content:   text,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
	}
}

type wireRun struct {
	ID             string              `json:"id"`
	ThreadID       string              `json:"thread_id"`
	AssistantID    string              `json:"assistant_id"`
	Status         string              `json:"status"`
	RequiredAction *wireRequiredAction `json:"required_action,omitempty"`
	LastError      *aisdk.RunError     `json:"last_error,omitempty"`
	CreatedAt      int64               `json:"created_at"`
}

type wireRequiredAction struct {
	Type              string               `json:"type"`
	SubmitToolOutputs *wireSubmitToolCalls `json:"submit_tool_outputs,omitempty"`
}

type wireSubmitToolCalls struct {
	ToolCalls []aisdk.ToolCall `json:"tool_calls"`
}

func (r wireRun) toRun() *aisdk.Run {
	run := &aisdk.Run{
		ID:        r.ID,
		ThreadID:  r.ThreadID,
		AgentID:   r.AssistantID,
		Status:    aisdk.RunStatus(r.Status),
		LastError: r.LastError,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
	if r.RequiredAction != nil && r.RequiredAction.SubmitToolOutputs != nil {
		run.RequiredAction = &aisdk.RequiredAction{
			ToolCalls: r.RequiredAction.SubmitToolOutputs.ToolCalls,
		}
	}
	return run
}
