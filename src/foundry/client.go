// Package foundry is the HTTP client for the agents backend: agent and
// thread lifecycle plus the run polling endpoints.
package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/elee1766/calagent/src/aisdk"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultAPIVersion = "v1"
)

var _ aisdk.AgentService = (*Client)(nil)

// Client is the agents backend API client.
type Client struct {
	config     aisdk.ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new agents backend client.
func NewClient(config aisdk.ClientConfig) *Client {
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.APIVersion == "" {
		config.APIVersion = defaultAPIVersion
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "foundry_client")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// CreateAgent provisions an agent with the given model, instructions, and
// tool definitions.
func (c *Client) CreateAgent(ctx context.Context, req *aisdk.CreateAgentRequest) (*aisdk.Agent, error) {
	logger := c.logger.With("method", "CreateAgent", "model", req.Model)
	logger.Debug("creating agent", "name", req.Name, "tools", len(req.Tools))

	var agent aisdk.Agent
	if err := c.do(ctx, http.MethodPost, "/assistants", req, &agent); err != nil {
		logger.Error("failed to create agent", "error", err)
		return nil, err
	}

	logger.Info("agent created", "agent_id", agent.ID)
	return &agent, nil
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	logger := c.logger.With("method", "DeleteAgent", "agent_id", agentID)

	if err := c.do(ctx, http.MethodDelete, "/assistants/"+url.PathEscape(agentID), nil, nil); err != nil {
		logger.Error("failed to delete agent", "error", err)
		return err
	}

	logger.Info("agent deleted")
	return nil
}

// CreateThread creates a new empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (*aisdk.Thread, error) {
	var thread aisdk.Thread
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		c.logger.Error("failed to create thread", "error", err)
		return nil, err
	}

	c.logger.Info("thread created", "thread_id", thread.ID)
	return &thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string) (*aisdk.Message, error) {
	body := map[string]string{"role": role, "content": content}

	var wire wireMessage
	path := "/threads/" + url.PathEscape(threadID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, body, &wire); err != nil {
		c.logger.Error("failed to create message", "thread_id", threadID, "error", err)
		return nil, err
	}
	return wire.toMessage(), nil
}

// ListMessages returns thread messages, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]*aisdk.Message, error) {
	path := fmt.Sprintf("/threads/%s/messages?limit=%d", url.PathEscape(threadID), limit)

	var wire wireMessageList
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		c.logger.Error("failed to list messages", "thread_id", threadID, "error", err)
		return nil, err
	}

	out := make([]*aisdk.Message, 0, len(wire.Data))
	for _, m := range wire.Data {
		out = append(out, m.toMessage())
	}
	return out, nil
}

// CreateRun starts a run of the agent against the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*aisdk.Run, error) {
	body := map[string]string{"assistant_id": agentID}

	var wire wireRun
	path := "/threads/" + url.PathEscape(threadID) + "/runs"
	if err := c.do(ctx, http.MethodPost, path, body, &wire); err != nil {
		c.logger.Error("failed to create run", "thread_id", threadID, "error", err)
		return nil, err
	}

	c.logger.Debug("run created", "run_id", wire.ID, "status", wire.Status)
	return wire.toRun(), nil
}

// GetRun refreshes the state of an in-flight run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*aisdk.Run, error) {
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID)

	var wire wireRun
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		c.logger.Error("failed to get run", "run_id", runID, "error", err)
		return nil, err
	}
	return wire.toRun(), nil
}

// SubmitToolOutputs delivers tool results for a run in requires_action.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []aisdk.ToolOutput) (*aisdk.Run, error) {
	body := map[string]any{"tool_outputs": outputs}
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID) + "/submit_tool_outputs"

	var wire wireRun
	if err := c.do(ctx, http.MethodPost, path, body, &wire); err != nil {
		c.logger.Error("failed to submit tool outputs", "run_id", runID, "outputs", len(outputs), "error", err)
		return nil, err
	}

	c.logger.Debug("tool outputs submitted", "run_id", runID, "outputs", len(outputs))
	return wire.toRun(), nil
}

// do performs one API call, retrying server errors, and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.handleError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	u := c.config.Endpoint + path
	if c.config.APIVersion != "" {
		sep := "?"
		if containsQuery(path) {
			sep = "&"
		}
		u += sep + "api-version=" + url.QueryEscape(c.config.APIVersion)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func containsQuery(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			return true
		}
	}
	return false
}

// doRequestWithRetry performs an HTTP request with retry logic. Client
// errors (4xx) are never retried.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry", "url", req.URL.String())

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	for i := 0; i < c.config.RetryCount; i++ {
		reqCopy := req.Clone(req.Context())
		if bodyBytes != nil {
			reqCopy.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := c.httpClient.Do(reqCopy)
		if err != nil {
			lastErr = err
			logger.Debug("request attempt failed", "attempt", i+1, "error", err)
			time.Sleep(c.config.RetryDelay * time.Duration(i+1))
			continue
		}

		if resp.StatusCode < 500 {
			return resp, nil
		}

		// Server error - retry
		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		logger.Debug("server error, retrying", "attempt", i+1, "status_code", resp.StatusCode)
		time.Sleep(c.config.RetryDelay * time.Duration(i+1))
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryCount, lastErr)
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp aisdk.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Code:       errResp.Error.Code,
		Message:    errResp.Error.Message,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}
}
