package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/calagent/src/aisdk"
)

func TestRegisterToolRejectsDuplicates(t *testing.T) {
	toolbox := NewToolbox[Tool]()
	require.NoError(t, toolbox.RegisterTool(echoTool(t)))

	err := toolbox.RegisterTool(echoTool(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefinitions(t *testing.T) {
	toolbox := NewToolbox[Tool]()
	require.NoError(t, toolbox.RegisterTool(echoTool(t)))

	defs := toolbox.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	require.NotNil(t, defs[0].Function)
	assert.Equal(t, "echo", defs[0].Function.Name)
	assert.Equal(t, "echoes text", defs[0].Function.Description)
	assert.NotNil(t, defs[0].Function.Parameters)
}

func TestMiddlewareOrder(t *testing.T) {
	toolbox := NewToolbox[Tool]()
	require.NoError(t, toolbox.RegisterTool(echoTool(t)))

	var order []string
	mk := func(name string) ToolMiddleware {
		return func(next ToolExecutor) ToolExecutor {
			return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
				order = append(order, name)
				return next(ctx, call)
			}
		}
	}
	toolbox.RegisterMiddleware(mk("outer"))
	toolbox.RegisterMiddleware(mk("inner"))

	c := call("call_1", "echo", `{"text":"x"}`)
	_, err := toolbox.ExecuteTool(context.Background(), &c)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestApprovalToolInjectsCallback(t *testing.T) {
	var seenArgs string
	inner, err := NewGenericTool("notify", "sends approval", func(ctx context.Context, input struct {
		CallbackURL string `json:"callback_url"`
	}) (struct {
		OK bool `json:"ok"`
	}, error) {
		seenArgs = input.CallbackURL
		return struct {
			OK bool `json:"ok"`
		}{OK: true}, nil
	})
	require.NoError(t, err)

	bound := NewApprovalTool(inner, func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolCall, error) {
		var args map[string]any
		require.NoError(t, json.Unmarshal(call.Function.Arguments, &args))
		args["callback_url"] = "http://localhost:5000/api/approval/callback/id-1"
		raw, _ := json.Marshal(args)
		out := *call
		out.Function.Arguments = raw
		return &out, nil
	})

	// The wrapper keeps the inner tool's identity.
	assert.Equal(t, "notify", bound.GetName())

	c := call("call_1", "notify", `{}`)
	resp, err := bound.Execute(context.Background(), &c)
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, "http://localhost:5000/api/approval/callback/id-1", seenArgs)
}

func TestApprovalToolBindFailure(t *testing.T) {
	inner := echoTool(t)
	bound := NewApprovalTool(inner, func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolCall, error) {
		return nil, assert.AnError
	})

	c := call("call_1", "echo", `{"text":"x"}`)
	resp, err := bound.Execute(context.Background(), &c)
	require.NoError(t, err)
	assert.True(t, resp.IsError)
}
