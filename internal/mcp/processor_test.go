package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"rnstd/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_ValidationOrder(t *testing.T) {
	processor := newTestProcessor(t, nil)

	tests := []struct {
		name    string
		request any
		wantID  any
		code    int
		message string
	}{
		{"array request", []any{1, 2}, nil, -32600, "Invalid Request"},
		{"string request", "tools/list", nil, -32600, "Invalid Request"},
		{"null request", nil, nil, -32600, "Invalid Request"},
		{"missing version", map[string]any{"id": json.Number("3"), "method": "tools/list"}, json.Number("3"), -32600, "Invalid JSON-RPC version"},
		{"wrong version", map[string]any{"jsonrpc": "1.0", "id": "a", "method": "tools/list"}, "a", -32600, "Invalid JSON-RPC version"},
		{"numeric version", map[string]any{"jsonrpc": json.Number("2.0"), "id": "a", "method": "tools/list"}, "a", -32600, "Invalid JSON-RPC version"},
		{"version checked before method", map[string]any{"id": "b"}, "b", -32600, "Invalid JSON-RPC version"},
		{"missing method", map[string]any{"jsonrpc": "2.0", "id": json.Number("4")}, json.Number("4"), -32600, "Method not specified"},
		{"empty method", map[string]any{"jsonrpc": "2.0", "id": json.Number("5"), "method": ""}, json.Number("5"), -32600, "Method not specified"},
		{"numeric method", map[string]any{"jsonrpc": "2.0", "id": json.Number("6"), "method": json.Number("123")}, json.Number("6"), -32601, "Method 123 not found"},
		{"zero method", map[string]any{"jsonrpc": "2.0", "id": json.Number("6"), "method": json.Number("0")}, json.Number("6"), -32600, "Method not specified"},
		{"null method", map[string]any{"jsonrpc": "2.0", "id": json.Number("6"), "method": nil}, json.Number("6"), -32600, "Method not specified"},
		{"boolean method", map[string]any{"jsonrpc": "2.0", "id": json.Number("6"), "method": true}, json.Number("6"), -32601, "Method true not found"},
		{"unknown method", map[string]any{"jsonrpc": "2.0", "id": json.Number("8"), "method": "unknown/method"}, json.Number("8"), -32601, "Method unknown/method not found"},
		{"initialize is not served", map[string]any{"jsonrpc": "2.0", "id": json.Number("9"), "method": "initialize"}, json.Number("9"), -32601, "Method initialize not found"},
		{"non-object params", map[string]any{"jsonrpc": "2.0", "id": json.Number("10"), "method": "tools/call", "params": []any{}}, json.Number("10"), -32603, "Internal error: params must be an object"},
		{"non-string tool name", map[string]any{"jsonrpc": "2.0", "id": json.Number("11"), "method": "tools/call", "params": map[string]any{"name": json.Number("1")}}, json.Number("11"), -32603, "Internal error: tool name must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := processor.Process(context.Background(), tt.request)
			assert.Equal(t, "2.0", resp.JSONRPC)
			assert.Equal(t, tt.wantID, resp.ID)
			assert.Nil(t, resp.Result)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestProcess_ToolsList(t *testing.T) {
	processor := newTestProcessor(t, nil)

	resp := processor.Process(context.Background(), map[string]any{
		"jsonrpc": "2.0",
		"id":      json.Number("1"),
		"method":  "tools/list",
		"params":  "ignored",
	})
	require.Nil(t, resp.Error)

	wire := toMap(t, resp)
	assert.Equal(t, json.Number("1"), wire["id"])
	toolList := wire["result"].(map[string]any)["tools"].([]any)
	require.Len(t, toolList, 10)

	hook := toolList[5].(map[string]any)
	assert.Equal(t, "get_hook_example", hook["name"])
	assert.Equal(t, "Get a React Native hook example", hook["description"])
	assert.Equal(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hook_name": map[string]any{"title": "Hook Name", "type": "string"},
		},
	}, hook["parameters"])
}

func TestProcess_ToolsCall(t *testing.T) {
	processor := newTestProcessor(t, map[string]string{
		"code-examples/react-native/components/ButtonPrimary.tsx": "const ButtonPrimary = () => <View />;\n",
	})
	ctx := context.Background()

	tests := []struct {
		name   string
		params any
		want   map[string]any
	}{
		{
			name:   "unknown tool",
			params: map[string]any{"name": "get_widget", "arguments": map[string]any{}},
			want:   map[string]any{"error": "Tool get_widget not found"},
		},
		{
			name:   "missing tool name",
			params: map[string]any{"arguments": map[string]any{}},
			want:   map[string]any{"error": "Tool name not specified"},
		},
		{
			name:   "missing params",
			params: nil,
			want:   map[string]any{"error": "Tool name not specified"},
		},
		{
			name:   "missing standard",
			params: map[string]any{"name": "get_project_structure"},
			want:   map[string]any{"error": "Standard project_structure not found"},
		},
		{
			name:   "fuzzy component",
			params: map[string]any{"name": "mcp0_get_component_example", "arguments": map[string]any{"component_name": "Button"}},
			want: map[string]any{
				"content": []any{"const ButtonPrimary = () => <View />;\n"},
				"path":    "resources/code-examples/react-native/components/ButtonPrimary.tsx",
			},
		},
		{
			name:   "non-object arguments",
			params: map[string]any{"name": "get_component_example", "arguments": "Button"},
			want:   map[string]any{"error": "Error calling get_component_example: arguments must be an object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := map[string]any{"jsonrpc": "2.0", "id": "req", "method": "tools/call"}
			if tt.params != nil {
				request["params"] = tt.params
			}

			resp := processor.Process(ctx, request)
			require.Nil(t, resp.Error, "application errors must not become protocol errors")
			assert.Equal(t, "req", resp.ID)
			assert.Equal(t, tt.want, toMap(t, resp)["result"])
		})
	}
}

func TestProcess_InternalFault(t *testing.T) {
	logger, buf := logging.NewTestLogger()
	processor := NewProcessor(nil, logger)

	resp := processor.Process(context.Background(), map[string]any{
		"jsonrpc": "2.0",
		"id":      json.Number("7"),
		"method":  "tools/list",
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32603, resp.Error.Code)
	assert.True(t, strings.HasPrefix(resp.Error.Message, "Internal error: "), resp.Error.Message)
	assert.Equal(t, json.Number("7"), resp.ID)
	assert.Contains(t, buf.String(), "Error processing JSON-RPC request")
}

func TestProcess_EnvelopeHasExactlyOneOfResultOrError(t *testing.T) {
	processor := newTestProcessor(t, nil)

	success := toMap(t, processor.Process(context.Background(), map[string]any{"jsonrpc": "2.0", "method": "tools/list"}))
	assert.Contains(t, success, "result")
	assert.NotContains(t, success, "error")
	assert.Contains(t, success, "id")
	assert.Nil(t, success["id"])

	failure := toMap(t, processor.Process(context.Background(), map[string]any{"jsonrpc": "2.0", "method": "nope"}))
	assert.Contains(t, failure, "error")
	assert.NotContains(t, failure, "result")
	assert.Contains(t, failure, "id")
}
