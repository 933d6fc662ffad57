package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rnstd/internal/logging"
	"rnstd/internal/tools"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Processor turns decoded request values into responses. It holds no per-request state.
type Processor struct {
	registry *tools.Registry
	logger   *logging.AppLogger
}

// NewProcessor creates a Processor dispatching tool calls to registry.
func NewProcessor(registry *tools.Registry, logger *logging.AppLogger) *Processor {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Processor{registry: registry, logger: logger}
}

// Process validates request and dispatches it. request is the decoded JSON value of one
// input line. Checks run in order: object, jsonrpc version, method present, method known.
// Any fault while dispatching becomes an internal error response.
func (p *Processor) Process(ctx context.Context, request any) (resp Response) {
	obj, ok := request.(map[string]any)
	if !ok {
		return errorResponse(nil, ErrInvalidRequest, "Invalid Request")
	}
	id := obj["id"]

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("Error processing JSON-RPC request", "id", id, "panic", rec)
			resp = errorResponse(id, ErrInternal, fmt.Sprintf("Internal error: %v", rec))
		}
	}()

	if version, _ := obj["jsonrpc"].(string); version != mcpgo.JSONRPC_VERSION {
		return errorResponse(id, ErrInvalidRequest, "Invalid JSON-RPC version")
	}

	method, ok := methodName(obj["method"])
	if !ok {
		return errorResponse(id, ErrInvalidRequest, "Method not specified")
	}

	var (
		result any
		err    error
	)
	switch method {
	case MethodToolsList:
		result = ToolsListResult{Tools: p.registry.ListTools()}
	case MethodToolsCall:
		result, err = p.callTool(ctx, obj["params"])
	default:
		return errorResponse(id, ErrMethodNotFound, fmt.Sprintf("Method %s not found", method))
	}

	if err != nil {
		p.logger.Error("Error processing JSON-RPC request", "id", id, "method", method, "error", err)
		return errorResponse(id, ErrInternal, fmt.Sprintf("Internal error: %s", err))
	}
	return resultResponse(id, result)
}

// methodName returns the method as text. Absent, null, empty and zero values count as
// not specified; any other value is formatted and falls through to the unknown-method check.
func methodName(v any) (string, bool) {
	switch m := v.(type) {
	case nil:
		return "", false
	case string:
		return m, m != ""
	case bool:
		if !m {
			return "", false
		}
		return "true", true
	case json.Number:
		if f, err := m.Float64(); err == nil && f == 0 {
			return "", false
		}
		return m.String(), true
	case map[string]any:
		return fmt.Sprint(m), len(m) > 0
	case []any:
		return fmt.Sprint(m), len(m) > 0
	default:
		return fmt.Sprint(m), true
	}
}

func (p *Processor) callTool(ctx context.Context, rawParams any) (any, error) {
	params := map[string]any{}
	if rawParams != nil {
		var ok bool
		if params, ok = rawParams.(map[string]any); !ok {
			return nil, errors.New("params must be an object")
		}
	}

	var name string
	switch v := params["name"].(type) {
	case nil:
	case string:
		name = v
	default:
		return nil, errors.New("tool name must be a string")
	}

	p.logger.Info("Tool call", "tool", name)
	return p.registry.Invoke(ctx, name, params["arguments"]), nil
}
