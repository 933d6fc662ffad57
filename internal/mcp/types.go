package mcp

import (
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

const (
	ServerName    = "bluestoneapps"
	ServerVersion = "0.2.1"
)

// JSON-RPC 2.0 error codes used by the envelope processor.
const (
	ErrParse          = mcpgo.PARSE_ERROR
	ErrInvalidRequest = mcpgo.INVALID_REQUEST
	ErrMethodNotFound = mcpgo.METHOD_NOT_FOUND
	ErrInternal       = mcpgo.INTERNAL_ERROR
)

// Supported methods.
const (
	MethodToolsList = string(mcpgo.MethodToolsList)
	MethodToolsCall = string(mcpgo.MethodToolsCall)
)

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set; ID is
// always written, as null when the request id is unknown.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolsListResult is the result of tools/list.
type ToolsListResult struct {
	Tools any `json:"tools"`
}

func resultResponse(id, result any) Response {
	return Response{JSONRPC: mcpgo.JSONRPC_VERSION, ID: id, Result: result}
}

func errorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: mcpgo.JSONRPC_VERSION, ID: id, Error: &Error{Code: code, Message: message}}
}
