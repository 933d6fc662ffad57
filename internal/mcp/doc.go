// Package mcp serves the rnstd tool catalog to AI assistants over stdio.
//
// Two transports are available:
//
//   - Server, the default, speaks line-delimited JSON-RPC 2.0 and answers only
//     tools/list and tools/call. Every input line produces exactly one output line.
//   - ServeSDK hands the same registry to the mcp-go library (github.com/mark3labs/mcp-go),
//     which adds the initialize handshake for hosts that require a full MCP session.
//
// # Errors
//
// Protocol errors use JSON-RPC error objects:
//
//	-32700  Parse error (id is null)
//	-32600  Invalid Request, Invalid JSON-RPC version, Method not specified
//	-32601  Method {method} not found
//	-32603  Internal error: {message}
//
// Application errors, such as a missing example, are returned as {"error": "..."} inside a
// successful result. Callers must inspect the result even when the envelope succeeds.
//
// # Usage
//
// The server is normally started as a subprocess by an assistant:
//
//	rnstd serve
//
// It reads requests from stdin and writes responses to stdout until stdin is closed.
// Logs never go to stdout.
package mcp
