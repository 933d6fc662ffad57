package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"rnstd/internal/logging"
	"rnstd/internal/tools"

	"github.com/charmbracelet/log"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewSDKServer exposes the registry through mcp-go's server, which implements the full
// MCP session (initialize, ping, tools/list, tools/call). Results are returned as JSON
// text content; application errors are flagged with isError.
func NewSDKServer(registry *tools.Registry, logger *logging.AppLogger) *server.MCPServer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, tool := range registry.Tools() {
		name := tool.Name
		s.AddTool(tool, func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			logger.Info("Tool call", "tool", name, "transport", "sdk")
			return toCallToolResult(registry.Invoke(ctx, name, req.GetArguments()))
		})
	}

	return s
}

func toCallToolResult(payload any) (*mcpgo.CallToolResult, error) {
	if errResult, ok := payload.(tools.ErrorResult); ok {
		return mcpgo.NewToolResultError(errResult.Error), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcpgo.NewToolResultText(string(data)), nil
}

// ServeSDK runs the mcp-go stdio transport on in and out until in is closed or ctx is
// cancelled.
func ServeSDK(ctx context.Context, registry *tools.Registry, logger *logging.AppLogger, in io.Reader, out io.Writer) error {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	stdio := server.NewStdioServer(NewSDKServer(registry, logger))
	stdio.SetErrorLogger(logger.StandardLog(log.ErrorLevel))

	logger.Info("Starting server (mcp-go stdio transport)", "name", ServerName, "version", ServerVersion)
	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	logger.Info("Server shutdown complete")
	return nil
}
