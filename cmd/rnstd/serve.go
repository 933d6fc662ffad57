package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rnstd/internal/config"
	"rnstd/internal/mcp"
	"rnstd/internal/tools"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var protocol string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tool calls over stdin/stdout (default command)",
		Long: `Serve reads one JSON-RPC request per line from stdin and writes one response
per line to stdout.

With --protocol mcp the same tools are served through a full MCP session
(initialize handshake, tools/list, tools/call).

Resources are read from --resources, RNSTD_RESOURCES_DIR or resources_dir in the config
file. The default is ./resources in the working directory; when that does not exist, the
resources directory next to the rnstd executable is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, protocol)
		},
	}
	cmd.Flags().StringVarP(&protocol, "protocol", "p", "", fmt.Sprintf("wire protocol: %q or %q", config.ProtocolLine, config.ProtocolMCP))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, protocol string) error {
	cfg, logger, store, closeLog, err := a.setup()
	if err != nil {
		return err
	}
	defer closeLog()

	if protocol != "" {
		cfg.Protocol = protocol
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger.Info("Starting rnstd", "version", mcp.ServerVersion, "protocol", cfg.Protocol, "resources", store.Root())
	logger.DebugObject("config", cfg)

	registry := tools.NewRegistry(store, tools.Options{Prefixes: cfg.ToolPrefixes, Logger: logger})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	switch cfg.Protocol {
	case config.ProtocolMCP:
		err = mcp.ServeSDK(ctx, registry, logger, in, out)
	default:
		err = mcp.NewServerWithIO(mcp.NewProcessor(registry, logger), logger, in, out).Serve(ctx)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		logger.Error("Server stopped with error", "error", err)
	}
	return err
}
