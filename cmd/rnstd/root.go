package main

import (
	"fmt"
	"os"

	"rnstd/internal/config"
	"rnstd/internal/logging"
	"rnstd/internal/mcp"
	"rnstd/internal/resources"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries the global flags shared by every command. Flags override the config file
// and environment.
type app struct {
	configPath   string
	resourcesDir string
	logFile      string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   config.APP_NAME,
		Short: "Serve React Native coding standards and examples over stdio",
		Long: `rnstd answers JSON-RPC tool calls on stdin/stdout with React Native
standards documents and code examples read from a resources directory.

Without a subcommand it starts the stdio server.`,
		Version:       mcp.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, "")
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	pf.StringVarP(&a.resourcesDir, "resources", "r", "", "resources directory holding standards/ and code-examples/")
	pf.StringVar(&a.logFile, "log-file", "", `log file, "-" for stderr`)
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCheckCmd(a),
		newBrowseCmd(a),
		newSyncCmd(a),
		newAuthCmd(a),
		newConfigCmd(a),
	)
	return root
}

// loadConfig reads the config file and environment, then applies command line flags.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(a.configFile(), nil)
	if err != nil {
		return nil, err
	}

	if a.resourcesDir != "" {
		cfg.ResourcesDir = a.resourcesDir
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the config and opens the log file and the resource store. The returned
// close function flushes the log.
func (a *app) setup() (*config.Config, *logging.AppLogger, *resources.Store, func() error, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, closeLog, err := logging.NewFileLogger(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	root, err := cfg.ResourcesPath()
	if err != nil {
		closeLog()
		return nil, nil, nil, nil, err
	}

	store, err := resources.NewStore(root, resources.Options{MaxFileSize: cfg.MaxFileSize, Logger: logger})
	if err != nil {
		closeLog()
		return nil, nil, nil, nil, err
	}
	return cfg, logger, store, closeLog, nil
}

// terminalWidth returns the width of stdout, or fallback when stdout is not a terminal.
func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
