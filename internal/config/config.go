// Package config loads rnstd settings from a YAML or TOML file, environment variables and
// command-line overrides, in increasing order of precedence. A missing config file is not
// an error: the defaults are enough to serve ./resources.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rnstd/internal/logging"
	"rnstd/pkg/fileops"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "rnstd" // application name used for config and state directories

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "RNSTD_CONFIG_PATH"

// EnvPrefix is prepended to every environment override, e.g. RNSTD_RESOURCES_DIR.
const EnvPrefix = "RNSTD_"

// Transport protocols accepted by the serve command.
const (
	ProtocolLine = "line"
	ProtocolMCP  = "mcp"
)

const (
	DefaultResourcesDir        = "./resources"
	DefaultLogLevel            = "info"
	DefaultMaxFileSize   int64 = 10 * 1024 * 1024
	DefaultBranch              = "main"
)

// SourceConfig describes the git repository that provides the resources tree.
type SourceConfig struct {
	RemoteURL string `yaml:"remote_url,omitempty" toml:"remote_url,omitempty" env:"URL"`
	Branch    string `yaml:"branch,omitempty" toml:"branch,omitempty" env:"BRANCH"`
}

// Config holds user configuration for rnstd.
type Config struct {
	// ResourcesDir is the root holding standards/ and code-examples/.
	ResourcesDir string `yaml:"resources_dir" toml:"resources_dir" env:"RESOURCES_DIR"`
	// LogFile receives diagnostics. "-" logs to stderr.
	LogFile  string `yaml:"log_file" toml:"log_file" env:"LOG_FILE"`
	LogLevel string `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	// ToolPrefixes are stripped from incoming tool names, e.g. "mcp0_".
	ToolPrefixes []string `yaml:"tool_prefixes" toml:"tool_prefixes" env:"TOOL_PREFIXES" envSeparator:","`
	Protocol     string   `yaml:"protocol" toml:"protocol" env:"PROTOCOL"`
	MaxFileSize  int64    `yaml:"max_file_size" toml:"max_file_size" env:"MAX_FILE_SIZE"`

	Source SourceConfig `yaml:"source,omitempty" toml:"source,omitempty" envPrefix:"SOURCE_"`
}

// ConfigPath returns the config file location: $RNSTD_CONFIG_PATH when set, otherwise
// config.yaml under the platform config directory.
func ConfigPath() string {
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		return fileops.ExpandPath(path)
	}
	return filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
}

// DefaultLogFile returns the log file used when none is configured.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, APP_NAME, APP_NAME+".log")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ResourcesDir: DefaultResourcesDir,
		LogFile:      DefaultLogFile(),
		LogLevel:     DefaultLogLevel,
		ToolPrefixes: []string{"mcp0_"},
		Protocol:     ProtocolLine,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadWithEnv reads the config file at path (if present), applies environment overrides
// and validates the result. A nil environ reads the process environment.
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if errors.Is(err, os.ErrNotExist) {
		defaults := DefaultConfig()
		cfg = &defaults
	} else if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom decodes the file at path over the defaults. Files ending in .toml are read as
// TOML, anything else as YAML. An empty file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from RNSTD_* variables. Unset variables leave fields untouched.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ResourcesDir) == "" {
		return fmt.Errorf("resources_dir cannot be empty")
	}
	switch c.Protocol {
	case ProtocolLine, ProtocolMCP:
	default:
		return fmt.Errorf("unknown protocol %q (expected %q or %q)", c.Protocol, ProtocolLine, ProtocolMCP)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.Source.Branch != "" && c.Source.RemoteURL == "" {
		return fmt.Errorf("source.branch requires source.remote_url")
	}
	return nil
}

// executablePath locates the running binary.
var executablePath = os.Executable

// ResourcesPath returns ResourcesDir expanded and made absolute. When ResourcesDir is the
// default and ./resources does not exist, the resources directory next to the executable
// is used instead if there is one, so hosts can start the server from any directory.
func (c *Config) ResourcesPath() (string, error) {
	path, err := filepath.Abs(fileops.ExpandPath(c.ResourcesDir))
	if err != nil {
		return "", fmt.Errorf("failed to resolve resources_dir: %w", err)
	}
	if c.ResourcesDir != DefaultResourcesDir || isDir(path) {
		return path, nil
	}

	exe, err := executablePath()
	if err != nil {
		return path, nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if beside := filepath.Join(filepath.Dir(exe), "resources"); isDir(beside) {
		return beside, nil
	}
	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// LogPath returns the expanded log file path, or logging.StderrSink.
func (c *Config) LogPath() string {
	if c.LogFile == "" || c.LogFile == logging.StderrSink {
		return logging.StderrSink
	}
	return fileops.ExpandPath(c.LogFile)
}

// SourceBranch returns the configured branch or DefaultBranch.
func (c *Config) SourceBranch() string {
	if c.Source.Branch != "" {
		return c.Source.Branch
	}
	return DefaultBranch
}

// SaveTo writes the config atomically to path with 0600 permissions, as TOML when path
// ends in .toml and YAML otherwise.
func (c *Config) SaveTo(path string) error {
	data, err := c.Marshal(isTOML(path))
	if err != nil {
		return err
	}
	if err := fileops.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Marshal encodes the config as TOML or YAML.
func (c *Config) Marshal(asTOML bool) ([]byte, error) {
	var buf bytes.Buffer
	if asTOML {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return buf.Bytes(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
