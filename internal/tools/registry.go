// Package tools defines the fixed tool catalog served by rnstd and the registry that
// dispatches tool calls to their handlers.
//
// The catalog and the name to handler map are built once by NewRegistry and never change
// afterwards, so a Registry is safe to share.
package tools

import (
	"context"
	"fmt"
	"strings"

	"rnstd/internal/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultPrefixes are the host-added prefixes stripped from tool names before lookup.
var DefaultPrefixes = []string{"mcp0_"}

// Options configures a Registry.
type Options struct {
	// Prefixes are stripped from incoming tool names. Nil selects DefaultPrefixes.
	Prefixes []string
	Logger   *logging.AppLogger
}

// Registry holds the tool catalog and invokes handlers.
type Registry struct {
	tools    []mcp.Tool
	index    map[string]int
	handlers map[string]HandlerFunc
	prefixes []string
	logger   *logging.AppLogger
}

// NewRegistry builds the registry for the standard catalog backed by store.
func NewRegistry(store ResourceReader, opts Options) *Registry {
	return newRegistry(Catalog(), Handlers(store), opts)
}

func newRegistry(catalog []mcp.Tool, handlers map[string]HandlerFunc, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	prefixes := opts.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}

	index := make(map[string]int, len(catalog))
	for i, tool := range catalog {
		index[tool.Name] = i
	}

	return &Registry{
		tools:    catalog,
		index:    index,
		handlers: handlers,
		prefixes: append([]string(nil), prefixes...),
		logger:   logger,
	}
}

// Tools returns a copy of the catalog in listing order.
func (r *Registry) Tools() []mcp.Tool {
	return append([]mcp.Tool(nil), r.tools...)
}

// ListTools returns the wire descriptors of every catalog entry in listing order.
func (r *Registry) ListTools() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		descriptors = append(descriptors, Describe(tool))
	}
	return descriptors
}

// Normalize strips the first matching transport prefix from name.
func (r *Registry) Normalize(name string) string {
	for _, prefix := range r.prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// Lookup returns the catalog entry named name. Transport prefixes are not stripped; pass
// the result of Normalize for names received from a host.
func (r *Registry) Lookup(name string) (mcp.Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return mcp.Tool{}, false
	}
	return r.tools[i], true
}

// Invoke calls the tool named toolName with arguments and returns the result payload.
// Failures of any kind are returned as an ErrorResult; Invoke never panics because of a
// handler.
func (r *Registry) Invoke(ctx context.Context, toolName string, arguments any) any {
	if toolName == "" {
		return Errorf("Tool name not specified")
	}

	name := r.Normalize(toolName)
	if _, ok := r.Lookup(name); !ok {
		r.logger.Warn("Unknown tool", "tool", name)
		return Errorf("Tool %s not found", name)
	}

	handler := r.handlers[name]
	if handler == nil {
		r.logger.Error("Tool has no handler", "tool", name)
		return Errorf("Handler for tool %s not implemented", name)
	}

	args, err := toArguments(arguments)
	if err != nil {
		r.logger.Error("Error calling tool", "tool", name, "error", err)
		return Errorf("Error calling %s: %s", name, err)
	}

	return r.call(ctx, name, handler, args)
}

func (r *Registry) call(ctx context.Context, name string, handler HandlerFunc, args map[string]any) (result any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Tool handler panicked", "tool", name, "panic", rec)
			result = Errorf("Error calling %s: %v", name, rec)
		}
	}()

	payload, err := handler(ctx, args)
	if err != nil {
		r.logger.Error("Error calling tool", "tool", name, "error", err)
		return Errorf("Error calling %s: %s", name, err)
	}
	if errResult, ok := payload.(ErrorResult); ok {
		r.logger.Debug("Tool returned error result", "tool", name, "error", errResult.Error)
	}
	return payload
}

func toArguments(arguments any) (map[string]any, error) {
	switch args := arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return args, nil
	default:
		return nil, fmt.Errorf("arguments must be an object")
	}
}
