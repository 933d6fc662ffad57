package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names exposed to callers.
const (
	GetProjectStructure   = "get_project_structure"
	GetAPICommunication   = "get_api_communication"
	GetComponentDesign    = "get_component_design"
	GetStateManagement    = "get_state_management"
	GetComponentExample   = "get_component_example"
	GetHookExample        = "get_hook_example"
	GetServiceExample     = "get_service_example"
	GetScreenExample      = "get_screen_example"
	GetThemeExample       = "get_theme_example"
	ListAvailableExamples = "list_available_examples"
)

// Schema is the parameter schema of a tool as it appears on the wire.
type Schema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Descriptor is the wire form of a catalog entry returned by tools/list. Parameters and
// InputSchema carry the same schema; the latter is the field MCP hosts read.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
	InputSchema Schema `json:"inputSchema"`
}

// Catalog returns the tool definitions in their stable listing order.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(GetProjectStructure,
			mcp.WithDescription("Get project structure standards for React Native development"),
		),
		mcp.NewTool(GetAPICommunication,
			mcp.WithDescription("Get API communication standards for React Native development"),
		),
		mcp.NewTool(GetComponentDesign,
			mcp.WithDescription("Get component design standards for React Native development"),
		),
		mcp.NewTool(GetStateManagement,
			mcp.WithDescription("Get state management standards for React Native development"),
		),
		mcp.NewTool(GetComponentExample,
			mcp.WithDescription("Get a React Native component example"),
			mcp.WithString("component_name", mcp.Title("Component Name")),
		),
		mcp.NewTool(GetHookExample,
			mcp.WithDescription("Get a React Native hook example"),
			mcp.WithString("hook_name", mcp.Title("Hook Name")),
		),
		mcp.NewTool(GetServiceExample,
			mcp.WithDescription("Get a React Native service example"),
			mcp.WithString("service_name", mcp.Title("Service Name")),
		),
		mcp.NewTool(GetScreenExample,
			mcp.WithDescription("Get a React Native screen example"),
			mcp.WithString("screen_name", mcp.Title("Screen Name")),
		),
		mcp.NewTool(GetThemeExample,
			mcp.WithDescription("Get a React Native theme example"),
			mcp.WithString("theme_name", mcp.Title("Theme Name")),
		),
		mcp.NewTool(ListAvailableExamples,
			mcp.WithDescription("List all available code examples by category"),
		),
	}
}

// Describe converts a tool definition into its wire descriptor.
func Describe(tool mcp.Tool) Descriptor {
	properties := make(map[string]any, len(tool.InputSchema.Properties))
	for name, prop := range tool.InputSchema.Properties {
		properties[name] = prop
	}
	schema := Schema{Type: "object", Properties: properties}

	return Descriptor{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  schema,
		InputSchema: schema,
	}
}
