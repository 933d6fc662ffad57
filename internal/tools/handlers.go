package tools

import (
	"context"
	"errors"
	"fmt"

	"rnstd/internal/resources"
)

// ResourceReader is the read side of the resource store used by the handlers.
type ResourceReader interface {
	ReadStandard(standardID string) (string, error)
	ReadExample(c resources.Category, name string) (resources.Example, error)
	ListExamples() resources.ExampleIndex
}

// HandlerFunc executes a tool. A returned error or a panic is reported to the caller as
// "Error calling {tool}: {message}" by the Registry.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// StandardResult is the payload of a successful standards lookup.
type StandardResult struct {
	Content string `json:"content"`
}

// ExampleResult is the payload of a successful example lookup.
type ExampleResult struct {
	Content []string `json:"content"`
	Path    string   `json:"path"`
}

// ErrorResult is an application-level failure. It travels inside a successful response.
type ErrorResult struct {
	Error string `json:"error"`
}

// Errorf builds an ErrorResult from a format string.
func Errorf(format string, args ...any) ErrorResult {
	return ErrorResult{Error: fmt.Sprintf(format, args...)}
}

func standardHandler(store ResourceReader, standardID string) HandlerFunc {
	return func(_ context.Context, _ map[string]any) (any, error) {
		content, err := store.ReadStandard(standardID)
		if errors.Is(err, resources.ErrNotFound) {
			return Errorf("Standard %s not found", standardID), nil
		}
		if err != nil {
			return nil, err
		}
		return StandardResult{Content: content}, nil
	}
}

// exampleHandler reads the example named by the string argument field.
func exampleHandler(store ResourceReader, category resources.Category, field string) HandlerFunc {
	return func(_ context.Context, args map[string]any) (any, error) {
		name, ok := args[field].(string)
		if !ok || name == "" {
			return Errorf("%s name not specified", category.Kind()), nil
		}

		example, err := store.ReadExample(category, name)
		if errors.Is(err, resources.ErrNotFound) {
			return Errorf("%s %s not found", category.Kind(), name), nil
		}
		if err != nil {
			return nil, err
		}

		return ExampleResult{
			Content: []string{example.Content},
			Path:    example.File.RelativePath,
		}, nil
	}
}

func listExamplesHandler(store ResourceReader) HandlerFunc {
	return func(_ context.Context, _ map[string]any) (any, error) {
		return store.ListExamples(), nil
	}
}

// Handlers binds every catalog tool to its handler.
func Handlers(store ResourceReader) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		GetProjectStructure:   standardHandler(store, "project_structure"),
		GetAPICommunication:   standardHandler(store, "api_communication"),
		GetComponentDesign:    standardHandler(store, "component_design"),
		GetStateManagement:    standardHandler(store, "state_management"),
		GetComponentExample:   exampleHandler(store, resources.Components, "component_name"),
		GetHookExample:        exampleHandler(store, resources.Hooks, "hook_name"),
		GetServiceExample:     exampleHandler(store, resources.Services, "service_name"),
		GetScreenExample:      exampleHandler(store, resources.Screens, "screen_name"),
		GetThemeExample:       exampleHandler(store, resources.Themes, "theme_name"),
		ListAvailableExamples: listExamplesHandler(store),
	}
}
