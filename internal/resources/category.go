package resources

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category identifies one of the resource trees served to callers.
type Category string

const (
	Standards  Category = "standards"
	Components Category = "components"
	Hooks      Category = "hooks"
	Services   Category = "services"
	Screens    Category = "screens"
	Themes     Category = "themes"
)

// ExamplesDir is the directory, relative to the resources root, that holds every example category.
const ExamplesDir = "code-examples/react-native"

// StandardExtension is the file extension of standards documents.
const StandardExtension = ".md"

// Extensions are the recognized example file extensions, in resolution order.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx"}

type categoryInfo struct {
	dir  string
	kind string
}

var categories = map[Category]categoryInfo{
	Standards:  {dir: "standards", kind: "Standard"},
	Components: {dir: ExamplesDir + "/components", kind: "Component"},
	Hooks:      {dir: ExamplesDir + "/hooks", kind: "Hook"},
	Services:   {dir: ExamplesDir + "/helper", kind: "Service"},
	Screens:    {dir: ExamplesDir + "/screens", kind: "Screen"},
	Themes:     {dir: ExamplesDir + "/theme", kind: "Theme"},
}

// ExampleCategories returns the example categories in listing order.
func ExampleCategories() []Category {
	return []Category{Components, Hooks, Services, Screens, Themes}
}

// ParseCategory converts a category name into a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("unknown category %q", name)
	}
	return c, nil
}

// Dir returns the category directory relative to the resources root, slash separated.
func (c Category) Dir() string {
	return categories[c].dir
}

// Kind returns the capitalized singular noun used in messages, e.g. "Component".
func (c Category) Kind() string {
	return categories[c].kind
}

// IsExample reports whether c is one of the example categories.
func (c Category) IsExample() bool {
	_, ok := categories[c]
	return ok && c != Standards
}

// HasExampleExtension reports whether name ends with a recognized example extension.
func HasExampleExtension(name string) bool {
	return exampleExtension(name) != ""
}

func exampleExtension(name string) string {
	ext := filepath.Ext(name)
	for _, known := range Extensions {
		if ext == known {
			return ext
		}
	}
	return ""
}

// Stem returns name without its final extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
