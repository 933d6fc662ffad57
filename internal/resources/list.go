package resources

import (
	"path/filepath"
	"strings"

	"rnstd/pkg/fileops"
)

// ExampleIndex lists the example stems available in each category.
type ExampleIndex struct {
	Components []string `json:"components"`
	Hooks      []string `json:"hooks"`
	Services   []string `json:"services"`
	Screens    []string `json:"screens"`
	Themes     []string `json:"themes"`
}

// Get returns the stems listed for c.
func (idx ExampleIndex) Get(c Category) []string {
	switch c {
	case Components:
		return idx.Components
	case Hooks:
		return idx.Hooks
	case Services:
		return idx.Services
	case Screens:
		return idx.Screens
	case Themes:
		return idx.Themes
	default:
		return nil
	}
}

// Total returns the number of stems across all categories.
func (idx ExampleIndex) Total() int {
	total := 0
	for _, c := range ExampleCategories() {
		total += len(idx.Get(c))
	}
	return total
}

// ListExamples returns the stems of the example files directly inside each category
// directory. Files are grouped by extension in Extensions order and sorted lexically
// within an extension. Hidden files and nested directories are not listed; a missing
// category directory yields an empty list.
func (s *Store) ListExamples() ExampleIndex {
	return ExampleIndex{
		Components: s.ListCategory(Components),
		Hooks:      s.ListCategory(Hooks),
		Services:   s.ListCategory(Services),
		Screens:    s.ListCategory(Screens),
		Themes:     s.ListCategory(Themes),
	}
}

// ListCategory returns the example stems for a single category. The result is never nil.
func (s *Store) ListCategory(c Category) []string {
	stems := []string{}
	if !c.IsExample() {
		return stems
	}

	dir := s.CategoryDir(c)
	files, err := listExampleFiles(dir)
	if err != nil {
		s.logger.Debug("Category directory unavailable", "category", c, "dir", dir, "error", err)
		return stems
	}

	for _, ext := range Extensions {
		for _, file := range files {
			if filepath.Ext(file.Name) == ext {
				stems = append(stems, strings.TrimSuffix(file.Name, ext))
			}
		}
	}
	return stems
}

// NestedExamples returns the example files below subdirectories of category c, as slash
// paths relative to the category directory in depth-first lexical order. These files are
// reachable by exact name or name plus extension but never by partial name, and they are
// not part of ListCategory. Hidden entries are ignored.
func (s *Store) NestedExamples(c Category) []string {
	nested := []string{}
	if !c.IsExample() {
		return nested
	}

	dir := s.CategoryDir(c)
	files, err := fileops.ScanWithFilter(dir, HasExampleExtension, fileops.DefaultScanOptions().MaxDepth)
	if err != nil {
		s.logger.Debug("Category directory unavailable", "category", c, "dir", dir, "error", err)
		return nested
	}

	for _, file := range files {
		if rel := filepath.ToSlash(file.Path); strings.Contains(rel, "/") {
			nested = append(nested, rel)
		}
	}
	return nested
}
