package resources

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// StandardMatter is the optional YAML front matter carried by standards documents.
type StandardMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// StandardInfo describes a standards document for display purposes.
type StandardInfo struct {
	ID          string
	Title       string
	Description string
	// Body is the document text without front matter.
	Body string
	Size int64
}

// KnownStandards are the standards documents exposed through the tool catalog.
var KnownStandards = []string{
	"project_structure",
	"api_communication",
	"component_design",
	"state_management",
}

// StandardInfo reads standards/{standardID}.md and parses its front matter. Documents
// without front matter get their title from the first markdown heading, or from the id.
func (s *Store) StandardInfo(standardID string) (StandardInfo, error) {
	content, err := s.ReadStandard(standardID)
	if err != nil {
		return StandardInfo{}, err
	}
	return ParseStandard(standardID, content)
}

// ParseStandard splits content into front matter and body.
func ParseStandard(standardID, content string) (StandardInfo, error) {
	var matter StandardMatter
	body, err := frontmatter.Parse(strings.NewReader(content), &matter)
	if err != nil {
		return StandardInfo{}, fmt.Errorf("invalid front matter in standard %s: %w", standardID, err)
	}

	info := StandardInfo{
		ID:          standardID,
		Title:       strings.TrimSpace(matter.Title),
		Description: strings.TrimSpace(matter.Description),
		Body:        string(body),
		Size:        int64(len(content)),
	}
	if info.Title == "" {
		info.Title = firstHeading(body)
	}
	if info.Title == "" {
		info.Title = standardID
	}
	return info, nil
}

// ListStandards returns the ids of every standards document present on disk, sorted.
func (s *Store) ListStandards() []string {
	ids := []string{}
	files, err := listFiles(s.CategoryDir(Standards), func(name string) bool {
		return strings.HasSuffix(name, StandardExtension)
	})
	if err != nil {
		s.logger.Debug("Standards directory unavailable", "error", err)
		return ids
	}
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(file.Name, StandardExtension))
	}
	return ids
}

func firstHeading(body []byte) string {
	for _, line := range bytes.Split(body, []byte("\n")) {
		trimmed := strings.TrimSpace(string(line))
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
