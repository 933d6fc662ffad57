package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rnstd/internal/resources"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/muesli/termenv"
)

// DetectGlamourStyle picks "dark" or "light" from the terminal background. A concrete
// GLAMOUR_STYLE wins; detection that does not answer within timeout falls back to "dark".
func DetectGlamourStyle(timeout time.Duration) string {
	style := os.Getenv("GLAMOUR_STYLE")
	if style != "" && style != "auto" {
		return style
	}

	ch := make(chan string, 1)
	go func() {
		if termenv.NewOutput(os.Stdout).HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case s := <-ch:
		return s
	case <-time.After(timeout):
		return "dark"
	}
}

// RenderMarkdown renders md for a terminal of the given width.
func RenderMarkdown(md, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// StandardMarkdown is the document body shown for a standard; front matter is dropped.
func StandardMarkdown(info resources.StandardInfo) string {
	return info.Body
}

// ExampleMarkdown wraps example source in a fenced block so it gets syntax highlighting.
func ExampleMarkdown(c resources.Category, name string, ex resources.Example) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", c.Kind(), name)
	fmt.Fprintf(&b, "`%s` (%s match)\n\n", ex.File.RelativePath, ex.Match)
	fmt.Fprintf(&b, "```%s\n%s\n```\n", fenceLanguage(ex.File.RelativePath), strings.TrimRight(ex.Content, "\n"))
	return b.String()
}

// PlainText wraps text for display without markdown rendering. Prose is word wrapped;
// source lines are hard wrapped so indentation survives.
func PlainText(text string, width int, source bool) string {
	if width <= 0 {
		return text
	}
	if source {
		return wrap.String(text, width)
	}
	return wordwrap.String(text, width)
}

func fenceLanguage(path string) string {
	switch filepath.Ext(path) {
	case ".ts", ".tsx":
		return "tsx"
	case ".js", ".jsx":
		return "jsx"
	default:
		return ""
	}
}
