package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rnstd/internal/logging"
	"rnstd/internal/resources"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTree = map[string]string{
	"standards/project_structure.md": "---\ntitle: Project Structure\n---\n# Project Structure\n\nUse feature folders.\n",
	"standards/state_management.md":  "# State Management\n\nKeep state local.\n",
	"code-examples/react-native/components/Button.tsx": "export const Button = () => null;\n",
	"code-examples/react-native/hooks/useAuth.ts":      "export function useAuth() {}\n",
	"code-examples/react-native/theme/colors.js":       "export const colors = {};\n",
}

func newTestCatalog(t *testing.T) *resources.Store {
	t.Helper()
	root := filepath.Join(t.TempDir(), "resources")
	for rel, content := range testTree {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	store, err := resources.NewStore(root, resources.Options{})
	require.NoError(t, err)
	return store
}

func newTestBrowser(t *testing.T) *Browser {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewBrowser(newTestCatalog(t), Options{
		Logger:       logger,
		Width:        100,
		Height:       30,
		GlamourStyle: "notty",
		Plain:        true,
		Debounce:     time.Millisecond,
	})
}

// runCmd executes cmd and feeds the resulting messages back into the browser.
func runCmd(b *Browser, cmd tea.Cmd) {
	for i := 0; cmd != nil && i < 8; i++ {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				runCmd(b, c)
			}
			return
		}
		_, cmd = b.Update(msg)
	}
}

func TestEntries_Order(t *testing.T) {
	entries := Entries(newTestCatalog(t))

	var got []string
	for _, e := range entries {
		got = append(got, e.key())
	}
	assert.Equal(t, []string{
		"standards/project_structure",
		"standards/state_management",
		"components/Button",
		"hooks/useAuth",
		"themes/colors",
	}, got)

	assert.Equal(t, "Standard · Project Structure", entries[0].Description())
	assert.Equal(t, "Standard · State Management", entries[1].Description())
	assert.Equal(t, "Component", entries[2].Description())
	assert.Equal(t, "components Button", entries[2].FilterValue())
}

func TestEntries_EmptyTree(t *testing.T) {
	store, err := resources.NewStore(filepath.Join(t.TempDir(), "missing"), resources.Options{})
	require.NoError(t, err)
	assert.Empty(t, Entries(store))

	b := NewBrowser(store, Options{GlamourStyle: "notty"})
	assert.Nil(t, b.Init())
	assert.Contains(t, b.View(), "No standards or examples found")
}

func TestBrowser_PreviewPlain(t *testing.T) {
	b := newTestBrowser(t)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	runCmd(b, b.Init())

	view := b.View()
	assert.Contains(t, view, "React Native standards")
	assert.Contains(t, view, "2 standards · 3 examples")
	assert.Contains(t, view, "Use feature folders.")
	assert.NotContains(t, view, "title: Project Structure", "front matter is not shown")
}

func TestBrowser_SelectionChangeRendersExample(t *testing.T) {
	b := newTestBrowser(t)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	runCmd(b, b.Init())

	for range 2 {
		_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyDown})
		runCmd(b, cmd)
	}

	sel, ok := b.selected()
	require.True(t, ok)
	assert.Equal(t, "components/Button", sel.key())
	assert.Contains(t, b.View(), "export const Button")
}

func TestBrowser_ToggleFormatUsesCache(t *testing.T) {
	b := newTestBrowser(t)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	runCmd(b, b.Init())
	cachedPlain := b.cache.Len()
	require.Equal(t, 1, cachedPlain)

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	require.NotNil(t, cmd, "first toggle renders with glamour")
	runCmd(b, cmd)
	assert.True(t, b.useGlamour)
	assert.Equal(t, 2, b.cache.Len())
	assert.Contains(t, b.View(), "feature folders")

	_, cmd = b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Nil(t, cmd, "toggling back is served from cache")
	assert.False(t, b.useGlamour)
}

func TestBrowser_PreviewError(t *testing.T) {
	b := newTestBrowser(t)
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	runCmd(b, b.Init())

	require.NoError(t, os.Remove(filepath.Join(b.catalog.(*resources.Store).Root(), "standards", "state_management.md")))
	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyDown})
	runCmd(b, cmd)

	assert.Contains(t, b.View(), "Cannot show standards/state_management")
}

func TestBrowser_FocusKeys(t *testing.T) {
	b := newTestBrowser(t)

	b.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, focusPreview, b.focus)

	// Scroll keys go to the preview while it has focus.
	b.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, _ := b.selected()
	assert.Equal(t, "standards/project_structure", sel.key())

	b.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, focusList, b.focus)
}

func TestBrowser_StalePreviewIgnored(t *testing.T) {
	b := newTestBrowser(t)
	b.currentRenderID = 5
	b.viewport.SetContent("current")

	b.Update(previewRenderedMsg{key: "standards/project_structure", content: "stale", renderID: 4, cacheKey: "k"})
	assert.Contains(t, b.viewport.View(), "current")

	b.Update(previewRenderedMsg{key: "components/Button", content: "other", renderID: 6, cacheKey: "k2"})
	assert.Contains(t, b.viewport.View(), "current", "previews for unselected entries are cached only")
	assert.Equal(t, 2, b.cache.Len())
}

func TestBrowser_Teatest(t *testing.T) {
	tm := teatest.NewTestModel(t, newTestBrowser(t), teatest.WithInitialTermSize(100, 30))

	waitForString(t, tm, "Use feature folders.")

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	waitForString(t, tm, "export const Button")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(*Browser)
	require.True(t, ok)
	sel, ok := final.selected()
	require.True(t, ok)
	assert.Equal(t, "components/Button", sel.key())
}

func TestLRUCache_Evicts(t *testing.T) {
	c := newLRU(10)
	c.Add("a", "12345")
	c.Add("b", "12345")
	_, _ = c.Get("a")
	c.Add("c", "12345")

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)

	c.Add("huge", strings.Repeat("x", 11))
	_, ok := c.Get("huge")
	assert.False(t, ok)
}

func TestExampleMarkdown(t *testing.T) {
	ex := resources.Example{
		Content: "export const Button = () => null;\n",
		File:    resources.ResolvedFile{RelativePath: "resources/code-examples/react-native/components/Button.tsx"},
		Match:   resources.MatchExact,
	}
	md := ExampleMarkdown(resources.Components, "Button", ex)
	assert.Contains(t, md, "# Component Button")
	assert.Contains(t, md, "(exact match)")
	assert.Contains(t, md, "```tsx\nexport const Button = () => null;\n```")

	rendered, err := RenderMarkdown(md, "notty", 80)
	require.NoError(t, err)
	assert.Contains(t, rendered, "export const Button")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "one two\nthree", PlainText("one two three", 7, false))
	assert.Equal(t, "abcd\nefgh", PlainText("abcdefgh", 4, true))
	assert.Equal(t, "unchanged", PlainText("unchanged", 0, false))
}

func waitForString(t *testing.T, tm *teatest.TestModel, s string) {
	t.Helper()
	teatest.WaitFor(
		t,
		tm.Output(),
		func(b []byte) bool {
			return strings.Contains(string(b), s)
		},
		teatest.WithCheckInterval(50*time.Millisecond),
		teatest.WithDuration(3*time.Second),
	)
}
