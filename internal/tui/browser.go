package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"rnstd/internal/logging"
	"rnstd/internal/resources"
	"rnstd/internal/tui/styles"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Catalog is the read side of the resource store the browser needs.
type Catalog interface {
	ListStandards() []string
	StandardInfo(standardID string) (resources.StandardInfo, error)
	ListExamples() resources.ExampleIndex
	ReadExample(c resources.Category, name string) (resources.Example, error)
}

// Entry is one browsable standard or example.
type Entry struct {
	Category resources.Category
	Name     string
	Summary  string
}

func (e Entry) Title() string       { return e.Name }
func (e Entry) Description() string { return e.Summary }
func (e Entry) FilterValue() string { return string(e.Category) + " " + e.Name }

func (e Entry) key() string { return string(e.Category) + "/" + e.Name }

// Entries lists every standard followed by every example, in listing order.
func Entries(catalog Catalog) []Entry {
	var entries []Entry
	for _, id := range catalog.ListStandards() {
		summary := "Standard"
		if info, err := catalog.StandardInfo(id); err == nil && info.Title != "" {
			summary = "Standard · " + info.Title
		}
		entries = append(entries, Entry{Category: resources.Standards, Name: id, Summary: summary})
	}

	index := catalog.ListExamples()
	for _, c := range resources.ExampleCategories() {
		for _, stem := range index.Get(c) {
			entries = append(entries, Entry{Category: c, Name: stem, Summary: c.Kind()})
		}
	}
	return entries
}

type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Quit         key.Binding
	Filter       key.Binding
	ToggleFormat key.Binding
	FocusLeft    key.Binding
	FocusRight   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:         key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ToggleFormat: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "toggle format")),
		FocusLeft:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "focus list")),
		FocusRight:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "focus preview")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.ToggleFormat, k.FocusRight, k.FocusLeft, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type focusedPane int

const (
	focusList focusedPane = iota
	focusPreview
)

type (
	debouncedPreviewMsg struct {
		key string
		seq uint64
	}

	previewRenderedMsg struct {
		key      string
		content  string
		renderID uint64
		cacheKey string
	}

	previewErrorMsg struct {
		key      string
		err      error
		renderID uint64
	}
)

// Options configures a Browser.
type Options struct {
	Logger *logging.AppLogger
	Width  int
	Height int
	// GlamourStyle overrides terminal background detection.
	GlamourStyle string
	// Plain starts with markdown rendering switched off.
	Plain    bool
	Debounce time.Duration
}

// Browser is a two pane view: every standard and example on the left, the rendered
// document on the right.
type Browser struct {
	logger  *logging.AppLogger
	catalog Catalog

	entries  []Entry
	list     list.Model
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	width  int
	height int
	focus  focusedPane

	useGlamour   bool
	glamourStyle string

	cache             *lruCache
	debounceDuration  time.Duration
	pendingDebounceID uint64
	renderCounter     uint64
	currentRenderID   uint64
}

func NewBrowser(catalog Catalog, opts Options) *Browser {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 30
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}

	entries := Entries(catalog)
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = e
	}

	entryList := list.New(items, list.NewDefaultDelegate(), width/3, height)
	entryList.Title = "Resources"
	entryList.SetShowStatusBar(false)
	entryList.SetFilteringEnabled(true)
	entryList.SetShowHelp(false)

	vp := viewport.New(width-width/3, height)
	vp.MouseWheelEnabled = true

	return &Browser{
		logger:           logger,
		catalog:          catalog,
		entries:          entries,
		list:             entryList,
		viewport:         vp,
		help:             help.New(),
		keys:             DefaultKeyMap(),
		width:            width,
		height:           height,
		useGlamour:       !opts.Plain,
		glamourStyle:     opts.GlamourStyle,
		cache:            newLRU(1 << 20),
		debounceDuration: debounce,
	}
}

// Run starts the browser on the terminal and blocks until the user quits or ctx ends.
func Run(ctx context.Context, catalog Catalog, logger *logging.AppLogger) error {
	b := NewBrowser(catalog, Options{Logger: logger})
	p := tea.NewProgram(b, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

func (b *Browser) Init() tea.Cmd {
	if b.glamourStyle == "" {
		b.glamourStyle = DetectGlamourStyle(50 * time.Millisecond)
		b.logger.Debug("Glamour style selected", "style", b.glamourStyle)
	}
	if sel, ok := b.selected(); ok {
		return b.scheduleDebouncedPreview(sel)
	}
	b.viewport.SetContent("No standards or examples found under the resources directory.")
	return nil
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	b.logger.LogMessage(msg)

	var cmds []tea.Cmd
	before, _ := b.selected()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		b.viewport, cmd = b.viewport.Update(msg)
		return b, cmd

	case list.FilterMatchesMsg:
		var cmd tea.Cmd
		b.list, cmd = b.list.Update(msg)
		return b, cmd

	case debouncedPreviewMsg:
		if msg.seq != b.pendingDebounceID {
			return b, nil
		}
		sel, ok := b.selected()
		if !ok || sel.key() != msg.key {
			return b, nil
		}
		if cached, ok := b.cache.Get(b.cacheKey(sel)); ok {
			b.viewport.SetContent(cached)
			return b, nil
		}
		return b, b.renderPreview(sel)

	case previewRenderedMsg:
		b.cache.Add(msg.cacheKey, msg.content)
		if sel, ok := b.selected(); ok && sel.key() == msg.key && msg.renderID >= b.currentRenderID {
			b.currentRenderID = msg.renderID
			b.viewport.SetContent(msg.content)
			b.viewport.GotoTop()
		}
		return b, nil

	case previewErrorMsg:
		if sel, ok := b.selected(); ok && sel.key() == msg.key && msg.renderID >= b.currentRenderID {
			b.currentRenderID = msg.renderID
			b.logger.Error("Failed to render preview", "entry", msg.key, "error", msg.err)
			b.viewport.SetContent(styles.ErrorStyle.Render(fmt.Sprintf("Cannot show %s: %v", msg.key, msg.err)))
		}
		return b, nil

	case tea.KeyMsg:
		if b.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			b.list, cmd = b.list.Update(msg)
			cmds = append(cmds, cmd)
			if b.list.FilterState() != list.Filtering {
				if sel, ok := b.selected(); ok {
					cmds = append(cmds, b.scheduleDebouncedPreview(sel))
				}
			}
			return b, tea.Batch(cmds...)
		}

		if msg.String() == "esc" && b.list.FilterState() == list.FilterApplied {
			var cmd tea.Cmd
			b.list, cmd = b.list.Update(msg)
			cmds = append(cmds, cmd)
			if sel, ok := b.selected(); ok {
				cmds = append(cmds, b.scheduleDebouncedPreview(sel))
			}
			return b, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.FocusRight):
			b.focus = focusPreview
			return b, nil
		case key.Matches(msg, b.keys.FocusLeft):
			b.focus = focusList
			return b, nil
		case key.Matches(msg, b.keys.ToggleFormat):
			b.useGlamour = !b.useGlamour
			if sel, ok := b.selected(); ok {
				if cached, ok := b.cache.Get(b.cacheKey(sel)); ok {
					b.viewport.SetContent(cached)
					return b, nil
				}
				return b, b.renderPreview(sel)
			}
			return b, nil
		}

		if b.focus == focusPreview {
			var cmd tea.Cmd
			b.viewport, cmd = b.viewport.Update(msg)
			return b, cmd
		}

		var cmd tea.Cmd
		b.list, cmd = b.list.Update(msg)
		cmds = append(cmds, cmd)

		if after, ok := b.selected(); ok && after.key() != before.key() && b.list.FilterState() != list.Filtering {
			if cached, ok := b.cache.Get(b.cacheKey(after)); ok {
				b.viewport.SetContent(cached)
			} else {
				cmds = append(cmds, b.scheduleDebouncedPreview(after))
			}
		}
		return b, tea.Batch(cmds...)
	}

	return b, nil
}

func (b *Browser) View() string {
	header := styles.TitleStyle.Render("React Native standards")
	header = lipgloss.JoinVertical(lipgloss.Left, header, styles.SubtitleStyle.Render(b.subtitle()))
	header = styles.HeaderContainerStyle.Render(header)

	listStyle, vpStyle := styles.PaneStyle, styles.PaneStyle
	if b.focus == focusList {
		listStyle = styles.PaneFocusedStyle
	} else {
		vpStyle = styles.PaneFocusedStyle
	}
	listStyle = listStyle.Width(b.list.Width()).Height(b.list.Height())
	vpStyle = vpStyle.Width(b.viewport.Width).Height(b.viewport.Height)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Render(b.list.View()),
		vpStyle.Render(b.viewport.View()),
	)
	panes = styles.MainContainerStyle.Render(panes)

	helpView := styles.HelpContainerStyle.Render(styles.HelpStyle.Render(b.help.View(b.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, header, panes, helpView)
}

func (b *Browser) subtitle() string {
	standards := 0
	for _, e := range b.entries {
		if e.Category == resources.Standards {
			standards++
		}
	}
	return fmt.Sprintf("%d standards · %d examples", standards, len(b.entries)-standards)
}

func (b *Browser) resize(width, height int) {
	b.width, b.height = width, height
	b.help.Width = width

	frameW, frameH := styles.PaneStyle.GetFrameSize()
	const mainLeftMargin = 1
	avail := max(width-frameW*2-mainLeftMargin, 0)

	listWidth := max(avail/3, 20)
	vpWidth := max(avail-listWidth, 30)

	headerH := lipgloss.Height(styles.HeaderContainerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("x"), styles.SubtitleStyle.Render("x"))))
	helpH := lipgloss.Height(styles.HelpContainerStyle.Render(styles.HelpStyle.Render(b.help.View(b.keys))))
	contentHeight := max(height-headerH-helpH-frameH, 5)

	b.list.SetSize(listWidth, contentHeight)
	b.viewport.Width = vpWidth
	b.viewport.Height = contentHeight
	b.logger.Debug("Window resized", "width", width, "height", height, "list_width", listWidth, "viewport_width", vpWidth)
}

func (b *Browser) selected() (Entry, bool) {
	e, ok := b.list.SelectedItem().(Entry)
	return e, ok
}

func (b *Browser) cacheKey(e Entry) string {
	format := "plain"
	if b.useGlamour {
		format = "glamour"
	}
	return fmt.Sprintf("%s|%s|%d", e.key(), format, b.viewport.Width)
}

func (b *Browser) scheduleDebouncedPreview(e Entry) tea.Cmd {
	b.viewport.SetContent("Loading " + e.key() + "...")
	seq := atomic.AddUint64(&b.pendingDebounceID, 1)
	k := e.key()
	return tea.Tick(b.debounceDuration, func(time.Time) tea.Msg {
		return debouncedPreviewMsg{key: k, seq: seq}
	})
}

func (b *Browser) renderPreview(e Entry) tea.Cmd {
	renderID := atomic.AddUint64(&b.renderCounter, 1)
	useGlamour, style := b.useGlamour, b.glamourStyle
	width := max(b.viewport.Width-2, 20)
	cacheKey := b.cacheKey(e)

	return func() tea.Msg {
		start := time.Now()
		defer b.logger.LogPerformance("render preview", start)

		content, err := b.preview(e, useGlamour, style, width)
		if err != nil {
			return previewErrorMsg{key: e.key(), err: err, renderID: renderID}
		}
		return previewRenderedMsg{key: e.key(), content: content, renderID: renderID, cacheKey: cacheKey}
	}
}

func (b *Browser) preview(e Entry, useGlamour bool, style string, width int) (string, error) {
	var md, plain string
	source := false
	if e.Category == resources.Standards {
		info, err := b.catalog.StandardInfo(e.Name)
		if err != nil {
			return "", err
		}
		md = StandardMarkdown(info)
		plain = info.Body
	} else {
		ex, err := b.catalog.ReadExample(e.Category, e.Name)
		if err != nil {
			return "", err
		}
		md = ExampleMarkdown(e.Category, e.Name, ex)
		plain = ex.File.RelativePath + "\n\n" + ex.Content
		source = true
	}

	if !useGlamour {
		return PlainText(plain, width, source), nil
	}
	return RenderMarkdown(md, style, width)
}
