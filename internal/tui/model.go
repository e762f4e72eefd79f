// Package tui provides the BubbleTea-based window browser.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/labwin/internal/config"
	"github.com/jmylchreest/labwin/internal/model"
)

// Source is the window manager the TUI drives. *dbus.Client satisfies it.
type Source interface {
	List(ctx context.Context) ([]model.WindowInfo, error)
	Open(ctx context.Context, label, title, content string, allowMultiple bool, payload any) (string, error)
	Close(ctx context.Context, label string) error
	CloseAll(ctx context.Context) error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	cfg    *config.Config
	source Source

	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	windows     []model.WindowInfo
	selected    *model.WindowInfo
	searchQuery string
	width       int
	height      int
	ready       bool

	keys KeyMap

	statusMsg string
	statusErr bool

	// changes signals that the window list changed on the daemon side.
	changes <-chan struct{}
}

// windowItem wraps a window for the list component.
type windowItem struct {
	info model.WindowInfo
}

func (i windowItem) Title() string {
	return i.info.Instance
}

func (i windowItem) Description() string {
	return fmt.Sprintf("[%s] %s - opened %s", i.info.Label, i.info.Mode(), i.info.Age())
}

func (i windowItem) FilterValue() string {
	return i.info.Instance + " " + i.info.Label
}

// windowDelegate renders singleton windows in a distinct color.
type windowDelegate struct {
	list.DefaultDelegate
}

func newWindowDelegate() windowDelegate {
	return windowDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item.
func (d windowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	wi, ok := item.(windowItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	titleStyle := d.DefaultDelegate.Styles.NormalTitle
	descStyle := d.DefaultDelegate.Styles.NormalDesc
	if isSelected {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	}
	if wi.info.Singleton {
		titleStyle = titleStyle.Foreground(lipgloss.Color("12"))
	}

	title := truncate(wi.Title(), itemWidth)
	desc := truncate(wi.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

func truncate(s string, width int) string {
	if width > 1 && len(s) > width {
		return s[:width-1] + "…"
	}
	return s
}

// New creates a new TUI model.
func New(cfg *config.Config, source Source, changes <-chan struct{}) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, newWindowDelegate(), 0, 0)
	l.Title = "Open Windows"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	return Model{
		cfg:         cfg,
		source:      source,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		changes:     changes,
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadWindows,
		m.tick(),
		m.watchForChanges,
	)
}

type windowsMsg struct {
	windows []model.WindowInfo
	err     error
}

type tickMsg struct{}

type changedMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// callContext bounds one call to the source.
func (m Model) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cfg.Bus.CallTimeout.Duration())
}

// loadWindows fetches the window list from the source.
func (m Model) loadWindows() tea.Msg {
	if m.source == nil {
		return windowsMsg{}
	}
	ctx, cancel := m.callContext()
	defer cancel()

	windows, err := m.source.List(ctx)
	if err == nil {
		model.SortByOpened(windows)
	}
	return windowsMsg{windows: windows, err: err}
}

// tick schedules the next periodic refresh.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TUI.RefreshInterval.Duration(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// watchForChanges waits for a change notification.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return changedMsg{}
}

// action runs fn against the source and reports done as a status line.
func (m Model) action(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()

		if err := fn(ctx); err != nil {
			return statusMsg{text: err.Error(), isErr: true}
		}
		return statusMsg{text: done}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case windowsMsg:
		if msg.err != nil {
			m.statusMsg = "Refresh failed: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		m.windows = msg.windows
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadWindows, m.tick())

	case changedMsg:
		return m, tea.Batch(m.loadWindows, m.watchForChanges)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Batch(
			m.loadWindows,
			tea.Tick(3*time.Second, func(time.Time) tea.Msg {
				return clearStatusMsg{}
			}),
		)

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
	}
	return m, nil
}

func (m Model) selectedWindow() (model.WindowInfo, bool) {
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		return model.WindowInfo{}, false
	}
	return item.info, true
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if info, ok := m.selectedWindow(); ok {
			m = m.showDetail(info)
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if info, ok := m.selectedWindow(); ok {
			return m, m.focus(info)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if info, ok := m.selectedWindow(); ok {
			return m, m.copyToClipboard(info.Instance)
		}
		return m, nil

	case key.Matches(msg, m.keys.Close):
		if info, ok := m.selectedWindow(); ok {
			return m, m.close(info)
		}
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		return m, m.action("Closed all windows", func(ctx context.Context) error {
			return m.source.CloseAll(ctx)
		})

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadWindows
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.selected != nil {
			return m, m.focus(*m.selected)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.selected != nil {
			return m, m.copyToClipboard(m.selected.Instance)
		}
		return m, nil

	case key.Matches(msg, m.keys.Close):
		if m.selected != nil {
			info := *m.selected
			m.mode = ModeList
			m.selected = nil
			return m, m.close(info)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		m.searchInput.Blur()
		if info, ok := m.selectedWindow(); ok {
			m = m.showDetail(info)
		} else {
			m.mode = ModeList
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())
	return m, cmd
}

func (m Model) showDetail(info model.WindowInfo) Model {
	m.selected = &info
	m.mode = ModeDetail
	m.viewport.SetContent(renderDetail(info))
	m.viewport.GotoTop()
	return m
}

// focus re-opens a singleton window, which raises it. Multi-instance
// windows cannot be re-opened without creating a new one.
func (m Model) focus(info model.WindowInfo) tea.Cmd {
	if !info.Singleton {
		return func() tea.Msg {
			return statusMsg{text: "Only singleton windows can be focused", isErr: true}
		}
	}
	return m.action("Focused "+info.Instance, func(ctx context.Context) error {
		_, err := m.source.Open(ctx, info.Label, "", "", false, nil)
		return err
	})
}

func (m Model) close(info model.WindowInfo) tea.Cmd {
	return m.action("Closed "+info.Instance, func(ctx context.Context) error {
		return m.source.Close(ctx, info.Instance)
	})
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := copyText(text, m.cfg); err != nil {
			return statusMsg{text: "Copy failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Copied to clipboard"}
	}
}

// buildListItems creates list items from the windows matching the search.
func (m Model) buildListItems() []list.Item {
	items := make([]list.Item, 0, len(m.windows))
	for _, w := range m.windows {
		if w.Matches(m.searchQuery) {
			items = append(items, windowItem{info: w})
		}
	}
	return items
}

// renderDetail renders the detail view for a window.
func renderDetail(info model.WindowInfo) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(info.Instance) + "\n\n")
	b.WriteString(labelStyle.Render("Label: ") + info.Label + "\n")
	b.WriteString(labelStyle.Render("Mode: ") + info.Mode() + "\n")
	b.WriteString(labelStyle.Render("Opened: ") + info.Time().Format(time.RFC3339) + " (" + info.Age() + ")\n")
	b.WriteString(labelStyle.Render("ID: ") + info.ID + "\n")

	if data, err := yaml.Marshal(info); err == nil {
		b.WriteString("\n" + labelStyle.Render("Record:") + "\n")
		b.WriteString(string(data))
	}
	return b.String()
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, ModeList)
	}
	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Window Detail")
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	m.help.ShowAll = true
	m.help.Width = m.width

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		m.help.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within width, most
// important first.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"?", "help"},
			{"f", "focus"},
			{"d", "close"},
			{"/", "search"},
			{"D", "close all"},
			{"c", "copy"},
			{"r", "refresh"},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"f", "focus"},
			{"d", "close"},
			{"c", "copy"},
			{"j/k", "scroll"},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "view"},
			{"esc", "close"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	var rendered, plain []string
	plainLen := 0
	for _, b := range binds {
		item := b.key + " " + b.desc
		next := plainLen + len(item)
		if len(plain) > 0 {
			next += len(separator)
		}
		if width > 0 && next > width {
			break
		}
		plainLen = next
		plain = append(plain, item)
		rendered = append(rendered, keyStyle.Render(b.key)+" "+b.desc)
	}

	return style.Render(strings.Join(rendered, separator))
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config  *config.Config
	Source  Source
	Changes <-chan struct{} // optional push notifications of window changes
}

// Run starts the TUI.
func Run(opts RunOptions) error {
	m := New(opts.Config, opts.Source, opts.Changes)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
