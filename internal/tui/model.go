// Package tui provides the BubbleTea-based live view of the notification
// stack.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/creak/internal/ledger"
)

// refreshInterval re-reads the ledger so expiry countdowns and pruning
// stay current between file events.
const refreshInterval = time.Second

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
	store   *ledger.Store
	changes <-chan struct{}
	now     func() time.Time

	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model

	// State
	entries     []ledger.Entry
	selected    *ledger.Entry
	searchQuery string
	width       int
	height      int
	ready       bool

	keys KeyMap

	statusMsg string
	statusErr bool
}

// entryItem wraps an entry for the list component.
type entryItem struct {
	entry ledger.Entry
	now   time.Time
}

func (i entryItem) Title() string {
	return fmt.Sprintf("#%d %s", i.entry.ID, strings.Join(strings.Fields(i.entry.Summary), " "))
}

func (i entryItem) Description() string {
	parts := []string{i.entry.Position}
	if l := entryLabel(i.entry); l != "" {
		parts = append(parts, l)
	}
	parts = append(parts, fmt.Sprintf("pid %d", i.entry.PID), expiry(i.entry, i.now))
	return strings.Join(parts, " · ")
}

func (i entryItem) FilterValue() string {
	return i.entry.Summary + " " + i.entry.Name + " " + i.entry.Class + " " + i.entry.Position
}

func entryLabel(e ledger.Entry) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Class
}

// expiry describes when an entry's deadline falls relative to now.
func expiry(e ledger.Entry, now time.Time) string {
	if e.ExpiresAt == 0 {
		return "no timeout"
	}
	return "expires " + humanize.RelTime(time.UnixMilli(int64(e.ExpiresAt)), now, "ago", "from now")
}

// New creates a new TUI model. changes may be nil, in which case the view
// only refreshes on its timer.
func New(s *ledger.Store, changes <-chan struct{}) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Notification Stack"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	return Model{
		store:       s,
		changes:     changes,
		now:         time.Now,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		keys:        DefaultKeyMap(),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadEntries, m.watchForChanges, tick())
}

type entriesMsg struct {
	entries []ledger.Entry
	err     error
}

// loadEntries reads the pruned ledger.
func (m Model) loadEntries() tea.Msg {
	entries, err := m.store.List()
	return entriesMsg{entries: entries, err: err}
}

type changeMsg struct{}

// watchForChanges waits for the next ledger file event.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return changeMsg{}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

type clearedMsg struct {
	selector ledger.Selector
	removed  int
	err      error
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isErr: isErr} }
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	case entriesMsg:
		if msg.err != nil {
			return m, status("Failed to read stack: "+msg.err.Error(), true)
		}
		m.entries = msg.entries
		m.list.SetItems(m.buildListItems())
		return m, nil

	case changeMsg:
		return m, tea.Batch(m.loadEntries, m.watchForChanges)

	case tickMsg:
		return m, tea.Batch(m.loadEntries, tick())

	case clearedMsg:
		if msg.err != nil {
			return m, status("Clear failed: "+msg.err.Error(), true)
		}
		return m, tea.Batch(m.loadEntries, status(fmt.Sprintf("Cleared %d (%s)", msg.removed, msg.selector), false))

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeSearch {
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
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
	}
	return m, nil
}

func (m Model) selectedEntry() (ledger.Entry, bool) {
	item, ok := m.list.SelectedItem().(entryItem)
	return item.entry, ok
}

// clear removes every entry sel matches and signals its owner.
func (m Model) clear(sel ledger.Selector) tea.Cmd {
	return func() tea.Msg {
		n, err := m.store.Clear(sel)
		return clearedMsg{selector: sel, removed: n, err: err}
	}
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if e, ok := m.selectedEntry(); ok {
			m.openDetail(e)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if e, ok := m.selectedEntry(); ok {
			return m, copyToClipboard(e.Summary)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		data, err := json.MarshalIndent(m.visibleEntries(), "", "  ")
		if err != nil {
			return m, status("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Clear):
		if e, ok := m.selectedEntry(); ok {
			return m, m.clear(ledger.ByID(e.ID))
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearGroup):
		e, ok := m.selectedEntry()
		switch {
		case !ok:
			return m, nil
		case e.Name != "":
			return m, m.clear(ledger.ByName(e.Name))
		case e.Class != "":
			return m, m.clear(ledger.ByClass(e.Class))
		default:
			return m, status("Entry has no name or class", true)
		}

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadEntries
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openDetail(e ledger.Entry) {
	m.selected = &e
	m.mode = ModeDetail
	m.viewport.SetContent(m.renderDetail(e))
	m.viewport.GotoTop()
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.selected != nil {
			return m, copyToClipboard(m.selected.Summary)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.selected != nil {
			id := m.selected.ID
			m.mode = ModeList
			m.selected = nil
			return m, m.clear(ledger.ByID(id))
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
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		m.searchInput.Blur()
		if e, ok := m.selectedEntry(); ok {
			m.openDetail(e)
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

	// Live filtering: rebuild the list on each keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())
	return m, cmd
}

// visibleEntries returns the entries matching the current search.
func (m Model) visibleEntries() []ledger.Entry {
	if m.searchQuery == "" {
		return m.entries
	}
	query := strings.ToLower(m.searchQuery)
	var filtered []ledger.Entry
	for _, e := range m.entries {
		item := entryItem{entry: e}
		if strings.Contains(strings.ToLower(item.FilterValue()), query) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// buildListItems creates list items from the visible entries.
func (m Model) buildListItems() []list.Item {
	now := m.now()
	entries := m.visibleEntries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e, now: now}
	}
	return items
}

// renderDetail renders the detail view for an entry.
func (m Model) renderDetail(e ledger.Entry) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("#%d", e.ID)) + "\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label+": ") + value + "\n")
	}
	row("Position", e.Position)
	row("Height", fmt.Sprintf("%d (+%d gap)", e.Height, e.Gap))
	row("PID", fmt.Sprintf("%d", e.PID))
	if e.Name != "" {
		row("Name", e.Name)
	}
	if e.Class != "" {
		row("Class", e.Class)
	}
	row("Created", humanize.RelTime(time.UnixMilli(int64(e.CreatedAt)), m.now(), "ago", "from now"))
	row("Expiry", expiry(e, m.now()))
	row("Offset", fmt.Sprintf("%d", m.offsetOf(e)))

	sb.WriteString("\n" + labelStyle.Render("Summary:") + "\n")
	sb.WriteString(e.Summary + "\n")
	return sb.String()
}

// offsetOf is the stack offset the entry's popup currently sits at.
func (m Model) offsetOf(e ledger.Entry) int {
	var offset int
	for _, other := range m.entries {
		if other.ID >= e.ID {
			break
		}
		if other.Position == e.Position {
			offset += other.Extent()
		}
	}
	return offset
}

// copyToClipboard copies text to the system clipboard.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text)}
	}
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
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return s + "\n" + statusStyle.Render(m.statusMsg)
	}
	return s + "\n" + m.buildKeybindBar(m.width, ModeList)
}

func (m Model) viewDetail() string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Stack Entry")
	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)
	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Width(14)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	for i, section := range []string{"Navigation", "Entries", "Stack", "General"} {
		s += sectionStyle.Render(section) + "\n"
		for _, b := range m.keys.FullHelp()[i] {
			h := b.Help()
			s += keyStyle.Render("  "+h.Key) + h.Desc + "\n"
		}
		s += "\n"
	}
	return s + sectionStyle.Render("Press ? or esc to return")
}

// keybind is a status bar hint; earlier entries win when space runs out.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind
	switch mode {
	case ModeList:
		binds = []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"x", "clear"},
			{"?", "help"},
			{"/", "search"},
			{"X", "clear group"},
			{"c", "copy"},
			{"r", "refresh"},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"x", "clear"},
			{"c", "copy"},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "view"},
			{"esc", "close"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		next := item
		if result != "" {
			next = result + separator + item
		}
		if width > 0 && lipgloss.Width(next) > width {
			break
		}
		result = next
	}
	return style.Render(result)
}

// Run starts the TUI on store, refreshing on ledger file events.
func Run(store *ledger.Store) error {
	var changes <-chan struct{}
	watcher, err := ledger.NewWatcher(store)
	if err == nil {
		if err = watcher.Start(); err == nil {
			changes = watcher.Changes()
			defer func() { _ = watcher.Stop() }()
		}
	}
	if err != nil {
		// The refresh timer still keeps the view current.
		store.Logger().Warn("failed to watch stack file", "error", err)
	}

	p := tea.NewProgram(New(store, changes), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
