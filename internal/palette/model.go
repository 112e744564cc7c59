// Package palette implements the interactive picker TUI: tabbed
// search surfaces over ranking engines, with debounced keystrokes and
// highlighted match positions.
package palette

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mhoffs/typeahead/internal/filter"
	"github.com/mhoffs/typeahead/internal/typo"
)

// defaultDebounce is the delay after the last keystroke before a rank
// runs. Callers normally override it from config.
const defaultDebounce = 150 * time.Millisecond

// paletteState represents the current state of the palette's state
// machine.
type paletteState int

const (
	stateIdle      paletteState = iota // Before the first source load
	stateLoading                       // Source load in progress
	stateReady                         // Pool loaded; ranking on keystrokes
	stateError                         // Source load failed
	stateCancelled                     // User cancelled (Esc / Ctrl+C)
)

// sourceLoadedMsg is sent when an async Source.Load completes.
type sourceLoadedMsg struct {
	tab        int
	loadID     uint64
	candidates []filter.Candidate
	err        error
}

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match the current debounceID to be accepted
}

// initMsg is sent by Init() to trigger the first load via Update(),
// ensuring state mutations are visible to the Bubble Tea runtime.
type initMsg struct{}

// Options configures a palette Model.
type Options struct {
	Tabs     []Tab
	PageSize int
	Debounce time.Duration

	// Query pre-fills the search input; the first load ranks it.
	Query string

	// Typos supplies "did you mean" corrections for tabs that enable
	// TypoHints. Nil disables the feature.
	Typos *typo.Suggester
}

// Model is the Bubble Tea model for the palette TUI.
type Model struct {
	state  paletteState
	tabs   []Tab
	active int

	input textinput.Model

	// pools holds each tab's candidates once its source has loaded.
	// Keystrokes rank in memory; a tab's source runs at most once.
	pools  [][]filter.Candidate
	loaded []bool

	result      filter.Result
	selection   int // Index into result.Items; -1 when empty
	suggestions []typo.Suggestion
	err         error

	pageSize int
	debounce time.Duration
	typos    *typo.Suggester

	width  int
	height int

	loadID     uint64 // Monotonic counter for stale load detection
	debounceID uint64 // Only a matching debounceMsg triggers a rank

	// cancelLoad cancels the in-flight Source.Load context.
	cancelLoad context.CancelFunc

	chosen    bool
	choice    filter.Match
	chosenTab int
}

// NewModel creates a palette over the given tabs.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type to search"
	ti.SetValue(opts.Query)
	ti.Focus()

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return Model{
		state:     stateIdle,
		tabs:      opts.Tabs,
		input:     ti,
		pools:     make([][]filter.Candidate, len(opts.Tabs)),
		loaded:    make([]bool, len(opts.Tabs)),
		selection: -1,
		pageSize:  pageSize,
		debounce:  debounce,
		typos:     opts.Typos,
	}
}

// Choice returns the picked match and the tab it came from. ok is
// false when the palette was cancelled or nothing was selected.
func (m Model) Choice() (choice filter.Match, tab Tab, ok bool) {
	if !m.chosen {
		return filter.Match{}, Tab{}, false
	}
	return m.choice, m.tabs[m.chosenTab], true
}

// Query returns the current search input.
func (m Model) Query() string {
	return m.input.Value()
}

// Init implements tea.Model. The first load is triggered through
// Update so its state mutations are captured by the runtime.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return initMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if limit := m.maxSelectable(); m.selection >= limit {
			m.selection = limit - 1
		}
		return m, nil

	case sourceLoadedMsg:
		return m.handleSourceLoaded(msg)

	case debounceMsg:
		return m.handleDebounce(msg)

	case initMsg:
		return m, m.startLoad()
	}

	// Cursor blinks and other component messages go to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input. Navigation keys are intercepted;
// everything else edits the query through the text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.state = stateCancelled
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEnter:
		if m.selection >= 0 && m.selection < len(m.result.Items) {
			m.chosen = true
			m.choice = m.result.Items[m.selection]
			m.chosenTab = m.active
		}
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlP:
		if m.selection > 0 {
			m.selection--
		}
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.selection < m.maxSelectable()-1 {
			m.selection++
		}
		return m, nil

	case tea.KeyTab:
		return m.switchTab(1)

	case tea.KeyShiftTab:
		return m.switchTab(-1)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.startDebounce())
}

// startDebounce increments the debounce counter and returns a
// tea.Tick command that fires after the debounce delay.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// handleDebounce ranks if the debounce timer is still current.
func (m Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.debounceID {
		return m, nil // Stale debounce timer; ignore.
	}
	if m.state != stateReady {
		// Pool still loading; the load completion ranks with the
		// query as it stands then.
		return m, nil
	}
	m.rank()
	return m, nil
}

// switchTab activates the next tab in dir, loading its source on
// first visit and ranking the current query against its pool.
func (m Model) switchTab(dir int) (tea.Model, tea.Cmd) {
	if len(m.tabs) < 2 {
		return m, nil
	}
	m.active = (m.active + dir + len(m.tabs)) % len(m.tabs)
	m.suggestions = nil
	if !m.loaded[m.active] {
		return m, m.startLoad()
	}
	m.state = stateReady
	m.err = nil
	m.rank()
	return m, nil
}

// startLoad cancels any in-flight load, bumps the load counter and
// returns a tea.Cmd that runs the active tab's source.
func (m *Model) startLoad() tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	m.cancelInflight()
	m.state = stateLoading
	m.loadID++

	id := m.loadID
	tab := m.active
	src := m.tabs[tab].Source
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelLoad = cancel

	return func() tea.Msg {
		candidates, err := src.Load(ctx)
		return sourceLoadedMsg{tab: tab, loadID: id, candidates: candidates, err: err}
	}
}

// handleSourceLoaded stores the loaded pool and ranks it if the tab is
// still the active one.
func (m Model) handleSourceLoaded(msg sourceLoadedMsg) (tea.Model, tea.Cmd) {
	// Discard stale loads.
	if msg.loadID != m.loadID {
		return m, nil
	}

	if msg.err != nil {
		// A cancelled load for a tab the user already left must not
		// disturb the active tab's view.
		if msg.tab != m.active {
			return m, nil
		}
		m.state = stateError
		m.err = msg.err
		m.result = filter.Result{}
		m.selection = -1
		return m, nil
	}

	m.pools[msg.tab] = msg.candidates
	m.loaded[msg.tab] = true
	if msg.tab != m.active {
		return m, nil
	}

	m.state = stateReady
	m.err = nil
	m.rank()
	return m, nil
}

// cancelInflight cancels any in-progress source load.
func (m *Model) cancelInflight() {
	if m.cancelLoad != nil {
		m.cancelLoad()
		m.cancelLoad = nil
	}
}

// rank runs the active engine over the tab's pool with the current
// query. Ranking is in-memory and fast enough to run inside Update.
func (m *Model) rank() {
	tab := m.tabs[m.active]
	query := m.input.Value()
	m.result = tab.Engine.Rank(m.pools[m.active], query, m.pageSize)
	if len(m.result.Items) > 0 {
		m.selection = 0
	} else {
		m.selection = -1
	}
	m.refreshSuggestions(query)
}

// refreshSuggestions computes "did you mean" hints when a query on a
// TypoHints tab matched nothing.
func (m *Model) refreshSuggestions(query string) {
	m.suggestions = nil
	if m.typos == nil || !m.tabs[m.active].TypoHints {
		return
	}
	if m.result.Total > 0 || strings.TrimSpace(query) == "" {
		return
	}
	word, _ := filter.SplitInput(query)
	if word == "" {
		return
	}
	pool := m.pools[m.active]
	names := make([]string, 0, len(pool))
	for _, c := range pool {
		names = append(names, c.Text)
	}
	m.suggestions = m.typos.Suggest(word, names)
}

// maxSelectable bounds the selection by what is actually on screen.
func (m Model) maxSelectable() int {
	n := len(m.result.Items)
	if rows := m.visibleRows(); n > rows {
		n = rows
	}
	return n
}

// visibleRows bounds the list by the configured page size and the
// terminal height (tab bar, input and status take three rows).
func (m Model) visibleRows() int {
	rows := m.pageSize
	if m.height > 0 {
		avail := m.height - 3
		if avail < 1 {
			avail = 1
		}
		if rows > avail {
			rows = avail
		}
	}
	return rows
}

// --- View rendering ---

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	detailStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTabBar())
	b.WriteRune('\n')

	b.WriteString(m.input.View())
	b.WriteRune('\n')

	b.WriteString(m.viewContent())
	b.WriteRune('\n')

	b.WriteString(m.viewStatus())

	return b.String()
}

// viewTabBar renders the tab bar.
func (m Model) viewTabBar() string {
	var parts []string
	for i, tab := range m.tabs {
		label := " " + tab.Label + " "
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// viewContent renders the result list or a status message.
func (m Model) viewContent() string {
	switch m.state {
	case stateIdle, stateLoading:
		return dimStyle.Render("Loading...")

	case stateError:
		msg := "Error"
		if m.err != nil {
			msg = fmt.Sprintf("Error: %s", m.err)
		}
		return errorStyle.Render(msg)

	case stateCancelled:
		return dimStyle.Render("Cancelled")

	case stateReady:
		if len(m.result.Items) == 0 {
			return m.viewNoMatches()
		}
		return m.viewList()

	default:
		return ""
	}
}

// viewNoMatches renders the empty state, with typo corrections when
// the suggester found near misses.
func (m Model) viewNoMatches() string {
	if len(m.suggestions) == 0 {
		return dimStyle.Render("No matches")
	}
	names := make([]string, len(m.suggestions))
	for i, s := range m.suggestions {
		names[i] = s.Suggested
	}
	return dimStyle.Render("No matches. Did you mean " + strings.Join(names, ", ") + "?")
}

// viewList renders the visible result rows with selection marker and
// match highlighting.
func (m Model) viewList() string {
	var b strings.Builder
	rows := m.visibleRows()
	for i, item := range m.result.Items {
		if i >= rows {
			break
		}
		if i == m.selection {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(m.renderItem(item, i == m.selection))
		if i < len(m.result.Items)-1 && i < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// renderItem renders one result row. Sources sanitize candidate text
// at load time, so match positions index the text exactly as ranked.
func (m Model) renderItem(item filter.Match, selected bool) string {
	base := normalStyle
	if selected {
		base = selectedStyle
	}

	avail := m.width - 4
	text := item.Text

	// Truncation would invalidate the match positions; wide rows
	// render plain.
	if avail > 0 && runewidth.StringWidth(text) > avail {
		return base.Render(MiddleTruncate(text, avail))
	}

	line := renderHighlights(text, item.Positions, base, matchStyle)
	if item.Detail != "" && avail > 0 {
		pad := avail - runewidth.StringWidth(text)
		if runewidth.StringWidth(item.Detail)+2 <= pad {
			line += "  " + detailStyle.Render(item.Detail)
		}
	}
	return line
}

// renderHighlights styles the runes at positions with hl and the rest
// with base. Positions are sorted rune indexes.
func renderHighlights(text string, positions []int, base, hl lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	runes := []rune(text)
	var b strings.Builder
	start := 0
	for start < len(runes) {
		end := start
		lit := marked[start]
		for end < len(runes) && marked[end] == lit {
			end++
		}
		seg := string(runes[start:end])
		if lit {
			b.WriteString(hl.Render(seg))
		} else {
			b.WriteString(base.Render(seg))
		}
		start = end
	}
	return b.String()
}

// viewStatus renders the match counter and key hints.
func (m Model) viewStatus() string {
	if m.state != stateReady {
		return dimStyle.Render("tab: switch  esc: quit")
	}
	shown := len(m.result.Items)
	if rows := m.visibleRows(); shown > rows {
		shown = rows
	}
	counter := fmt.Sprintf("%d/%d", shown, m.result.Total)
	return dimStyle.Render(counter + "  tab: switch  enter: select  esc: quit")
}
