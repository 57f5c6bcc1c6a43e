// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Pipeline board, contact list, and task list over one workspace
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
)

// Tab is the screen currently shown.
type Tab int

const (
	TabPipeline Tab = iota
	TabContacts
	TabTasks
)

var tabNames = []string{"Pipeline", "Contacts", "Tasks"}

// loadedMsg reports a finished refresh.
type loadedMsg struct{ err error }

// mutatedMsg reports a finished mutation.
type mutatedMsg struct {
	status string
	err    error
}

// Model is the main bubbletea model
type Model struct {
	ctx context.Context
	ws  *session.Workspace
	now func() time.Time

	tab     Tab
	snap    views.Snapshot
	loading bool

	// Pipeline board cursor
	column int
	row    int

	// Contact list state
	search    textinput.Model
	searching bool
	tagIndex  int
	listRow   int

	// Task list state
	taskFilter views.TaskFilter

	status string
	err    error

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, ws *session.Workspace) Model {
	search := textinput.New()
	search.Placeholder = "search name, email, company"
	search.CharLimit = 64

	return Model{
		ctx:        ctx,
		ws:         ws,
		now:        time.Now,
		tab:        TabPipeline,
		loading:    true,
		search:     search,
		taskFilter: views.TasksAll,
		width:      100,
		height:     30,
	}
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: ws.Refresh(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.snap = m.ws.Snapshot()
			m.clampCursor()
		}
		return m, nil
	case mutatedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		m.snap = m.ws.Snapshot()
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.tab {
	case TabPipeline:
		body = m.renderBoard()
	case TabContacts:
		body = m.renderContacts()
	case TabTasks:
		body = m.renderTasks()
	}

	footer := m.status
	if m.err != nil {
		footer = errorStyle.Render("Error: " + m.err.Error())
	}
	if m.loading {
		footer = "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("CRM"),
		m.renderTabs(),
		"",
		body,
		statusStyle.Render(footer),
		helpStyle.Render(m.help()),
	)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	case "r":
		m.loading = true
		return m, m.refresh()
	}

	switch m.tab {
	case TabPipeline:
		return m.handleBoardKeys(msg)
	case TabContacts:
		return m.handleContactKeys(msg)
	case TabTasks:
		return m.handleTaskKeys(msg)
	}
	return m, nil
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			rendered[i] = tabActiveStyle.Render(name)
		} else {
			rendered[i] = tabInactiveStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) help() string {
	switch m.tab {
	case TabPipeline:
		return "←/→ stage  ↑/↓ deal  </> move deal  tab switch  r refresh  q quit"
	case TabContacts:
		return "/ search  t next tag  ↑/↓ select  tab switch  r refresh  q quit"
	default:
		return "f filter  space toggle  ↑/↓ select  tab switch  r refresh  q quit"
	}
}

// clampCursor keeps cursors inside the current data.
func (m *Model) clampCursor() {
	buckets := views.GroupByStage(m.snap.Deals)
	if m.column >= len(buckets) {
		m.column = len(buckets) - 1
	}
	if n := len(buckets[m.column].Deals); m.row >= n {
		m.row = max(n-1, 0)
	}
	if n := len(m.visibleContacts()); m.listRow >= n {
		m.listRow = max(n-1, 0)
	}
}

func (m Model) selectedTag() string {
	tags := views.AllTags(m.snap.Contacts)
	if m.tagIndex == 0 || m.tagIndex > len(tags) {
		return ""
	}
	return tags[m.tagIndex-1]
}

func (m Model) visibleContacts() []models.Contact {
	return views.FilterContacts(m.snap.Contacts, views.ContactFilter{Search: m.search.Value(), Tag: m.selectedTag()})
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(18)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	statusStyle = lipgloss.NewStyle().
			MarginTop(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
