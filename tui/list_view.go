// ABOUTME: Contact and task list views built on bubbles tables
// ABOUTME: Contacts filter by search and tag; tasks filter by status and toggle in place
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/views"
)

var taskFilters = []views.TaskFilter{views.TasksAll, views.TasksPending, views.TasksCompleted, views.TasksOverdue}

func (m Model) renderContacts() string {
	var s strings.Builder
	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View() + "\n")
	}
	if tag := m.selectedTag(); tag != "" {
		fmt.Fprintf(&s, "tag: %s\n", tag)
	}

	contacts := m.visibleContacts()
	rows := make([]table.Row, len(contacts))
	for i, c := range contacts {
		rows[i] = table.Row{c.Name, c.Email, c.Company, strings.Join(c.Tags, ",")}
	}
	s.WriteString(m.table([]table.Column{
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 28},
		{Title: "Company", Width: 20},
		{Title: "Tags", Width: 20},
	}, rows, m.listRow))
	return s.String()
}

func (m Model) handleContactKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "t":
		m.tagIndex = (m.tagIndex + 1) % (len(views.AllTags(m.snap.Contacts)) + 1)
		m.listRow = 0
	case "up", "k":
		if m.listRow > 0 {
			m.listRow--
		}
	case "down", "j":
		if m.listRow < len(m.visibleContacts())-1 {
			m.listRow++
		}
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		m.listRow = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) visibleTasks() []models.Task {
	return views.FilterTasks(m.snap.Tasks, m.taskFilter, m.now())
}

func (m Model) renderTasks() string {
	now := m.now()
	tasks := m.visibleTasks()
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		mark := "[ ]"
		switch {
		case t.Completed:
			mark = "[x]"
		case views.IsOverdue(t, now):
			mark = "[!]"
		}
		rows[i] = table.Row{mark, t.Title, t.DueDate.Format("2006-01-02"), string(t.Priority)}
	}
	return fmt.Sprintf("filter: %s\n", m.taskFilter) + m.table([]table.Column{
		{Title: "", Width: 4},
		{Title: "Title", Width: 36},
		{Title: "Due", Width: 12},
		{Title: "Priority", Width: 10},
	}, rows, m.listRow)
}

func (m Model) handleTaskKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.visibleTasks()
	switch msg.String() {
	case "f":
		for i, f := range taskFilters {
			if f == m.taskFilter {
				m.taskFilter = taskFilters[(i+1)%len(taskFilters)]
				break
			}
		}
		m.listRow = 0
	case "up", "k":
		if m.listRow > 0 {
			m.listRow--
		}
	case "down", "j":
		if m.listRow < len(tasks)-1 {
			m.listRow++
		}
	case " ", "x":
		if m.listRow < len(tasks) {
			return m, m.toggleTask(tasks[m.listRow].ID)
		}
	}
	return m, nil
}

func (m Model) toggleTask(id models.ID) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		task, err := ws.ToggleTask(ctx, id)
		return mutatedMsg{status: fmt.Sprintf("Updated %s", task.Title), err: err}
	}
}

func (m Model) table(columns []table.Column, rows []table.Row, cursor int) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 5)),
	)
	if cursor < len(rows) {
		t.SetCursor(cursor)
	}
	return t.View()
}
