// ABOUTME: Pipeline board view: one column per stage with keyboard drag-move
// ABOUTME: Moving a deal goes through the workspace so failures roll back
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmsync/models"
	"github.com/harperreed/crmsync/views"
	"github.com/harperreed/crmsync/viz"
)

func (m Model) renderBoard() string {
	buckets := views.GroupByStage(m.snap.Deals)
	columns := make([]string, len(buckets))
	for i, b := range buckets {
		var s strings.Builder
		fmt.Fprintf(&s, "%s\n%s\n\n", b.Label, viz.FormatMoney(b.Value))
		for j, d := range b.Deals {
			line := fmt.Sprintf("%s\n  %s", truncate(d.Title, 16), viz.FormatMoney(d.Value))
			if i == m.column && j == m.row {
				line = selectedStyle.Render(line)
			}
			s.WriteString(line + "\n")
		}

		style := columnStyle
		if i == m.column {
			style = activeColumnStyle
		}
		columns[i] = style.Render(s.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	buckets := views.GroupByStage(m.snap.Deals)
	switch msg.String() {
	case "left", "h":
		if m.column > 0 {
			m.column--
			m.row = 0
		}
	case "right", "l":
		if m.column < len(buckets)-1 {
			m.column++
			m.row = 0
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(buckets[m.column].Deals)-1 {
			m.row++
		}
	case "<", ">":
		deals := buckets[m.column].Deals
		if len(deals) == 0 {
			return m, nil
		}
		target := m.column + 1
		if msg.String() == "<" {
			target = m.column - 1
		}
		if target < 0 || target >= len(models.Stages) {
			return m, nil
		}
		deal := deals[m.row]
		stage := models.Stages[target]

		// Show the move right away and follow the deal into its new column.
		// The confirmed (or restored) state replaces this on mutatedMsg.
		m.snap.Deals = append([]models.Deal(nil), m.snap.Deals...)
		for i := range m.snap.Deals {
			if m.snap.Deals[i].ID == deal.ID {
				m.snap.Deals[i].Stage = stage
			}
		}
		m.column, m.row = target, 0
		for i, d := range views.GroupByStage(m.snap.Deals)[target].Deals {
			if d.ID == deal.ID {
				m.row = i
			}
		}
		return m, m.moveDeal(deal.ID, stage)
	}
	return m, nil
}

func (m Model) moveDeal(id models.ID, stage models.Stage) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		deal, err := ws.MoveDeal(ctx, id, stage)
		return mutatedMsg{status: fmt.Sprintf("Moved %s to %s", deal.Title, stage.Label()), err: err}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
