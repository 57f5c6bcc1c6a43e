// ABOUTME: Terminal dashboard and report rendering
// ABOUTME: Turns dashboard and report view models into styled text
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmsync/views"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatMoney renders whole dollars with a K or M suffix above a thousand.
func FormatMoney(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	}
	return fmt.Sprintf("$%.0f", v)
}

func RenderDashboard(d views.Dashboard, buckets []views.StageBucket) string {
	var out strings.Builder

	out.WriteString(rule + "\n")
	out.WriteString(headerStyle.Render("  CRM DASHBOARD") + "\n")
	out.WriteString(rule + "\n\n")

	m := d.Metrics
	out.WriteString(sectionStyle.Render("STATS") + "\n")
	out.WriteString(fmt.Sprintf("  %d contacts  %d deals (%d active)  %d activities\n",
		m.TotalContacts, m.TotalDeals, m.ActiveDeals, m.TotalActivities))
	out.WriteString(fmt.Sprintf("  pipeline %s  revenue %s  conversion %.1f%%\n\n",
		FormatMoney(m.PipelineValue), FormatMoney(m.Revenue), m.ConversionRate))

	out.WriteString(sectionStyle.Render("PIPELINE") + "\n")
	renderPipeline(&out, buckets)
	out.WriteString("\n")

	out.WriteString(sectionStyle.Render("TODAY") + "\n")
	if len(d.TasksDueToday) == 0 {
		out.WriteString("  nothing due today\n")
	}
	for _, t := range d.TasksDueToday {
		out.WriteString(fmt.Sprintf("  [%s] %s\n", t.Priority, t.Title))
	}
	if d.OverdueTasks > 0 {
		out.WriteString(warnStyle.Render(fmt.Sprintf("  %d overdue tasks", d.OverdueTasks)) + "\n")
	}
	out.WriteString("\n")

	out.WriteString(sectionStyle.Render("UPCOMING") + "\n")
	for _, t := range d.UpcomingTasks {
		out.WriteString(fmt.Sprintf("  %s  %s\n", t.DueDate.Format("Jan 02"), t.Title))
	}
	out.WriteString("\n")

	out.WriteString(sectionStyle.Render("RECENT ACTIVITY") + "\n")
	for _, a := range d.RecentActivities {
		out.WriteString(fmt.Sprintf("  %s  %-8s %s\n", a.Date.Format("Jan 02"), a.Type, a.Description))
	}

	return out.String()
}

// RenderReport prints value by stage and activity counts as bar charts.
func RenderReport(r views.Report) string {
	var out strings.Builder

	out.WriteString(headerStyle.Render("REPORT") + "\n")
	out.WriteString(fmt.Sprintf("  average deal size %s\n\n", FormatMoney(r.Metrics.AverageDealSize)))

	maxValue := 0.0
	for _, s := range r.Stages {
		if s.Value > maxValue {
			maxValue = s.Value
		}
	}
	out.WriteString(sectionStyle.Render("VALUE BY STAGE") + "\n")
	for _, s := range r.Stages {
		out.WriteString(fmt.Sprintf("  %-12s %s %s\n", s.Label, bar(s.Value, maxValue), FormatMoney(s.Value)))
	}

	maxCount := 0
	for _, a := range r.Activities {
		if a.Count > maxCount {
			maxCount = a.Count
		}
	}
	out.WriteString("\n" + sectionStyle.Render("ACTIVITIES") + "\n")
	for _, a := range r.Activities {
		out.WriteString(fmt.Sprintf("  %-12s %s %d\n", a.Type, bar(float64(a.Count), float64(maxCount)), a.Count))
	}
	return out.String()
}

func renderPipeline(out *strings.Builder, buckets []views.StageBucket) {
	maxCount := 0
	for _, b := range buckets {
		if len(b.Deals) > maxCount {
			maxCount = len(b.Deals)
		}
	}
	for _, b := range buckets {
		out.WriteString(fmt.Sprintf("  %-12s %s  %2d (%s)\n",
			b.Label, bar(float64(len(b.Deals)), float64(maxCount)), len(b.Deals), FormatMoney(b.Value)))
	}
}

// bar draws a ten-cell bar scaled against limit.
func bar(v, limit float64) string {
	n := 0
	if limit > 0 {
		n = int(v * 10 / limit)
	}
	return strings.Repeat("█", n) + strings.Repeat("░", 10-n)
}
