package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// ganttNameWidth caps the task name column of the Gantt chart.
const ganttNameWidth = 28

// FormatSequencingResult renders the full schedule: task table, events,
// phase summary and warnings.
func FormatSequencingResult(title string, r *domain.SequencingResult) string {
	if r == nil || len(r.Tasks) == 0 {
		return RenderBox(title, Dim("No tasks to schedule."))
	}

	sections := []string{
		formatScheduleSummary(r),
		FormatTaskTable(r),
	}
	if len(r.Inspections) > 0 {
		sections = append(sections, Header("Inspections")+"\n"+formatInspections(r))
	}
	if len(r.Permits) > 0 {
		sections = append(sections, Header("Permits")+"\n"+formatPermits(r))
	}
	if len(r.PhaseSummary) > 0 {
		sections = append(sections, Header("Phases")+"\n"+FormatPhaseSummary(r))
	}
	if len(r.Warnings) > 0 {
		sections = append(sections, Header("Warnings")+"\n"+formatWarnings(r.Warnings))
	}

	return RenderBox(title, strings.Join(sections, "\n\n"))
}

func formatScheduleSummary(r *domain.SequencingResult) string {
	path := make([]string, 0, len(r.CriticalPath))
	for _, id := range r.CriticalPath {
		path = append(path, StyleRed.Render(id))
	}
	critical := Dim("none")
	if len(path) > 0 {
		critical = strings.Join(path, Dim(" → "))
	}
	return fmt.Sprintf("%s %s   %s %s\n%s %s",
		Dim("TASKS"), Bold(strconv.Itoa(len(r.Tasks))),
		Dim("TOTAL"), Bold(FormatDays(r.TotalDurationDays)),
		Dim("CRITICAL"), critical,
	)
}

// FormatTaskTable renders one row per task in schedule order. The SLACK
// column only appears when slack was computed.
func FormatTaskTable(r *domain.SequencingResult) string {
	withSlack := false
	for _, t := range r.Tasks {
		if t.SlackDays != nil {
			withSlack = true
			break
		}
	}

	headers := []string{"", "ID", "TASK", "PHASE", "TRADE", "DAYS", "START", "END", "AFTER"}
	right := map[int]bool{5: true, 6: true, 7: true}
	if withSlack {
		headers = append(headers, "SLACK")
		right[len(headers)-1] = true
	}
	headers = append(headers, "FLAGS")

	rows := make([][]string, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		name := t.Name
		if t.CriticalPath {
			name = Bold(name)
		}
		row := []string{
			CriticalMark(t.CriticalPath),
			Dim(t.ID),
			name,
			PhaseBadge(t.Phase),
			OrDash(t.Trade),
			FormatDays(t.DurationDays),
			strconv.FormatFloat(t.StartDay, 'f', -1, 64),
			strconv.FormatFloat(t.EndDay, 'f', -1, 64),
			OrDash(strings.Join(t.Dependencies, ",")),
		}
		if withSlack {
			slack := Dim("--")
			if t.SlackDays != nil {
				slack = FormatDays(*t.SlackDays)
			}
			row = append(row, slack)
		}
		row = append(row, taskFlags(t))
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows, RightAlign: right}.Render()
}

// taskFlags marks inspection (I), permit (P) and unclassified (?) tasks.
func taskFlags(t domain.Task) string {
	var flags []string
	if t.InspectionRequired {
		flags = append(flags, StyleRed.Render("I"))
	}
	if t.PermitRequired {
		flags = append(flags, StyleBlue.Render("P"))
	}
	if !t.Classified {
		flags = append(flags, StyleYellow.Render("?"))
	}
	return strings.Join(flags, " ")
}

func formatInspections(r *domain.SequencingResult) string {
	rows := make([][]string, 0, len(r.Inspections))
	for _, in := range r.Inspections {
		after := in.AfterTaskID
		if t := r.TaskByID(in.AfterTaskID); t != nil {
			after = t.Name + " " + Dim("("+t.ID+")")
		}
		rows = append(rows, []string{in.Type, after, FormatDay(in.EstimatedDay)})
	}
	return RenderTable([]string{"INSPECTION", "AFTER", "DUE"}, rows)
}

func formatPermits(r *domain.SequencingResult) string {
	rows := make([][]string, 0, len(r.Permits))
	for _, p := range r.Permits {
		rows = append(rows, []string{p.Type, PhaseBadge(p.Phase), p.RequiredBefore})
	}
	return RenderTable([]string{"PERMIT", "PHASE", "BEFORE"}, rows)
}

// FormatPhaseSummary renders per-phase task counts, working days and each
// phase's share of all working days.
func FormatPhaseSummary(r *domain.SequencingResult) string {
	var workDays float64
	for _, s := range r.PhaseSummary {
		workDays += s.TotalDurationDays
	}

	rows := make([][]string, 0, len(r.PhaseSummary))
	for _, s := range r.PhaseSummary {
		share := 0.0
		if workDays > 0 {
			share = s.TotalDurationDays / workDays
		}
		rows = append(rows, []string{
			PhaseBadge(s.Phase),
			strconv.Itoa(s.TaskCount),
			FormatDays(s.TotalDurationDays),
			RenderShare(share, 16, PhaseStyle(s.Phase)),
		})
	}
	return Table{
		Headers:    []string{"PHASE", "TASKS", "DAYS", "SHARE"},
		Rows:       rows,
		RightAlign: map[int]bool{1: true, 2: true},
	}.Render()
}

func formatWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("! ") + w + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatGantt draws each task as a bar on a shared day axis of width cells.
func FormatGantt(r *domain.SequencingResult, width int) string {
	if r == nil || len(r.Tasks) == 0 {
		return Dim("No tasks to chart.")
	}
	if width < 10 {
		width = 10
	}

	nameWidth := 0
	for _, t := range r.Tasks {
		if w := lipgloss.Width(t.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > ganttNameWidth {
		nameWidth = ganttNameWidth
	}

	var b strings.Builder
	axis := "0" + strings.Repeat(" ", max(width-1-len(FormatDays(r.TotalDurationDays)), 1)) + FormatDays(r.TotalDurationDays)
	b.WriteString(strings.Repeat(" ", nameWidth+2) + Dim(axis) + "\n")

	for _, t := range r.Tasks {
		name := truncate(t.Name, nameWidth)
		style := PhaseStyle(t.Phase)
		if t.CriticalPath {
			style = StyleRed
		}
		b.WriteString(name + strings.Repeat(" ", nameWidth-lipgloss.Width(name)+2))
		b.WriteString(RenderGanttBar(t.StartDay, t.EndDay, r.TotalDurationDays, width, style))
		b.WriteString("  " + Dim(FormatSpan(t.StartDay, t.EndDay)) + "\n")
	}
	return b.String()
}

// FormatPhaseTree groups tasks under their phase in phase order.
func FormatPhaseTree(r *domain.SequencingResult) string {
	if r == nil || len(r.Tasks) == 0 {
		return Dim("No tasks.")
	}

	byPhase := make(map[domain.Phase][]domain.Task)
	for _, t := range r.Tasks {
		byPhase[t.Phase] = append(byPhase[t.Phase], t)
	}

	var items []TreeItem
	for _, p := range domain.AllPhases {
		tasks := byPhase[p]
		if len(tasks) == 0 {
			continue
		}
		items = append(items, TreeItem{Title: PhaseBadge(p)})
		for i, t := range tasks {
			items = append(items, TreeItem{
				Title:    t.Name,
				Level:    1,
				IsLast:   i == len(tasks)-1,
				Critical: t.CriticalPath,
				Detail:   FormatSpan(t.StartDay, t.EndDay),
			})
		}
	}
	return RenderTree(items)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
