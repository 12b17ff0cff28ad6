package sequencer

import (
	"math"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// slackEpsilon absorbs float rounding when comparing day offsets.
const slackEpsilon = 1e-9

// TotalDuration returns the latest end day across tasks.
func TotalDuration(tasks []domain.Task) float64 {
	total := 0.0
	for _, t := range tasks {
		total = math.Max(total, t.EndDay)
	}
	return total
}

// MarkCriticalPath flags tasks with the heuristic rule: a task is critical
// when another task depends on it, or when it ends on the last project
// day. This is not slack-based CPM; see MarkCriticalPathCPM.
//
// tasks must already be scheduled. The returned IDs follow task order.
func MarkCriticalPath(tasks []domain.Task) []string {
	total := TotalDuration(tasks)

	hasDependent := make(map[string]bool)
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			hasDependent[dep] = true
		}
	}

	path := []string{}
	for i := range tasks {
		t := &tasks[i]
		t.CriticalPath = hasDependent[t.ID] || t.EndDay == total
		if t.CriticalPath {
			path = append(path, t.ID)
		}
	}
	return path
}

// MarkCriticalPathCPM runs a backward pass over the realised schedule.
// Latest finish is the total duration for tasks nothing depends on and
// the earliest latest-start of their dependents otherwise; slack is
// latest start minus scheduled start. Zero-slack tasks are critical.
//
// tasks must be in processing order, as returned by Schedule.
func MarkCriticalPathCPM(tasks []domain.Task) []string {
	total := TotalDuration(tasks)

	dependents := make(map[string][]int)
	for i, t := range tasks {
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	latestStart := make([]float64, len(tasks))
	for i := len(tasks) - 1; i >= 0; i-- {
		t := &tasks[i]
		lf := total
		for _, d := range dependents[t.ID] {
			lf = math.Min(lf, latestStart[d])
		}
		latestStart[i] = lf - t.DurationDays

		slack := latestStart[i] - t.StartDay
		if math.Abs(slack) < slackEpsilon {
			slack = 0
		}
		t.SlackDays = &slack
	}

	path := []string{}
	for i := range tasks {
		t := &tasks[i]
		t.CriticalPath = *t.SlackDays == 0
		if t.CriticalPath {
			path = append(path, t.ID)
		}
	}
	return path
}
