package sequencer

import (
	"math"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// Schedule assigns start and end day offsets to every task of g and
// returns the tasks in processing order.
//
// Tasks are processed in dependency order, breaking ties by phase order
// and then by input position, so a batch whose dependencies all point
// forward in phase order is processed in a stable phase sort. A running
// watermark packs tasks one after another:
//
//	start = max(watermark, max(end of each dependency))
//	end   = start + duration
//	watermark = max(watermark, end)
//
// Scheduling uses no clock or randomness; identical input yields
// identical offsets. A cycle returns a *CycleError.
func Schedule(g *TaskGraph) ([]domain.Task, error) {
	n := len(g.Tasks)
	index := make(map[string]int, n)
	for i, t := range g.Tasks {
		index[t.ID] = i
	}

	inDegree := make([]int, n)
	dependents := make([][]int, n)
	for i, t := range g.Tasks {
		for _, dep := range t.Dependencies {
			j, ok := index[dep]
			if !ok || j == i {
				continue
			}
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := make([]bool, n)
	for i := range g.Tasks {
		if inDegree[i] == 0 {
			ready[i] = true
		}
	}

	out := make([]domain.Task, 0, n)
	endDay := make(map[string]float64, n)
	watermark := 0.0
	done := make([]bool, n)

	for len(out) < n {
		next := pickReady(g.Tasks, ready)
		if next < 0 {
			return nil, &CycleError{Path: findTaskCycle(g.Tasks, done, index)}
		}
		ready[next] = false
		done[next] = true

		t := cloneTask(g.Tasks[next])
		start := watermark
		for _, dep := range t.Dependencies {
			if end, ok := endDay[dep]; ok {
				start = math.Max(start, end)
			}
		}
		if t.DurationDays < MinDurationDays {
			t.DurationDays = MinDurationDays
		}
		t.StartDay = start
		t.EndDay = start + t.DurationDays
		endDay[t.ID] = t.EndDay
		watermark = math.Max(watermark, t.EndDay)
		out = append(out, t)

		for _, d := range dependents[next] {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready[d] = true
			}
		}
	}

	return out, nil
}

// pickReady returns the ready task with the lowest (phase order, input
// position), or -1 when nothing is ready.
func pickReady(tasks []domain.Task, ready []bool) int {
	best := -1
	for i := range tasks {
		if !ready[i] {
			continue
		}
		if best < 0 || tasks[i].Phase.Order() < tasks[best].Phase.Order() {
			best = i
		}
	}
	return best
}

// findTaskCycle walks the unscheduled tasks and returns one cycle as a
// list of task names.
func findTaskCycle(tasks []domain.Task, done []bool, index map[string]int) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(tasks))
	var stack []int

	var visit func(i int) []string
	visit = func(i int) []string {
		color[i] = gray
		stack = append(stack, i)
		for _, dep := range tasks[i].Dependencies {
			j, ok := index[dep]
			if !ok || done[j] {
				continue
			}
			switch color[j] {
			case gray:
				var path []string
				for k := len(stack) - 1; k >= 0; k-- {
					path = append([]string{tasks[stack[k]].Name}, path...)
					if stack[k] == j {
						break
					}
				}
				return append(path, tasks[j].Name)
			case white:
				if c := visit(j); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[i] = black
		return nil
	}

	for i := range tasks {
		if !done[i] && color[i] == white {
			if c := visit(i); c != nil {
				return c
			}
		}
	}
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	t.Dependencies = append([]string(nil), t.Dependencies...)
	return t
}
