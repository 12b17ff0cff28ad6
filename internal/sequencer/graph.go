package sequencer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// TaskGraph is the dependency graph for one batch. Tasks stay in input
// order; Dependencies hold sibling task IDs.
type TaskGraph struct {
	Tasks    []domain.Task
	Warnings []string
}

// TaskID returns the stable ID of the task built from the n-th item
// (zero-based).
func TaskID(n int) string {
	return fmt.Sprintf("task-%d", n+1)
}

// BuildGraph turns classified items into tasks with resolved dependencies.
// A task depends on every batch task named in its declared dependencies
// and on every batch task classified into one of its predecessor phases,
// which cover both the phase's required predecessors and every phase whose
// rule lists it in MustPrecede. A declaration running against those edges
// therefore surfaces as a cycle. A predecessor phase with no tasks adds nothing. Declared names that match
// no other task are dropped and reported as warnings.
func BuildGraph(items []ClassifiedItem) *TaskGraph {
	g := &TaskGraph{Tasks: make([]domain.Task, len(items))}

	byName := make(map[string][]int)
	byPhase := make(map[domain.Phase][]int)
	for i, ci := range items {
		key := normalizeName(ci.Item.Name)
		byName[key] = append(byName[key], i)
		byPhase[ci.Classification.Phase] = append(byPhase[ci.Classification.Phase], i)
	}

	for i, ci := range items {
		deps := newIndexSet()

		for _, name := range ci.Item.DependsOn {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			matched := false
			for _, j := range byName[key] {
				if j == i {
					continue
				}
				deps.add(j)
				matched = true
			}
			if !matched {
				g.Warnings = append(g.Warnings, fmt.Sprintf(
					"%s (%q): dependency %q does not match any other item; ignored",
					TaskID(i), ci.Item.Name, name))
			}
		}

		for _, phase := range ci.Classification.PredecessorPhases {
			if phase == ci.Classification.Phase {
				continue
			}
			for _, j := range byPhase[phase] {
				deps.add(j)
			}
		}

		sort.Ints(deps.order)
		depIDs := make([]string, 0, len(deps.order))
		for _, j := range deps.order {
			depIDs = append(depIDs, TaskID(j))
		}

		g.Tasks[i] = domain.Task{
			ID:           TaskID(i),
			Name:         ci.Item.Name,
			Description:  ci.Item.Description,
			Phase:        ci.Classification.Phase,
			Trade:        ci.Classification.Trade,
			Quantity:     ci.Item.Quantity,
			DurationDays: ci.DurationDays,
			Dependencies: depIDs,
			Classified:   ci.Classification.MatchedRule != nil || ci.Item.Phase != nil,
		}
	}

	return g
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// indexSet is a set of item indexes that remembers insertion order.
type indexSet struct {
	seen  map[int]bool
	order []int
}

func newIndexSet() *indexSet {
	return &indexSet{seen: make(map[int]bool)}
}

func (s *indexSet) add(i int) {
	if s.seen[i] {
		return
	}
	s.seen[i] = true
	s.order = append(s.order, i)
}
