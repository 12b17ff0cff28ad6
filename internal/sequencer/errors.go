package sequencer

import (
	"errors"
	"strings"
)

// ErrCycle is the sentinel wrapped by every CycleError.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError reports a dependency cycle. Path lists the nodes of the cycle
// with the first node repeated at the end.
type CycleError struct {
	Path []string
	// PhaseLevel is true when the cycle is in the phase rule table rather
	// than in a task batch.
	PhaseLevel bool
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	scope := "task"
	if e.PhaseLevel {
		scope = "phase rule"
	}
	if len(e.Path) == 0 {
		return ErrCycle.Error() + " in " + scope + " graph"
	}
	return ErrCycle.Error() + " in " + scope + " graph: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// cyclePath cuts the DFS stack down to the cycle that closes at node.
func cyclePath(stack []string, node string) []string {
	for i, s := range stack {
		if s == node {
			path := append([]string(nil), stack[i:]...)
			return append(path, node)
		}
	}
	return []string{node, node}
}
