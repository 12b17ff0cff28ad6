// Package sequencer turns construction line items into an ordered,
// day-offset schedule.
//
// The pipeline runs in one direction: classify each item into a phase,
// build the dependency graph from declared names and phase rules, assign
// start and end days, then mark the critical path and derive inspection
// and permit events. Every stage is pure. A Sequencer holds only the
// read-only rule table and is safe for concurrent use.
package sequencer

import (
	"github.com/alexanderramin/buildseq/internal/domain"
)

// Options control one sequencing run.
type Options struct {
	Meta               ProjectMeta
	IncludePermits     bool
	IncludeInspections bool
	Mode               domain.CriticalPathMode
}

// DefaultOptions includes permits and inspections and uses the heuristic
// critical path.
func DefaultOptions() Options {
	return Options{
		IncludePermits:     true,
		IncludeInspections: true,
		Mode:               domain.CriticalPathHeuristic,
	}
}

// Sequencer runs the pipeline against a rule table.
type Sequencer struct {
	rules *RuleTable
}

// New creates a Sequencer. A nil table selects DefaultRules.
func New(rules *RuleTable) *Sequencer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Sequencer{rules: rules}
}

// Rules returns the table the sequencer classifies against.
func (s *Sequencer) Rules() *RuleTable {
	return s.rules
}

// Sequence runs the whole pipeline over one batch. The only error is a
// *CycleError; an empty batch yields an empty result.
func (s *Sequencer) Sequence(items []Item, opts Options) (*domain.SequencingResult, error) {
	classified := s.rules.ClassifyAll(items, opts.Meta)
	graph := BuildGraph(classified)

	tasks, err := Schedule(graph)
	if err != nil {
		return nil, err
	}

	var critical []string
	if opts.Mode == domain.CriticalPathCPM {
		critical = MarkCriticalPathCPM(tasks)
	} else {
		critical = MarkCriticalPath(tasks)
	}

	inspections := s.rules.DeriveInspections(tasks)
	if !opts.IncludeInspections {
		inspections = []domain.Inspection{}
	}
	permits := DerivePermits(tasks)
	if !opts.IncludePermits {
		permits = []domain.Permit{}
	}

	return &domain.SequencingResult{
		Tasks:             tasks,
		CriticalPath:      critical,
		TotalDurationDays: TotalDuration(tasks),
		Inspections:       inspections,
		Permits:           permits,
		PhaseSummary:      SummarizePhases(tasks),
		Warnings:          graph.Warnings,
	}, nil
}
