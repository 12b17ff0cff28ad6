package sequencer

import (
	"github.com/alexanderramin/buildseq/internal/domain"
)

// permitRequirement maps an advisory permit to the phase it gates.
type permitRequirement struct {
	Type  string
	Phase domain.Phase
}

// permitTable is advisory text only; it never constrains the schedule.
var permitTable = []permitRequirement{
	{Type: "Building permit", Phase: domain.PhaseFoundation},
	{Type: "Structural/framing permit", Phase: domain.PhaseFraming},
	{Type: "Roofing permit", Phase: domain.PhaseRoofing},
	{Type: "Mechanical permit", Phase: domain.PhaseMechanical},
	{Type: "Electrical permit", Phase: domain.PhaseElectrical},
	{Type: "Plumbing permit", Phase: domain.PhasePlumbing},
}

// PermitGated reports whether work in phase should wait for a permit.
func PermitGated(phase domain.Phase) bool {
	for _, p := range permitTable {
		if p.Phase == phase {
			return true
		}
	}
	return false
}

// DeriveInspections flags tasks whose phase rule requires an inspection
// and returns one inspection event per flagged task, due at its end day.
func (t *RuleTable) DeriveInspections(tasks []domain.Task) []domain.Inspection {
	out := []domain.Inspection{}
	for i := range tasks {
		rule, _ := t.RulesFor(tasks[i].Phase)
		if !rule.InspectionRequired {
			continue
		}
		tasks[i].InspectionRequired = true
		out = append(out, domain.Inspection{
			Type:         rule.InspectionType,
			AfterTaskID:  tasks[i].ID,
			EstimatedDay: tasks[i].EndDay,
		})
	}
	return out
}

// DerivePermits flags tasks in permit-gated phases and lists each permit
// whose phase occurs in the batch, naming the first task of that phase in
// processing order.
func DerivePermits(tasks []domain.Task) []domain.Permit {
	firstInPhase := make(map[domain.Phase]string)
	for i := range tasks {
		if !PermitGated(tasks[i].Phase) {
			continue
		}
		tasks[i].PermitRequired = true
		if _, ok := firstInPhase[tasks[i].Phase]; !ok {
			firstInPhase[tasks[i].Phase] = tasks[i].Name
		}
	}

	out := []domain.Permit{}
	for _, p := range permitTable {
		name, ok := firstInPhase[p.Phase]
		if !ok {
			continue
		}
		out = append(out, domain.Permit{
			Type:           p.Type,
			Phase:          p.Phase,
			RequiredBefore: name,
		})
	}
	return out
}

// SummarizePhases totals durations and task counts per phase, in phase
// order, skipping phases with no tasks.
func SummarizePhases(tasks []domain.Task) []domain.PhaseSummary {
	totals := make(map[domain.Phase]*domain.PhaseSummary)
	for _, t := range tasks {
		s, ok := totals[t.Phase]
		if !ok {
			s = &domain.PhaseSummary{Phase: t.Phase}
			totals[t.Phase] = s
		}
		s.TaskCount++
		s.TotalDurationDays += t.DurationDays
	}

	out := []domain.PhaseSummary{}
	for _, p := range domain.AllPhases {
		if s, ok := totals[p]; ok {
			out = append(out, *s)
		}
	}
	return out
}
