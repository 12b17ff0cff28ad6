package formatter

import (
	"strings"
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shedResult(t *testing.T, mode domain.CriticalPathMode) *domain.SequencingResult {
	t.Helper()
	opts := sequencer.DefaultOptions()
	opts.Mode = mode
	r, err := sequencer.New(nil).Sequence([]sequencer.Item{
		{Name: "Pour footing"},
		{Name: "Frame walls", DependsOn: []string{"Pour footing", "Ghost task"}},
		{Name: "Odds and ends"},
	}, opts)
	require.NoError(t, err)
	return r
}

func TestFormatSequencingResult_Sections(t *testing.T) {
	out := FormatSequencingResult("Shed", shedResult(t, domain.CriticalPathHeuristic))

	assert.Contains(t, out, "SHED")
	assert.Contains(t, out, "Pour footing")
	assert.Contains(t, out, "Frame walls")
	assert.Contains(t, out, "task-1")
	assert.Contains(t, out, "INSPECTIONS")
	assert.Contains(t, out, "PERMITS")
	assert.Contains(t, out, "Building permit")
	assert.Contains(t, out, "PHASES")
	assert.Contains(t, out, "WARNINGS")
	assert.Contains(t, out, "Ghost task")
	assert.NotContains(t, out, "SLACK")
}

func TestFormatSequencingResult_Empty(t *testing.T) {
	out := FormatSequencingResult("Nothing", &domain.SequencingResult{})
	assert.Contains(t, out, "No tasks to schedule.")
	assert.Contains(t, FormatSequencingResult("nil", nil), "No tasks to schedule.")
}

func TestFormatTaskTable_SlackColumnInCPMMode(t *testing.T) {
	out := FormatTaskTable(shedResult(t, domain.CriticalPathCPM))
	assert.Contains(t, out, "SLACK")
}

func TestFormatTaskTable_Flags(t *testing.T) {
	r := &domain.SequencingResult{Tasks: []domain.Task{
		{ID: "task-1", Name: "Wire panel", Phase: domain.PhaseElectrical, InspectionRequired: true, PermitRequired: true, Classified: true},
		{ID: "task-2", Name: "Mystery", Phase: domain.PhaseFinishing},
	}}
	lines := strings.Split(FormatTaskTable(r), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[2], "I P")
	assert.Contains(t, lines[3], "?")
}

func TestFormatPhaseSummary_SharesSumToWhole(t *testing.T) {
	r := &domain.SequencingResult{PhaseSummary: []domain.PhaseSummary{
		{Phase: domain.PhaseFoundation, TotalDurationDays: 5, TaskCount: 1},
		{Phase: domain.PhaseFraming, TotalDurationDays: 15, TaskCount: 2},
	}}
	out := FormatPhaseSummary(r)
	assert.Contains(t, out, " 25%")
	assert.Contains(t, out, " 75%")
	assert.Contains(t, out, "15d")
}

func TestFormatGantt(t *testing.T) {
	r := shedResult(t, domain.CriticalPathHeuristic)
	out := FormatGantt(r, 40)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, len(r.Tasks)+1)
	assert.Contains(t, lines[0], FormatDays(r.TotalDurationDays))
	assert.Contains(t, lines[1], "Pour footing")
	assert.Contains(t, lines[1], "0 → 5")
	assert.Contains(t, FormatGantt(nil, 40), "No tasks")
}

func TestFormatGantt_TruncatesLongNames(t *testing.T) {
	r := &domain.SequencingResult{
		Tasks: []domain.Task{{
			ID: "task-1", Name: strings.Repeat("x", 60), Phase: domain.PhaseFinishing,
			DurationDays: 1, EndDay: 1,
		}},
		TotalDurationDays: 1,
	}
	out := FormatGantt(r, 20)
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("x", 60))
}

func TestFormatPhaseTree_GroupsByPhase(t *testing.T) {
	out := FormatPhaseTree(shedResult(t, domain.CriticalPathHeuristic))

	foundation := strings.Index(out, "Foundation")
	framing := strings.Index(out, "Framing")
	require.NotEqual(t, -1, foundation)
	require.NotEqual(t, -1, framing)
	assert.Less(t, foundation, framing)
	assert.Contains(t, out, treeCorner)
	assert.Contains(t, out, "[ 0 → 5 ]")
}
