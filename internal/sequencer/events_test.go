package sequencer

import (
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveInspections_AtTaskEnd(t *testing.T) {
	tasks, err := Schedule(buildFrom(
		Item{Name: "Pour footing"},
		Item{Name: "Frame walls"},
		Item{Name: "Paint shed", Phase: phasePtr(domain.PhasePainting)},
	))
	require.NoError(t, err)

	got := DefaultRules().DeriveInspections(tasks)
	assert.Equal(t, []domain.Inspection{
		{Type: "Foundation/footing inspection", AfterTaskID: "task-1", EstimatedDay: 5},
		{Type: "Framing inspection", AfterTaskID: "task-2", EstimatedDay: 12},
	}, got)
	assert.True(t, tasks[0].InspectionRequired)
	assert.True(t, tasks[1].InspectionRequired)
	assert.False(t, tasks[2].InspectionRequired)
}

func TestDeriveInspections_NoneIsNonNil(t *testing.T) {
	got := DefaultRules().DeriveInspections(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDerivePermits_OnlyForPresentPhases(t *testing.T) {
	tasks, err := Schedule(buildFrom(
		Item{Name: "Wire outlets"},
		Item{Name: "Replace panel", Phase: phasePtr(domain.PhaseElectrical)},
		Item{Name: "Replace water heater"},
		Item{Name: "Paint walls"},
	))
	require.NoError(t, err)

	got := DerivePermits(tasks)
	assert.Equal(t, []domain.Permit{
		{Type: "Electrical permit", Phase: domain.PhaseElectrical, RequiredBefore: "Wire outlets"},
		{Type: "Plumbing permit", Phase: domain.PhasePlumbing, RequiredBefore: "Replace water heater"},
	}, got)

	for _, task := range tasks {
		want := task.Phase == domain.PhaseElectrical || task.Phase == domain.PhasePlumbing
		assert.Equal(t, want, task.PermitRequired, task.Name)
	}
}

func TestDerivePermits_NoneIsNonNil(t *testing.T) {
	got := DerivePermits([]domain.Task{{ID: "task-1", Phase: domain.PhasePainting}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPermitGated(t *testing.T) {
	assert.True(t, PermitGated(domain.PhaseFoundation))
	assert.True(t, PermitGated(domain.PhaseRoofing))
	assert.False(t, PermitGated(domain.PhaseDrywall))
	assert.False(t, PermitGated(domain.PhasePermits))
}

func TestSummarizePhases_PhaseOrder(t *testing.T) {
	tasks := []domain.Task{
		{Phase: domain.PhasePainting, DurationDays: 3},
		{Phase: domain.PhaseFoundation, DurationDays: 5},
		{Phase: domain.PhasePainting, DurationDays: 1.5},
	}
	assert.Equal(t, []domain.PhaseSummary{
		{Phase: domain.PhaseFoundation, TotalDurationDays: 5, TaskCount: 1},
		{Phase: domain.PhasePainting, TotalDurationDays: 4.5, TaskCount: 2},
	}, SummarizePhases(tasks))
}
