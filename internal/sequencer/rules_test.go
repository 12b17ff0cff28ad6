package sequencer

import (
	"errors"
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_PassCycleCheck(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestDefaultRules_EdgesPointForwardInPhaseOrder(t *testing.T) {
	for _, r := range DefaultRules().Rules() {
		for _, pred := range r.RequiredPredecessors {
			assert.Less(t, pred.Order(), r.Phase.Order(),
				"%s requires %s, which comes later in build order", r.Phase, pred)
		}
		for _, succ := range r.MustPrecede {
			assert.Greater(t, succ.Order(), r.Phase.Order(),
				"%s must precede %s, which comes earlier in build order", r.Phase, succ)
		}
	}
}

func TestDefaultRules_NoPhaseRequiresWhatItMustPrecede(t *testing.T) {
	rules := DefaultRules()
	for _, r := range rules.Rules() {
		closure := requiredClosure(rules, r.Phase)
		for _, succ := range r.MustPrecede {
			assert.False(t, closure[succ],
				"%s must precede %s but transitively requires it", r.Phase, succ)
		}
	}
}

func TestDefaultRules_RoughInsPrecedeWallClosure(t *testing.T) {
	rules := DefaultRules()

	elec, ok := rules.RulesFor(domain.PhaseElectrical)
	require.True(t, ok)
	assert.Contains(t, elec.RequiredPredecessors, domain.PhaseFraming)
	assert.Contains(t, elec.RequiredPredecessors, domain.PhasePermits)
	assert.Contains(t, elec.MustPrecede, domain.PhaseInsulation)
	assert.Contains(t, elec.MustPrecede, domain.PhaseDrywall)

	insul, ok := rules.RulesFor(domain.PhaseInsulation)
	require.True(t, ok)
	assert.ElementsMatch(t,
		[]domain.Phase{domain.PhaseElectrical, domain.PhasePlumbing, domain.PhaseMechanical},
		insul.RequiredPredecessors)
	assert.Contains(t, insul.MustPrecede, domain.PhaseDrywall)
}

func TestDefaultRules_InspectionPhases(t *testing.T) {
	rules := DefaultRules()
	want := map[domain.Phase]bool{
		domain.PhaseFoundation: true,
		domain.PhaseFraming:    true,
		domain.PhaseElectrical: true,
		domain.PhasePlumbing:   true,
	}
	for _, p := range domain.AllPhases {
		r, _ := rules.RulesFor(p)
		assert.Equal(t, want[p], r.InspectionRequired, "phase %s", p)
		if r.InspectionRequired {
			assert.NotEmpty(t, r.InspectionType, "phase %s", p)
		}
	}
}

func TestRulesFor_PhaseWithoutRuleFallsBack(t *testing.T) {
	r, explicit := DefaultRules().RulesFor(domain.PhasePlanning)
	assert.False(t, explicit)
	assert.Equal(t, domain.PhasePlanning, r.Phase)
	assert.Empty(t, r.RequiredPredecessors)
	assert.Empty(t, r.Keywords)
}

func TestRulesFor_ReturnsCopies(t *testing.T) {
	rules := DefaultRules()
	r, _ := rules.RulesFor(domain.PhaseDrywall)
	r.RequiredPredecessors[0] = domain.PhaseCleanup
	r.Keywords = nil

	again, _ := rules.RulesFor(domain.PhaseDrywall)
	assert.NotEqual(t, domain.PhaseCleanup, again.RequiredPredecessors[0])
	assert.NotEmpty(t, again.Keywords)
}

func TestNewRuleTable_RejectsCycle(t *testing.T) {
	_, err := NewRuleTable(PhaseRule{Phase: domain.PhaseFinishing},
		PhaseRule{
			Phase:                domain.PhaseInsulation,
			RequiredPredecessors: []domain.Phase{domain.PhaseElectrical},
		},
		PhaseRule{
			Phase:       domain.PhaseDrywall,
			MustPrecede: []domain.Phase{domain.PhaseElectrical},
			// drywall requires insulation which requires electrical
			RequiredPredecessors: []domain.Phase{domain.PhaseInsulation},
		},
	)
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.True(t, cycleErr.PhaseLevel)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
	assert.Contains(t, err.Error(), "phase rule graph")
}

func TestNewRuleTable_RejectsSelfRequirement(t *testing.T) {
	_, err := NewRuleTable(PhaseRule{Phase: domain.PhaseFinishing},
		PhaseRule{Phase: domain.PhaseRoofing, RequiredPredecessors: []domain.Phase{domain.PhaseRoofing}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires itself")
}

func TestNewRuleTable_RejectsDuplicatePhase(t *testing.T) {
	_, err := NewRuleTable(PhaseRule{Phase: domain.PhaseFinishing},
		PhaseRule{Phase: domain.PhaseRoofing},
		PhaseRule{Phase: domain.PhaseRoofing},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRuleTable_RejectsUnknownPhase(t *testing.T) {
	_, err := NewRuleTable(PhaseRule{Phase: domain.PhaseFinishing},
		PhaseRule{Phase: domain.Phase("masonry")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown phase")
}

// requiredClosure returns every phase reachable from p through
// RequiredPredecessors.
func requiredClosure(rules *RuleTable, p domain.Phase) map[domain.Phase]bool {
	seen := make(map[domain.Phase]bool)
	var walk func(domain.Phase)
	walk = func(cur domain.Phase) {
		r, _ := rules.RulesFor(cur)
		for _, pred := range r.RequiredPredecessors {
			if !seen[pred] {
				seen[pred] = true
				walk(pred)
			}
		}
	}
	walk(p)
	return seen
}

func TestPredecessorsOf_IncludesMustPrecede(t *testing.T) {
	rules := DefaultRules()

	// Framing only requires foundation; permits lists framing in MustPrecede.
	assert.Equal(t,
		[]domain.Phase{domain.PhasePermits, domain.PhaseFoundation},
		rules.PredecessorsOf(domain.PhaseFraming))
	assert.Contains(t, rules.PredecessorsOf(domain.PhaseInsulation), domain.PhaseFraming)
	assert.Empty(t, rules.PredecessorsOf(domain.PhasePlanning))

	got := rules.PredecessorsOf(domain.PhaseFraming)
	got[0] = domain.PhaseCleanup
	assert.Equal(t, domain.PhasePermits, rules.PredecessorsOf(domain.PhaseFraming)[0])
}

func TestPredecessorsOf_EveryMustPrecedeEdgeIsCovered(t *testing.T) {
	rules := DefaultRules()
	for _, r := range rules.Rules() {
		for _, succ := range r.MustPrecede {
			assert.Contains(t, rules.PredecessorsOf(succ), r.Phase,
				"%s must precede %s", r.Phase, succ)
		}
		for _, pred := range r.RequiredPredecessors {
			assert.Contains(t, rules.PredecessorsOf(r.Phase), pred)
		}
	}
}
