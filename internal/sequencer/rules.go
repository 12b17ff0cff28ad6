package sequencer

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// PhaseRule is the static domain knowledge for one construction phase.
type PhaseRule struct {
	Phase    domain.Phase
	Trade    string
	Keywords []string

	// BaseDurationDays is the typical duration of one item of this phase.
	BaseDurationDays float64
	// ScalesWithArea multiplies the base duration by square footage / 1000.
	ScalesWithArea bool

	RequiredPredecessors []domain.Phase
	MustPrecede          []domain.Phase

	InspectionRequired bool
	InspectionType     string
}

// RuleTable is an immutable, validated registry of phase rules. Rules keep
// their registration order, which is the classifier tie-break.
type RuleTable struct {
	ordered []PhaseRule
	byPhase map[domain.Phase]int
	def     PhaseRule
	// preds holds the combined predecessor phases of every phase.
	preds map[domain.Phase][]domain.Phase
}

// NewRuleTable builds and validates a rule table. def is returned by
// RulesFor for phases that have no explicit rule.
func NewRuleTable(def PhaseRule, rules ...PhaseRule) (*RuleTable, error) {
	t := &RuleTable{
		ordered: make([]PhaseRule, 0, len(rules)),
		byPhase: make(map[domain.Phase]int, len(rules)),
		def:     cloneRule(def),
	}
	for _, r := range rules {
		if !r.Phase.Valid() {
			return nil, fmt.Errorf("rule for unknown phase %q", r.Phase)
		}
		if _, dup := t.byPhase[r.Phase]; dup {
			return nil, fmt.Errorf("duplicate rule for phase %s", r.Phase)
		}
		t.byPhase[r.Phase] = len(t.ordered)
		t.ordered = append(t.ordered, cloneRule(r))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.preds = t.combinedPredecessors()
	return t, nil
}

// PredecessorsOf returns the phases whose tasks a task of phase waits on:
// the phase's own required predecessors plus every phase whose rule lists
// it in MustPrecede. The result is in phase order.
func (t *RuleTable) PredecessorsOf(phase domain.Phase) []domain.Phase {
	return append([]domain.Phase(nil), t.preds[phase]...)
}

func (t *RuleTable) combinedPredecessors() map[domain.Phase][]domain.Phase {
	sets := make(map[domain.Phase]map[domain.Phase]bool)
	add := func(before, after domain.Phase) {
		if before == after {
			return
		}
		if sets[after] == nil {
			sets[after] = make(map[domain.Phase]bool)
		}
		sets[after][before] = true
	}
	for _, r := range t.ordered {
		for _, pred := range r.RequiredPredecessors {
			add(pred, r.Phase)
		}
		for _, succ := range r.MustPrecede {
			add(r.Phase, succ)
		}
	}

	out := make(map[domain.Phase][]domain.Phase, len(sets))
	for phase, set := range sets {
		list := make([]domain.Phase, 0, len(set))
		for p := range set {
			list = append(list, p)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Order() < list[j].Order() })
		out[phase] = list
	}
	return out
}

// RulesFor returns the rule for phase. The boolean is false when the phase
// has no explicit rule and the default was returned.
func (t *RuleTable) RulesFor(phase domain.Phase) (PhaseRule, bool) {
	if i, ok := t.byPhase[phase]; ok {
		return cloneRule(t.ordered[i]), true
	}
	r := cloneRule(t.def)
	r.Phase = phase
	return r, false
}

// Rules returns a copy of every explicit rule in registration order.
func (t *RuleTable) Rules() []PhaseRule {
	out := make([]PhaseRule, len(t.ordered))
	for i, r := range t.ordered {
		out[i] = cloneRule(r)
	}
	return out
}

// Default returns a copy of the fallback rule.
func (t *RuleTable) Default() PhaseRule {
	return cloneRule(t.def)
}

// Validate checks that the combined constraint graph is acyclic. An edge
// A -> B exists when B requires A or A must precede B, so a phase that
// transitively requires a phase it must precede is rejected.
func (t *RuleTable) Validate() error {
	adj := make(map[domain.Phase][]domain.Phase)
	addEdge := func(from, to domain.Phase) {
		adj[from] = append(adj[from], to)
	}
	for _, r := range t.ordered {
		for _, pred := range r.RequiredPredecessors {
			if pred == r.Phase {
				return fmt.Errorf("phase %s requires itself", r.Phase)
			}
			addEdge(pred, r.Phase)
		}
		for _, succ := range r.MustPrecede {
			if succ == r.Phase {
				return fmt.Errorf("phase %s must precede itself", r.Phase)
			}
			addEdge(r.Phase, succ)
		}
	}

	nodes := make([]domain.Phase, 0, len(adj))
	for p := range adj {
		nodes = append(nodes, p)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Order() < nodes[j].Order() })

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[domain.Phase]int)
	var stack []string

	var visit func(p domain.Phase) []string
	visit = func(p domain.Phase) []string {
		color[p] = gray
		stack = append(stack, string(p))
		for _, next := range adj[p] {
			switch color[next] {
			case gray:
				return cyclePath(stack, string(next))
			case white:
				if c := visit(next); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[p] = black
		return nil
	}

	for _, p := range nodes {
		if color[p] == white {
			if c := visit(p); c != nil {
				return &CycleError{Path: c, PhaseLevel: true}
			}
		}
	}
	return nil
}

func cloneRule(r PhaseRule) PhaseRule {
	r.Keywords = append([]string(nil), r.Keywords...)
	r.RequiredPredecessors = append([]domain.Phase(nil), r.RequiredPredecessors...)
	r.MustPrecede = append([]domain.Phase(nil), r.MustPrecede...)
	return r
}

// defaultPredecessor is the phase an unclassified item waits on.
const defaultPredecessor = domain.PhaseFlooring

var defaultRules = mustRuleTable(
	PhaseRule{
		Phase:            domain.PhaseFinishing,
		Trade:            "general",
		BaseDurationDays: 0,
	},
	PhaseRule{
		Phase:                domain.PhasePermits,
		Trade:                "general",
		Keywords:             []string{"permit", "zoning", "variance", "plan review", "approval"},
		BaseDurationDays:     5,
		RequiredPredecessors: []domain.Phase{domain.PhasePlanning},
		MustPrecede:          []domain.Phase{domain.PhaseSitePrep, domain.PhaseFoundation, domain.PhaseFraming},
	},
	PhaseRule{
		Phase:                domain.PhaseSitePrep,
		Trade:                "excavation",
		Keywords:             []string{"demo", "demolition", "excavat", "grading", "site prep", "clearing", "tear out", "tear-out", "haul away"},
		BaseDurationDays:     2,
		RequiredPredecessors: []domain.Phase{domain.PhasePermits},
		MustPrecede:          []domain.Phase{domain.PhaseFoundation},
	},
	PhaseRule{
		Phase:                domain.PhaseFoundation,
		Trade:                "concrete",
		Keywords:             []string{"foundation", "footing", "concrete", "slab", "pour", "rebar", "formwork"},
		BaseDurationDays:     5,
		RequiredPredecessors: []domain.Phase{domain.PhasePermits, domain.PhaseSitePrep},
		MustPrecede:          []domain.Phase{domain.PhaseFraming},
		InspectionRequired:   true,
		InspectionType:       "Foundation/footing inspection",
	},
	PhaseRule{
		Phase:                domain.PhaseFraming,
		Trade:                "carpentry",
		Keywords:             []string{"framing", "frame", "stud", "joist", "truss", "beam", "header", "sheathing", "subfloor"},
		BaseDurationDays:     7,
		ScalesWithArea:       true,
		RequiredPredecessors: []domain.Phase{domain.PhaseFoundation},
		MustPrecede: []domain.Phase{
			domain.PhaseRoofing, domain.PhaseMechanical, domain.PhaseElectrical,
			domain.PhasePlumbing, domain.PhaseInsulation,
		},
		InspectionRequired: true,
		InspectionType:     "Framing inspection",
	},
	PhaseRule{
		Phase:                domain.PhaseRoofing,
		Trade:                "roofing",
		Keywords:             []string{"roof", "shingle", "flashing", "gutter", "soffit", "fascia", "underlayment"},
		BaseDurationDays:     4,
		ScalesWithArea:       true,
		RequiredPredecessors: []domain.Phase{domain.PhaseFraming},
		MustPrecede:          []domain.Phase{domain.PhaseDrywall},
	},
	PhaseRule{
		Phase:                domain.PhaseMechanical,
		Trade:                "hvac",
		Keywords:             []string{"hvac", "duct", "furnace", "air condition", "heat pump", "ventilation", "exhaust fan", "mini split"},
		BaseDurationDays:     3,
		RequiredPredecessors: []domain.Phase{domain.PhaseFraming},
		MustPrecede:          []domain.Phase{domain.PhaseInsulation, domain.PhaseDrywall},
	},
	PhaseRule{
		Phase:                domain.PhaseElectrical,
		Trade:                "electrician",
		Keywords:             []string{"electrical", "electric", "wiring", "wire", "outlet", "receptacle", "panel", "circuit", "breaker", "switch", "light fixture", "lighting"},
		BaseDurationDays:     3,
		RequiredPredecessors: []domain.Phase{domain.PhaseFraming, domain.PhasePermits},
		MustPrecede:          []domain.Phase{domain.PhaseInsulation, domain.PhaseDrywall},
		InspectionRequired:   true,
		InspectionType:       "Electrical rough-in inspection",
	},
	PhaseRule{
		Phase:                domain.PhasePlumbing,
		Trade:                "plumber",
		Keywords:             []string{"plumbing", "plumb", "pipe", "piping", "drain", "water heater", "water line", "sewer", "faucet", "toilet", "shower valve", "pex"},
		BaseDurationDays:     3,
		RequiredPredecessors: []domain.Phase{domain.PhaseFraming, domain.PhasePermits},
		MustPrecede:          []domain.Phase{domain.PhaseInsulation, domain.PhaseDrywall},
		InspectionRequired:   true,
		InspectionType:       "Plumbing rough-in inspection",
	},
	PhaseRule{
		Phase:                domain.PhaseInsulation,
		Trade:                "insulation",
		Keywords:             []string{"insulation", "insulate", "vapor barrier", "spray foam", "batt", "r-value"},
		BaseDurationDays:     2,
		ScalesWithArea:       true,
		RequiredPredecessors: []domain.Phase{domain.PhaseElectrical, domain.PhasePlumbing, domain.PhaseMechanical},
		MustPrecede:          []domain.Phase{domain.PhaseDrywall},
	},
	PhaseRule{
		Phase:    domain.PhaseDrywall,
		Trade:    "drywall",
		Keywords: []string{"drywall", "sheetrock", "gypsum", "tape and mud", "mudding", "plaster", "wallboard"},
		// Drywall also waits on rough-ins directly so a batch without
		// insulation cannot close walls before they are inspected.
		BaseDurationDays: 4,
		ScalesWithArea:   true,
		RequiredPredecessors: []domain.Phase{
			domain.PhaseInsulation, domain.PhaseElectrical, domain.PhasePlumbing,
			domain.PhaseMechanical, domain.PhaseRoofing,
		},
		MustPrecede: []domain.Phase{domain.PhasePainting, domain.PhaseFlooring},
	},
	PhaseRule{
		Phase:                domain.PhaseFlooring,
		Trade:                "flooring",
		Keywords:             []string{"floor", "flooring", "tile", "hardwood", "laminate", "carpet", "vinyl plank", "lvp", "grout"},
		BaseDurationDays:     3,
		ScalesWithArea:       true,
		RequiredPredecessors: []domain.Phase{domain.PhaseDrywall},
		MustPrecede:          []domain.Phase{domain.PhaseFinishing},
	},
	PhaseRule{
		Phase:                domain.PhasePainting,
		Trade:                "painter",
		Keywords:             []string{"paint", "painting", "primer", "prime", "stain", "coat"},
		BaseDurationDays:     3,
		ScalesWithArea:       true,
		RequiredPredecessors: []domain.Phase{domain.PhaseDrywall},
		MustPrecede:          []domain.Phase{domain.PhaseFinishing},
	},
	PhaseRule{
		Phase:                domain.PhaseFinishing,
		Trade:                "finish carpentry",
		Keywords:             []string{"trim", "baseboard", "molding", "moulding", "cabinet", "countertop", "backsplash", "hardware", "door install", "vanity", "finish"},
		BaseDurationDays:     2,
		RequiredPredecessors: []domain.Phase{domain.PhasePainting, domain.PhaseFlooring},
		MustPrecede:          []domain.Phase{domain.PhaseCleanup},
	},
	PhaseRule{
		Phase:                domain.PhaseLandscaping,
		Trade:                "landscaping",
		Keywords:             []string{"landscap", "sod", "lawn", "planting", "fence", "deck", "driveway", "paving", "retaining wall"},
		BaseDurationDays:     3,
		RequiredPredecessors: []domain.Phase{domain.PhaseRoofing, domain.PhaseSitePrep},
		MustPrecede:          []domain.Phase{domain.PhaseCleanup},
	},
	PhaseRule{
		Phase:                domain.PhaseInspection,
		Trade:                "inspector",
		Keywords:             []string{"final inspection", "inspection", "walkthrough", "walk-through", "punch list", "certificate of occupancy"},
		BaseDurationDays:     1,
		RequiredPredecessors: []domain.Phase{domain.PhaseFinishing, domain.PhaseLandscaping},
		MustPrecede:          []domain.Phase{domain.PhaseCleanup},
	},
	PhaseRule{
		Phase:                domain.PhaseCleanup,
		Trade:                "general",
		Keywords:             []string{"cleanup", "clean up", "clean-up", "debris", "dumpster", "final clean", "haul off"},
		BaseDurationDays:     1,
		RequiredPredecessors: []domain.Phase{domain.PhaseFinishing, domain.PhaseLandscaping, domain.PhaseInspection},
	},
)

// DefaultRules returns the shared, read-only construction rule table.
func DefaultRules() *RuleTable {
	return defaultRules
}

func mustRuleTable(def PhaseRule, rules ...PhaseRule) *RuleTable {
	t, err := NewRuleTable(def, rules...)
	if err != nil {
		panic(fmt.Sprintf("invalid construction rule table: %v", err))
	}
	return t
}
