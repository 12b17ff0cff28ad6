package domain

import (
	"fmt"
	"strings"
)

// Phase is a named stage of construction work.
type Phase string

const (
	PhasePlanning    Phase = "planning"
	PhasePermits     Phase = "permits"
	PhaseSitePrep    Phase = "site_prep"
	PhaseFoundation  Phase = "foundation"
	PhaseFraming     Phase = "framing"
	PhaseRoofing     Phase = "roofing"
	PhaseMechanical  Phase = "mechanical"
	PhaseElectrical  Phase = "electrical"
	PhasePlumbing    Phase = "plumbing"
	PhaseInsulation  Phase = "insulation"
	PhaseDrywall     Phase = "drywall"
	PhaseFlooring    Phase = "flooring"
	PhasePainting    Phase = "painting"
	PhaseFinishing   Phase = "finishing"
	PhaseLandscaping Phase = "landscaping"
	PhaseInspection  Phase = "inspection"
	PhaseCleanup     Phase = "cleanup"
)

// AllPhases lists every phase in conventional build order. The order is a
// tie-break and display order only; dependencies decide the schedule.
var AllPhases = []Phase{
	PhasePlanning,
	PhasePermits,
	PhaseSitePrep,
	PhaseFoundation,
	PhaseFraming,
	PhaseRoofing,
	PhaseMechanical,
	PhaseElectrical,
	PhasePlumbing,
	PhaseInsulation,
	PhaseDrywall,
	PhaseFlooring,
	PhasePainting,
	PhaseFinishing,
	PhaseLandscaping,
	PhaseInspection,
	PhaseCleanup,
}

var phaseOrder = func() map[Phase]int {
	m := make(map[Phase]int, len(AllPhases))
	for i, p := range AllPhases {
		m[p] = i
	}
	return m
}()

var phaseLabels = map[Phase]string{
	PhasePlanning:    "Planning",
	PhasePermits:     "Permits",
	PhaseSitePrep:    "Site Prep",
	PhaseFoundation:  "Foundation",
	PhaseFraming:     "Framing",
	PhaseRoofing:     "Roofing",
	PhaseMechanical:  "Mechanical",
	PhaseElectrical:  "Electrical",
	PhasePlumbing:    "Plumbing",
	PhaseInsulation:  "Insulation",
	PhaseDrywall:     "Drywall",
	PhaseFlooring:    "Flooring",
	PhasePainting:    "Painting",
	PhaseFinishing:   "Finishing",
	PhaseLandscaping: "Landscaping",
	PhaseInspection:  "Inspection",
	PhaseCleanup:     "Cleanup",
}

// Order returns the position of p in AllPhases, or len(AllPhases) for an
// unknown phase so that unknown values sort last.
func (p Phase) Order() int {
	if i, ok := phaseOrder[p]; ok {
		return i
	}
	return len(AllPhases)
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// Label returns the human-readable phase name.
func (p Phase) Label() string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePhase accepts the canonical value ("site_prep") or the label
// ("Site Prep"), case-insensitively.
func ParsePhase(s string) (Phase, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	p := Phase(norm)
	if !p.Valid() {
		return "", fmt.Errorf("unknown construction phase %q", s)
	}
	return p, nil
}
