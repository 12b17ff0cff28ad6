package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseOrder_FollowsAllPhases(t *testing.T) {
	for i, p := range AllPhases {
		assert.Equal(t, i, p.Order(), "phase %s", p)
	}
	assert.Less(t, PhaseFoundation.Order(), PhaseFraming.Order())
	assert.Less(t, PhaseElectrical.Order(), PhaseInsulation.Order())
	assert.Less(t, PhaseInsulation.Order(), PhaseDrywall.Order())
}

func TestPhaseOrder_UnknownSortsLast(t *testing.T) {
	assert.Equal(t, len(AllPhases), Phase("bogus").Order())
	assert.False(t, Phase("bogus").Valid())
}

func TestParsePhase(t *testing.T) {
	cases := map[string]Phase{
		"electrical": PhaseElectrical,
		"Site Prep":  PhaseSitePrep,
		"site-prep":  PhaseSitePrep,
		" DRYWALL ":  PhaseDrywall,
		"finishing":  PhaseFinishing,
	}
	for in, want := range cases {
		got, err := ParsePhase(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParsePhase_Unknown(t *testing.T) {
	_, err := ParsePhase("demolition derby")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown construction phase")
}

func TestPhaseLabel(t *testing.T) {
	assert.Equal(t, "Site Prep", PhaseSitePrep.Label())
	assert.Equal(t, "mystery", Phase("mystery").Label())
}
