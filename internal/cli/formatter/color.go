package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseStyle colors a phase by where it sits in the build: structure,
// rough-ins, or finishes.
func PhaseStyle(p domain.Phase) lipgloss.Style {
	switch p {
	case domain.PhasePlanning, domain.PhasePermits:
		return StyleBlue
	case domain.PhaseSitePrep, domain.PhaseFoundation, domain.PhaseFraming, domain.PhaseRoofing:
		return StyleYellow
	case domain.PhaseMechanical, domain.PhaseElectrical, domain.PhasePlumbing, domain.PhaseInsulation:
		return StylePurple
	case domain.PhaseDrywall, domain.PhaseFlooring, domain.PhasePainting, domain.PhaseFinishing,
		domain.PhaseLandscaping, domain.PhaseCleanup:
		return StyleGreen
	case domain.PhaseInspection:
		return StyleRed
	default:
		return StyleDim
	}
}

// PhaseBadge renders the human label of a phase in its color.
func PhaseBadge(p domain.Phase) string {
	return PhaseStyle(p).Render(p.Label())
}

// CriticalMark returns a red marker for critical-path tasks.
func CriticalMark(critical bool) string {
	if critical {
		return StyleRed.Render("●")
	}
	return StyleDim.Render("·")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
