package formatter

import (
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/sequencer"
)

// FormatRuleTable renders the phase rules in registration order.
func FormatRuleTable(rules []sequencer.PhaseRule) string {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		base := FormatDays(r.BaseDurationDays)
		if r.ScalesWithArea {
			base += Dim(" ×area")
		}
		inspection := Dim("--")
		if r.InspectionRequired {
			inspection = StyleRed.Render(r.InspectionType)
		}
		permit := Dim("--")
		if sequencer.PermitGated(r.Phase) {
			permit = StyleBlue.Render("yes")
		}
		rows = append(rows, []string{
			PhaseBadge(r.Phase),
			OrDash(r.Trade),
			base,
			OrDash(joinPhases(r.RequiredPredecessors)),
			OrDash(joinPhases(r.MustPrecede)),
			inspection,
			permit,
		})
	}

	table := RenderTable(
		[]string{"PHASE", "TRADE", "BASE", "AFTER", "BEFORE", "INSPECTION", "PERMIT"},
		rows,
	)
	return RenderBox("Phase rules", table)
}

func joinPhases(phases []domain.Phase) string {
	labels := make([]string, len(phases))
	for i, p := range phases {
		labels[i] = p.Label()
	}
	return strings.Join(labels, ", ")
}
