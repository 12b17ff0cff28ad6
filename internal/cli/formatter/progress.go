package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders a phase's share of the schedule like [████░░░░] 45%.
func RenderShare(pct float64, width int, style lipgloss.Style) string {
	pct = clamp01(pct)
	if width < 2 {
		width = 2
	}

	filled := int(math.Round(pct * float64(width)))
	if filled > width {
		filled = width
	}
	bar := style.Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, width-filled))

	return fmt.Sprintf("[%s] %3.0f%%", bar, pct*100)
}

// RenderGanttBar draws one task as a span of blocks on a track of width
// cells covering [0, total] days. A non-empty task always gets at least
// one cell.
func RenderGanttBar(start, end, total float64, width int, style lipgloss.Style) string {
	if width < 1 {
		width = 1
	}
	if total <= 0 {
		return strings.Repeat(" ", width)
	}

	from := int(math.Floor(clamp01(start/total) * float64(width)))
	to := int(math.Ceil(clamp01(end/total) * float64(width)))
	if to <= from && end > start {
		to = from + 1
	}
	if to > width {
		to = width
		if from >= to {
			from = to - 1
		}
	}

	return strings.Repeat(" ", from) +
		style.Render(strings.Repeat(filledBlock, to-from)) +
		strings.Repeat(" ", width-to)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
