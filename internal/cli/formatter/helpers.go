package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatDays renders a day count without trailing zeros: 5 -> "5d",
// 2.5 -> "2.5d".
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64) + "d"
}

// FormatDay renders a day offset from the project start, e.g. "day 12".
func FormatDay(day float64) string {
	return "day " + strconv.FormatFloat(day, 'f', -1, 64)
}

// FormatSpan renders a task window like "0 → 5".
func FormatSpan(start, end float64) string {
	return strconv.FormatFloat(start, 'f', -1, 64) + " → " + strconv.FormatFloat(end, 'f', -1, 64)
}

// HumanDate returns a short absolute date string.
func HumanDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Local().Format("Jan 2, 2006")
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	return HumanTimestampFrom(t, time.Now())
}

// HumanTimestampFrom is HumanTimestamp against a fixed reference time.
func HumanTimestampFrom(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return HumanDate(t)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return strconv.Itoa(int(diff.Minutes())) + "m ago"
	case diff < 24*time.Hour:
		return strconv.Itoa(int(diff.Hours())) + "h ago"
	default:
		return HumanDate(t)
	}
}

// StatusPill returns a colored status indicator for a document.
func StatusPill(status domain.DocumentStatus) string {
	switch status {
	case domain.DocumentDraft:
		return StyleBlue.Render("○ Draft")
	case domain.DocumentSent:
		return StyleYellow.Render("● Sent")
	case domain.DocumentScheduled:
		return StyleGreen.Render("● Scheduled")
	case domain.DocumentConverted:
		return StyleDim.Render("✔ Converted")
	default:
		return StyleDim.Render(string(status))
	}
}

// KindBadge returns a styled document kind label.
func KindBadge(kind domain.DocumentKind) string {
	switch kind {
	case domain.KindEstimate:
		return StylePurple.Render("Estimate")
	case domain.KindInvoice:
		return StyleYellow.Render("Invoice")
	case domain.KindWorkOrder:
		return StyleGreen.Render("Work order")
	default:
		return StyleDim.Render(string(kind))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash returns s, or a dim placeholder when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
