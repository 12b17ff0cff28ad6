package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "5d", FormatDays(5))
	assert.Equal(t, "2.5d", FormatDays(2.5))
	assert.Equal(t, "0d", FormatDays(0))
	assert.Equal(t, "day 12", FormatDay(12))
	assert.Equal(t, "0 → 5.5", FormatSpan(0, 5.5))
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"seconds ago", now.Add(-10 * time.Second), "Just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-72 * time.Hour), HumanDate(now.Add(-72 * time.Hour))},
		{"future", now.Add(time.Hour), HumanDate(now.Add(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanTimestampFrom(tt.input, now))
		})
	}
}

func TestHumanDate_Zero(t *testing.T) {
	assert.Equal(t, "--", HumanDate(time.Time{}))
}

func TestStatusPill(t *testing.T) {
	assert.Contains(t, StatusPill(domain.DocumentDraft), "Draft")
	assert.Contains(t, StatusPill(domain.DocumentScheduled), "Scheduled")
	assert.Contains(t, StatusPill(domain.DocumentConverted), "Converted")
	assert.Contains(t, StatusPill(domain.DocumentStatus("lost")), "lost")
}

func TestKindBadge(t *testing.T) {
	assert.Contains(t, KindBadge(domain.KindEstimate), "Estimate")
	assert.Contains(t, KindBadge(domain.KindWorkOrder), "Work order")
}

func TestTruncID(t *testing.T) {
	assert.Contains(t, TruncID("abcdef12-3456"), "abcdef12")
	assert.NotContains(t, TruncID("abcdef12-3456"), "3456")
	assert.Contains(t, TruncID("short"), "short")
}

func TestPhaseBadge_UsesLabel(t *testing.T) {
	assert.Contains(t, PhaseBadge(domain.PhaseSitePrep), "Site Prep")
}
