package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^(EST|INV|WO)[0-9]{4,6}$`)

// Document is an estimate, invoice or work order held by the external
// store. The sequencer only reads its line items and writes schedules back.
type Document struct {
	ID            string
	ShortID       string
	Kind          DocumentKind
	Title         string
	Customer      string
	Location      string
	ProjectType   string
	SquareFootage float64
	SourceID      *string
	Status        DocumentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateShortID checks that ShortID matches the kind prefix followed by
// 4-6 digits (e.g. EST0012, WO0003).
func (d *Document) ValidateShortID() error {
	if d.ShortID == "" {
		return fmt.Errorf("short ID is required")
	}
	if !shortIDPattern.MatchString(d.ShortID) {
		return fmt.Errorf("short ID %q must be EST, INV or WO followed by 4-6 digits (e.g. EST0012)", d.ShortID)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (d *Document) DisplayID() string {
	if d.ShortID != "" {
		return d.ShortID
	}
	if len(d.ID) >= 8 {
		return d.ID[:8]
	}
	return d.ID
}

// FormatShortID builds the short ID for the n-th document of a kind.
func FormatShortID(kind DocumentKind, n int) string {
	return fmt.Sprintf("%s%04d", kind.ShortIDPrefix(), n)
}

// ShortIDNumber extracts the number from a short ID of the given kind.
// It reports false when the ID carries another kind's prefix or no digits.
func ShortIDNumber(kind DocumentKind, shortID string) (int, bool) {
	digits, ok := strings.CutPrefix(shortID, kind.ShortIDPrefix())
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// LineItem is one billable line of a document.
type LineItem struct {
	ID          string
	DocumentID  string
	Position    int
	Name        string
	Description string
	Quantity    float64
	Unit        string

	// Optional overrides carried from the import file.
	Phase        *Phase
	DurationDays *float64
	DependsOn    []string

	CreatedAt time.Time
}

// Schedule is a saved SequencingResult for a document.
type Schedule struct {
	ID          string
	DocumentID  string
	GeneratedAt time.Time
	Mode        CriticalPathMode
	Result      SequencingResult
}
