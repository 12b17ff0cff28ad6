package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/buildseq/internal/cli/formatter"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// buildseqHuhTheme returns a huh theme matching the formatter palette.
func buildseqHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// documentFormValues collects the raw answers of the new-document form.
type documentFormValues struct {
	Kind          string
	Title         string
	Customer      string
	Location      string
	ProjectType   string
	SquareFootage string
	Items         string
}

const itemLinesHelp = "One item per line: name | phase | days | after; after\n" +
	"Only the name is required, e.g. \"Frame walls | framing | 4 | Pour footing\""

// documentForm asks for the document header, then its line items.
func documentForm(v *documentFormValues) *huh.Form {
	if v.Kind == "" {
		v.Kind = string(domain.KindEstimate)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Estimate", string(domain.KindEstimate)),
					huh.NewOption("Invoice", string(domain.KindInvoice)),
					huh.NewOption("Work order", string(domain.KindWorkOrder)),
				).
				Value(&v.Kind),
			huh.NewInput().
				Title("Title").
				Placeholder("Kitchen remodel").
				Value(&v.Title).
				Validate(requiredText("title")),
			huh.NewInput().Title("Customer").Value(&v.Customer),
			huh.NewInput().Title("Location").Value(&v.Location),
			huh.NewInput().Title("Project type").Placeholder("remodel").Value(&v.ProjectType),
			huh.NewInput().
				Title("Square footage").
				Placeholder("blank if unknown").
				Value(&v.SquareFootage).
				Validate(validateNonNegativeNumber),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Line items").
				Description(itemLinesHelp).
				Lines(10).
				Value(&v.Items).
				Validate(func(s string) error {
					_, err := parseItemLines(s)
					return err
				}),
		),
	).WithTheme(buildseqHuhTheme()).WithShowHelp(false)
}

// confirmForm creates a yes/no confirmation.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(buildseqHuhTheme()).WithShowHelp(false)
}

// toFile turns validated form answers into an import file.
func (v documentFormValues) toFile() (*importer.DocumentFile, error) {
	items, err := parseItemLines(v.Items)
	if err != nil {
		return nil, err
	}
	f := &importer.DocumentFile{
		Document: importer.DocumentImport{
			Kind:        domain.CoalesceStr(v.Kind, string(domain.KindEstimate)),
			Title:       strings.TrimSpace(v.Title),
			Customer:    strings.TrimSpace(v.Customer),
			Location:    strings.TrimSpace(v.Location),
			ProjectType: strings.TrimSpace(v.ProjectType),
		},
		Items: items,
	}
	if s := strings.TrimSpace(v.SquareFootage); s != "" {
		sqft, err := strconv.ParseFloat(s, 64)
		if err != nil || sqft < 0 {
			return nil, fmt.Errorf("square footage %q must be a non-negative number", s)
		}
		f.Document.SquareFootage = &sqft
	}
	return f, nil
}

// parseItemLines reads "name | phase | days | dep; dep" lines. Blank lines
// and lines starting with # are skipped. At least one item is required.
func parseItemLines(s string) ([]importer.ItemImport, error) {
	var items []importer.ItemImport
	for n, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := parseItemLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("enter at least one line item")
	}
	return items, nil
}

func parseItemLine(line string) (importer.ItemImport, error) {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) > 4 {
		return importer.ItemImport{}, fmt.Errorf("expected at most 4 fields, got %d", len(fields))
	}

	item := importer.ItemImport{Name: fields[0]}
	if item.Name == "" {
		return item, fmt.Errorf("name is required")
	}
	if len(fields) > 1 && fields[1] != "" {
		p, err := domain.ParsePhase(fields[1])
		if err != nil {
			return item, err
		}
		item.Phase = string(p)
	}
	if len(fields) > 2 && fields[2] != "" {
		days, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || days <= 0 {
			return item, fmt.Errorf("days %q must be a positive number", fields[2])
		}
		item.DurationDays = &days
	}
	if len(fields) > 3 {
		for _, dep := range strings.Split(fields[3], ";") {
			if dep = strings.TrimSpace(dep); dep != "" {
				item.DependsOn = append(item.DependsOn, dep)
			}
		}
	}
	return item, nil
}

func requiredText(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// validateNonNegativeNumber accepts empty or a number >= 0.
func validateNonNegativeNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}
