package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// FormatDocumentList renders documents inside a bordered box.
func FormatDocumentList(docs []*domain.Document) string {
	if len(docs) == 0 {
		return RenderBox("Documents", Dim("No documents yet. Import one with `buildseq doc import <file>`."))
	}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		source := Dim("--")
		if d.SourceID != nil {
			source = TruncID(*d.SourceID)
		}
		rows = append(rows, []string{
			d.DisplayID(),
			KindBadge(d.Kind),
			Bold(d.Title),
			OrDash(d.Customer),
			StatusPill(d.Status),
			source,
			HumanTimestamp(d.UpdatedAt),
		})
	}

	table := RenderTable([]string{"ID", "KIND", "TITLE", "CUSTOMER", "STATUS", "FROM", "UPDATED"}, rows)
	return RenderBox("Documents", table)
}

// FormatDocument renders a document card: metadata beside the line items,
// followed by the latest schedule summary when there is one.
func FormatDocument(doc *domain.Document, items []*domain.LineItem, schedule *domain.Schedule) string {
	left := documentMetadataPanel(doc)
	right := lineItemPanel(items)
	combined := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)

	if schedule == nil {
		return RenderBox("", combined+"\n\n"+Dim("Not scheduled. Run `buildseq doc schedule "+doc.DisplayID()+"`."))
	}

	r := schedule.Result
	summary := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		Dim("SCHEDULED"), StyleFg.Render(HumanTimestamp(schedule.GeneratedAt)),
		Dim("MODE"), StyleFg.Render(string(schedule.Mode)),
		Dim("TASKS"), Bold(strconv.Itoa(len(r.Tasks))),
		Dim("TOTAL"), Bold(FormatDays(r.TotalDurationDays)),
	)
	return RenderBox("", combined+"\n\n"+summary+"\n\n"+FormatPhaseTree(&r))
}

func documentMetadataPanel(d *domain.Document) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(d.Title) + "\n")
	b.WriteString(KindBadge(d.Kind) + "\n\n")

	field := func(label, value string) {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%-9s", label)) + " " + value + "\n")
	}
	field("ID", Bold(d.DisplayID()))
	field("UUID", TruncID(d.ID))
	field("STATUS", StatusPill(d.Status))
	field("CUSTOMER", OrDash(d.Customer))
	field("LOCATION", OrDash(d.Location))
	field("TYPE", OrDash(d.ProjectType))
	sqft := Dim("--")
	if d.SquareFootage > 0 {
		sqft = strconv.FormatFloat(d.SquareFootage, 'f', -1, 64) + " sq ft"
	}
	field("AREA", sqft)
	if d.SourceID != nil {
		field("FROM", TruncID(*d.SourceID))
	}
	field("CREATED", HumanDate(d.CreatedAt))

	return strings.TrimRight(b.String(), "\n")
}

func lineItemPanel(items []*domain.LineItem) string {
	if len(items) == 0 {
		return Header("Line items") + "\n" + Dim("none")
	}

	rows := make([][]string, 0, len(items))
	for _, li := range items {
		qty := strconv.FormatFloat(li.Quantity, 'f', -1, 64)
		if li.Unit != "" {
			qty += " " + li.Unit
		}
		phase := Dim("auto")
		if li.Phase != nil {
			phase = PhaseBadge(*li.Phase)
		}
		days := Dim("auto")
		if li.DurationDays != nil {
			days = FormatDays(*li.DurationDays)
		}
		rows = append(rows, []string{
			strconv.Itoa(li.Position + 1),
			li.Name,
			qty,
			phase,
			days,
			OrDash(strings.Join(li.DependsOn, ", ")),
		})
	}
	return Header("Line items") + "\n" + Table{
		Headers:    []string{"#", "ITEM", "QTY", "PHASE", "DAYS", "AFTER"},
		Rows:       rows,
		RightAlign: map[int]bool{0: true, 2: true},
	}.Render()
}
