package domain

type DocumentKind string

const (
	KindEstimate  DocumentKind = "estimate"
	KindInvoice   DocumentKind = "invoice"
	KindWorkOrder DocumentKind = "work_order"
)

// ValidDocumentKinds is the canonical set of accepted document kind strings.
var ValidDocumentKinds = map[string]bool{
	"estimate": true, "invoice": true, "work_order": true,
}

type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentSent      DocumentStatus = "sent"
	DocumentConverted DocumentStatus = "converted"
	DocumentScheduled DocumentStatus = "scheduled"
)

// ValidDocumentStatuses is the canonical set of accepted status strings.
var ValidDocumentStatuses = map[string]bool{
	"draft": true, "sent": true, "converted": true, "scheduled": true,
}

type CriticalPathMode string

const (
	// CriticalPathHeuristic marks tasks that something depends on, plus the
	// tasks that end last.
	CriticalPathHeuristic CriticalPathMode = "heuristic"
	// CriticalPathCPM runs a backward pass over the realised schedule and
	// marks zero-slack tasks.
	CriticalPathCPM CriticalPathMode = "cpm"
)

// ShortIDPrefix returns the human-facing ID prefix for a document kind.
func (k DocumentKind) ShortIDPrefix() string {
	switch k {
	case KindInvoice:
		return "INV"
	case KindWorkOrder:
		return "WO"
	default:
		return "EST"
	}
}

// Next returns the kind a document converts into, or false when the kind
// is terminal.
func (k DocumentKind) Next() (DocumentKind, bool) {
	switch k {
	case KindEstimate:
		return KindInvoice, true
	case KindInvoice:
		return KindWorkOrder, true
	default:
		return "", false
	}
}
